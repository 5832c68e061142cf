package tts

import "strings"

// sentenceTerminators end a chunk during pseudo-streaming synthesis.
// Both ASCII and CJK full-width terminators count.
var sentenceTerminators = map[rune]bool{
	'.': true, '!': true, '?': true,
	'。': true, '！': true, '？': true,
}

// SplitSentences breaks text into sentence chunks at terminator
// boundaries. The terminator stays with its sentence; trailing text
// without a terminator forms a final chunk. Whitespace-only pieces are
// dropped.
func SplitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		s := strings.TrimSpace(current.String())
		if s != "" {
			sentences = append(sentences, s)
		}
		current.Reset()
	}

	for _, r := range text {
		current.WriteRune(r)
		if sentenceTerminators[r] {
			flush()
		}
	}
	flush()

	return sentences
}

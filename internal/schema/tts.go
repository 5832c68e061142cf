package schema

import "fmt"

const (
	// MaxTextLength bounds the synthesis input.
	MaxTextLength = 2000
	// MaxInstructionLength bounds the optional style instruction.
	MaxInstructionLength = 500
	// MaxRefTextLength bounds the reference transcript.
	MaxRefTextLength = 2000
)

// SynthesizeRequest asks for speech from a preset CustomVoice timbre.
type SynthesizeRequest struct {
	Text        string `json:"text"`
	Speaker     string `json:"speaker"`
	Language    string `json:"language"`
	Instruction string `json:"instruction,omitempty"`
}

// Validate applies defaults and checks bounds and enum membership.
func (r *SynthesizeRequest) Validate() error {
	r.applyDefaults()

	if r.Text == "" {
		return fmt.Errorf("text is required")
	}
	if len(r.Text) > MaxTextLength {
		return fmt.Errorf("text exceeds max length of %d", MaxTextLength)
	}
	if !IsSpeaker(r.Speaker) {
		return fmt.Errorf("unknown speaker %q", r.Speaker)
	}
	if !IsLanguageCode(r.Language) {
		return fmt.Errorf("unsupported language %q", r.Language)
	}
	if len(r.Instruction) > MaxInstructionLength {
		return fmt.Errorf("instruction exceeds max length of %d", MaxInstructionLength)
	}
	return nil
}

func (r *SynthesizeRequest) applyDefaults() {
	if r.Speaker == "" {
		r.Speaker = DefaultSpeaker
	}
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
}

// CloneRequest asks for speech in the voice of an inline reference sample.
type CloneRequest struct {
	Text string `json:"text"`
	// SpeakerAudio is base64-encoded WAV/FLAC/MP3/M4A reference audio.
	SpeakerAudio string `json:"speaker_audio"`
	// RefText is the transcript of the reference audio. When present, the
	// higher-fidelity clone mode is used instead of x-vector-only mode.
	RefText  string `json:"ref_text,omitempty"`
	Language string `json:"language"`
}

// Validate applies defaults and checks bounds.
func (r *CloneRequest) Validate() error {
	if r.Language == "" {
		r.Language = DefaultLanguage
	}

	if r.Text == "" {
		return fmt.Errorf("text is required")
	}
	if len(r.Text) > MaxTextLength {
		return fmt.Errorf("text exceeds max length of %d", MaxTextLength)
	}
	if r.SpeakerAudio == "" {
		return fmt.Errorf("speaker_audio is required")
	}
	if len(r.RefText) > MaxRefTextLength {
		return fmt.Errorf("ref_text exceeds max length of %d", MaxRefTextLength)
	}
	if !IsLanguageCode(r.Language) {
		return fmt.Errorf("unsupported language %q", r.Language)
	}
	return nil
}

// SynthesizeResponse carries synthesized audio as base64 WAV plus metadata.
type SynthesizeResponse struct {
	AudioData      string  `json:"audio_data"`
	SampleRate     int     `json:"sample_rate"`
	Duration       float64 `json:"duration"`
	Language       string  `json:"language"`
	Speaker        string  `json:"speaker"`
	DeviceUsed     string  `json:"device_used"`
	ProcessingTime float64 `json:"processing_time"`
}

// StreamChunk is one element of the newline-delimited streaming response.
type StreamChunk struct {
	// Chunk is a base64-encoded WAV segment; empty on the terminating
	// chunk of an empty or failed stream.
	Chunk          string `json:"chunk"`
	SequenceNumber int    `json:"sequence_number"`
	IsLast         bool   `json:"is_last"`
	Error          string `json:"error,omitempty"`
}

package schema

import "fmt"

// TranslateSynthesizeRequest translates text between languages and then
// synthesizes it, optionally cloning a library voice.
type TranslateSynthesizeRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Speaker        string `json:"speaker"`
	VoiceID        string `json:"voice_id,omitempty"`
	Instruction    string `json:"instruction,omitempty"`
}

// Validate applies defaults and checks bounds and enum membership.
func (r *TranslateSynthesizeRequest) Validate() error {
	if r.SourceLanguage == "" {
		r.SourceLanguage = DefaultLanguage
	}
	if r.TargetLanguage == "" {
		r.TargetLanguage = DefaultLanguage
	}
	if r.Speaker == "" {
		r.Speaker = DefaultSpeaker
	}

	if r.Text == "" {
		return fmt.Errorf("text is required")
	}
	if len(r.Text) > MaxTextLength {
		return fmt.Errorf("text exceeds max length of %d", MaxTextLength)
	}
	if !IsLanguageCode(r.SourceLanguage) {
		return fmt.Errorf("unsupported source language %q", r.SourceLanguage)
	}
	if !IsLanguageCode(r.TargetLanguage) {
		return fmt.Errorf("unsupported target language %q", r.TargetLanguage)
	}
	if !IsSpeaker(r.Speaker) {
		return fmt.Errorf("unknown speaker %q", r.Speaker)
	}
	if len(r.Instruction) > MaxInstructionLength {
		return fmt.Errorf("instruction exceeds max length of %d", MaxInstructionLength)
	}
	return nil
}

// TranslateSynthesizeResponse returns the synthesized audio together with
// both text forms. TranslationFallback is set when neither translator was
// available and the original text was synthesized unchanged.
type TranslateSynthesizeResponse struct {
	AudioData           string  `json:"audio_data"`
	SampleRate          int     `json:"sample_rate"`
	Duration            float64 `json:"duration"`
	SourceLanguage      string  `json:"source_language"`
	TargetLanguage      string  `json:"target_language"`
	OriginalText        string  `json:"original_text"`
	TranslatedText      string  `json:"translated_text"`
	TranslationFallback bool    `json:"translation_fallback"`
	Speaker             string  `json:"speaker"`
	DeviceUsed          string  `json:"device_used"`
	ProcessingTime      float64 `json:"processing_time"`
}

// AudioToAudioRequest transcribes input audio, translates the transcript
// when needed, and synthesizes it in the target language.
type AudioToAudioRequest struct {
	Audio          string `json:"audio"`
	TargetLanguage string `json:"target_language"`
	Speaker        string `json:"speaker"`
	VoiceID        string `json:"voice_id,omitempty"`
	Instruction    string `json:"instruction,omitempty"`
}

// Validate applies defaults and checks bounds and enum membership.
func (r *AudioToAudioRequest) Validate() error {
	if r.TargetLanguage == "" {
		r.TargetLanguage = DefaultLanguage
	}
	if r.Speaker == "" {
		r.Speaker = DefaultSpeaker
	}

	if r.Audio == "" {
		return fmt.Errorf("audio is required")
	}
	if !IsLanguageCode(r.TargetLanguage) {
		return fmt.Errorf("unsupported target language %q", r.TargetLanguage)
	}
	if !IsSpeaker(r.Speaker) {
		return fmt.Errorf("unknown speaker %q", r.Speaker)
	}
	if len(r.Instruction) > MaxInstructionLength {
		return fmt.Errorf("instruction exceeds max length of %d", MaxInstructionLength)
	}
	return nil
}

// CloneAudioToAudioRequest transcribes input audio and re-synthesizes it in
// the detected language with a cloned voice. Exactly one of VoiceID or
// SpeakerAudio must be supplied.
type CloneAudioToAudioRequest struct {
	Audio        string `json:"audio"`
	VoiceID      string `json:"voice_id,omitempty"`
	SpeakerAudio string `json:"speaker_audio,omitempty"`
	RefText      string `json:"ref_text,omitempty"`
}

// Validate checks bounds and the exactly-one-reference rule.
func (r *CloneAudioToAudioRequest) Validate() error {
	if r.Audio == "" {
		return fmt.Errorf("audio is required")
	}
	if r.VoiceID == "" && r.SpeakerAudio == "" {
		return fmt.Errorf("provide either voice_id or speaker_audio")
	}
	if r.VoiceID != "" && r.SpeakerAudio != "" {
		return fmt.Errorf("provide only one of voice_id or speaker_audio")
	}
	if len(r.RefText) > MaxRefTextLength {
		return fmt.Errorf("ref_text exceeds max length of %d", MaxRefTextLength)
	}
	return nil
}

// CloneAudioToAudioResponse returns the re-synthesized audio with the ASR
// results that produced it.
type CloneAudioToAudioResponse struct {
	AudioData        string  `json:"audio_data"`
	SampleRate       int     `json:"sample_rate"`
	Duration         float64 `json:"duration"`
	DetectedLanguage string  `json:"detected_language"`
	TranscribedText  string  `json:"transcribed_text"`
	Speaker          string  `json:"speaker"`
	DeviceUsed       string  `json:"device_used"`
	ProcessingTime   float64 `json:"processing_time"`
}

package schema

import "fmt"

// XTTSLanguages lists the codes the cross-lingual model accepts.
var XTTSLanguages = []LanguageInfo{
	{Code: "en", Name: "English"},
	{Code: "es", Name: "Spanish"},
	{Code: "fr", Name: "French"},
	{Code: "de", Name: "German"},
	{Code: "it", Name: "Italian"},
	{Code: "pt", Name: "Portuguese"},
}

const xttsMaxTextLength = 500

// XTTSRequest asks the cross-lingual model for speech, optionally cloning
// an inline speaker sample.
type XTTSRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	// SpeakerWav is base64-encoded reference audio for voice cloning.
	SpeakerWav string  `json:"speaker_wav,omitempty"`
	Speed      float64 `json:"speed"`
}

// Validate applies defaults and checks bounds.
func (r *XTTSRequest) Validate() error {
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.Speed == 0 {
		r.Speed = 1.0
	}

	if r.Text == "" {
		return fmt.Errorf("text is required")
	}
	if len(r.Text) > xttsMaxTextLength {
		return fmt.Errorf("text exceeds max length of %d", xttsMaxTextLength)
	}
	supported := false
	for _, l := range XTTSLanguages {
		if l.Code == r.Language {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("unsupported language %q", r.Language)
	}
	if r.Speed < 0.1 || r.Speed > 3.0 {
		return fmt.Errorf("speed must be between 0.1 and 3.0")
	}
	return nil
}

// XTTSResponse carries synthesized audio as base64 WAV plus metadata.
type XTTSResponse struct {
	AudioData      string  `json:"audio_data"`
	SampleRate     int     `json:"sample_rate"`
	Duration       float64 `json:"duration"`
	Language       string  `json:"language"`
	DeviceUsed     string  `json:"device_used"`
	ProcessingTime float64 `json:"processing_time"`
}

// XTTSHealthResponse reports the cross-lingual service's load state.
type XTTSHealthResponse struct {
	Status       string `json:"status"`
	Device       string `json:"device"`
	Platform     string `json:"platform"`
	ModelLoaded  bool   `json:"model_loaded"`
	GPUAvailable bool   `json:"gpu_available"`
}

package schema

import "fmt"

const (
	maxVoiceNameLength        = 100
	maxVoiceDescriptionLength = 500
)

// AddVoiceRequest stores a reference sample in the voice library.
type AddVoiceRequest struct {
	Name         string `json:"name"`
	RefAudio     string `json:"ref_audio"`
	Description  string `json:"description,omitempty"`
	RefText      string `json:"ref_text,omitempty"`
	LanguageHint string `json:"language_hint,omitempty"`
}

// Validate applies defaults and checks bounds.
func (r *AddVoiceRequest) Validate() error {
	if r.LanguageHint == "" {
		r.LanguageHint = DefaultLanguage
	}

	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(r.Name) > maxVoiceNameLength {
		return fmt.Errorf("name exceeds max length of %d", maxVoiceNameLength)
	}
	if r.RefAudio == "" {
		return fmt.Errorf("ref_audio is required")
	}
	if len(r.Description) > maxVoiceDescriptionLength {
		return fmt.Errorf("description exceeds max length of %d", maxVoiceDescriptionLength)
	}
	if len(r.RefText) > MaxRefTextLength {
		return fmt.Errorf("ref_text exceeds max length of %d", MaxRefTextLength)
	}
	if !IsLanguageCode(r.LanguageHint) {
		return fmt.Errorf("unsupported language %q", r.LanguageHint)
	}
	return nil
}

// UpdateVoiceRequest patches name and/or description of a stored voice.
// Only fields that are present are changed.
type UpdateVoiceRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Validate checks bounds of the supplied fields.
func (r *UpdateVoiceRequest) Validate() error {
	if r.Name == nil && r.Description == nil {
		return fmt.Errorf("nothing to update")
	}
	if r.Name != nil {
		if *r.Name == "" {
			return fmt.Errorf("name must not be empty")
		}
		if len(*r.Name) > maxVoiceNameLength {
			return fmt.Errorf("name exceeds max length of %d", maxVoiceNameLength)
		}
	}
	if r.Description != nil && len(*r.Description) > maxVoiceDescriptionLength {
		return fmt.Errorf("description exceeds max length of %d", maxVoiceDescriptionLength)
	}
	return nil
}

// VoiceEntryResponse is the public view of a stored voice. The reference
// audio itself stays server side.
type VoiceEntryResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	RefText      string `json:"ref_text,omitempty"`
	CreatedAt    string `json:"created_at"`
	LanguageHint string `json:"language_hint"`
}

// ListVoicesResponse wraps the voice catalog.
type ListVoicesResponse struct {
	Voices []VoiceEntryResponse `json:"voices"`
}

// DeleteVoiceResponse acknowledges a deletion.
type DeleteVoiceResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// LibrarySynthesizeRequest synthesizes text with a stored library voice.
type LibrarySynthesizeRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Validate applies defaults and checks bounds.
func (r *LibrarySynthesizeRequest) Validate() error {
	if r.Language == "" {
		r.Language = DefaultLanguage
	}
	if r.Text == "" {
		return fmt.Errorf("text is required")
	}
	if len(r.Text) > MaxTextLength {
		return fmt.Errorf("text exceeds max length of %d", MaxTextLength)
	}
	if !IsLanguageCode(r.Language) {
		return fmt.Errorf("unsupported language %q", r.Language)
	}
	return nil
}

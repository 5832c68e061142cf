package api

import (
	"net/http"

	"github.com/qwen-tts-go/qwen-tts-go/internal/schema"
)

// HandleTranslateSynthesize translates text and speaks the result.
func (h *Handler) HandleTranslateSynthesize(w http.ResponseWriter, r *http.Request) {
	var req schema.TranslateSynthesizeRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.service.TranslateAndSynthesize(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// HandleAudioToAudio transcribes, translates and re-speaks input audio.
func (h *Handler) HandleAudioToAudio(w http.ResponseWriter, r *http.Request) {
	var req schema.AudioToAudioRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.service.AudioToAudio(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// HandleCloneAudioToAudio re-speaks input audio in its own language
// with a cloned voice.
func (h *Handler) HandleCloneAudioToAudio(w http.ResponseWriter, r *http.Request) {
	var req schema.CloneAudioToAudioRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.service.CloneAudioToAudio(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

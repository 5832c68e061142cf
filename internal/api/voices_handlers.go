package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qwen-tts-go/qwen-tts-go/internal/library"
	"github.com/qwen-tts-go/qwen-tts-go/internal/schema"
)

// HandleAddVoice stores a reference sample in the voice library.
func (h *Handler) HandleAddVoice(w http.ResponseWriter, r *http.Request) {
	var req schema.AddVoiceRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Reference samples must decode and be long enough before they are
	// worth persisting.
	if err := h.service.CheckReference(r.Context(), req.RefAudio); err != nil {
		writeServiceError(w, err)
		return
	}

	entry, err := h.service.Library().Add(req.Name, req.RefAudio, req.Description, req.RefText, req.LanguageHint)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, voiceEntry(entry))
}

// HandleListVoices returns the stored voice catalog.
func (h *Handler) HandleListVoices(w http.ResponseWriter, _ *http.Request) {
	entries := h.service.Library().List()
	voices := make([]schema.VoiceEntryResponse, 0, len(entries))
	for _, entry := range entries {
		voices = append(voices, voiceEntry(entry))
	}
	WriteJSON(w, http.StatusOK, schema.ListVoicesResponse{Voices: voices})
}

// HandleGetVoice returns one stored voice.
func (h *Handler) HandleGetVoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entry, ok := h.service.Library().Get(id)
	if !ok {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("voice %s not found", id))
		return
	}
	WriteJSON(w, http.StatusOK, voiceEntry(entry))
}

// HandleUpdateVoice patches name and/or description of a stored voice.
func (h *Handler) HandleUpdateVoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req schema.UpdateVoiceRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := req.Validate(); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.service.Library().Update(id, req.Name, req.Description)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, voiceEntry(entry))
}

// HandleDeleteVoice removes a stored voice.
func (h *Handler) HandleDeleteVoice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := h.service.Library().Delete(id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !deleted {
		WriteError(w, http.StatusNotFound, fmt.Sprintf("voice %s not found", id))
		return
	}
	WriteJSON(w, http.StatusOK, schema.DeleteVoiceResponse{Deleted: true, ID: id})
}

// HandleVoiceSynthesize generates speech with a stored library voice.
func (h *Handler) HandleVoiceSynthesize(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req schema.LibrarySynthesizeRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.service.SynthesizeWithLibraryVoice(r.Context(), id, &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// HandleVoiceAudioToAudio runs the speech translation pipeline with a
// stored library voice as the output timbre.
func (h *Handler) HandleVoiceAudioToAudio(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req schema.AudioToAudioRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	req.VoiceID = id

	resp, err := h.service.AudioToAudio(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

func voiceEntry(entry library.Entry) schema.VoiceEntryResponse {
	return schema.VoiceEntryResponse{
		ID:           entry.ID,
		Name:         entry.Name,
		Description:  entry.Description,
		RefText:      entry.RefText,
		CreatedAt:    entry.CreatedAt,
		LanguageHint: entry.LanguageHint,
	}
}

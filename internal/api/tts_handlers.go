package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/qwen-tts-go/qwen-tts-go/internal/schema"
	"github.com/qwen-tts-go/qwen-tts-go/internal/tts"
)

// HandleSynthesize generates speech with a preset speaker.
func (h *Handler) HandleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req schema.SynthesizeRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.service.Synthesize(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// HandleClone generates speech in the voice of an inline reference sample.
func (h *Handler) HandleClone(w http.ResponseWriter, r *http.Request) {
	var req schema.CloneRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.service.Clone(r.Context(), &req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

// HandleSynthesizeStream answers newline-delimited JSON chunks, one per
// sentence. Validation failures are still plain HTTP errors; once the
// first chunk is written the status is committed and any later failure
// arrives as an in-band error chunk.
func (h *Handler) HandleSynthesizeStream(w http.ResponseWriter, r *http.Request) {
	var req schema.SynthesizeRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	flusher, canFlush := w.(http.Flusher)
	started := false
	encoder := json.NewEncoder(w)

	err := h.service.SynthesizeStream(r.Context(), &req, func(chunk schema.StreamChunk) error {
		if !started {
			w.Header().Set("Content-Type", "application/x-ndjson")
			w.WriteHeader(http.StatusOK)
			started = true
		}
		if err := encoder.Encode(chunk); err != nil {
			return err
		}
		if canFlush {
			flusher.Flush()
		}
		return nil
	})
	if err != nil && !started {
		writeServiceError(w, err)
		return
	}
	if err != nil && !errors.Is(err, tts.ErrValidation) {
		h.logger.Debug().Err(err).Msg("stream ended with error chunk")
	}
}

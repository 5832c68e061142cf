package xttsapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/qwen-tts-go/qwen-tts-go/internal/audio"
	"github.com/qwen-tts-go/qwen-tts-go/internal/backend"
	"github.com/qwen-tts-go/qwen-tts-go/internal/schema"
)

// Handler holds the API dependencies.
type Handler struct {
	service *Service
	logger  zerolog.Logger
}

// NewRouter constructs the cross-lingual service router.
func NewRouter(service *Service, logger zerolog.Logger) chi.Router {
	h := &Handler{service: service, logger: logger}

	r := chi.NewRouter()
	r.Get("/health", h.HandleHealth)
	r.Get("/languages", h.HandleListLanguages)
	r.Post("/synthesize", h.HandleSynthesize)
	return r
}

// HandleHealth always answers 200; the body carries the load state.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Health(r.Context()))
}

// HandleListLanguages returns the supported language catalog.
func (h *Handler) HandleListLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]schema.LanguageInfo{"languages": schema.XTTSLanguages})
}

// HandleSynthesize generates speech with the cross-lingual model.
func (h *Handler) HandleSynthesize(w http.ResponseWriter, r *http.Request) {
	var req schema.XTTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	resp, err := h.service.Synthesize(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation), errors.Is(err, audio.ErrInvalidSample):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, backend.ErrOutOfMemory):
			w.Header().Set("Retry-After", "30")
			writeError(w, http.StatusServiceUnavailable, "GPU memory exhausted, retry later")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, schema.ErrorResponse{Detail: message})
}

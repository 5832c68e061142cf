package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/qwen-tts-go/qwen-tts-go/internal/schema"
	"github.com/qwen-tts-go/qwen-tts-go/internal/tts"
)

// Handler holds the API dependencies.
type Handler struct {
	service *tts.Service
	logger  zerolog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(service *tts.Service, logger zerolog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// HandleHealth always answers 200 so liveness probes do not restart the
// process during the long model warm-up; the body carries the state.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.service.Health(r.Context()))
}

// HandleReady answers 503 until both synthesis models are loaded.
func (h *Handler) HandleReady(w http.ResponseWriter, r *http.Request) {
	if !h.service.Ready() {
		WriteJSON(w, http.StatusServiceUnavailable, schema.ReadyResponse{Status: "loading"})
		return
	}
	WriteJSON(w, http.StatusOK, schema.ReadyResponse{Status: "ready"})
}

// HandleListLanguages returns the supported language catalog.
func (h *Handler) HandleListLanguages(w http.ResponseWriter, _ *http.Request) {
	languages := make([]schema.LanguageInfo, 0, len(schema.LanguageCodes))
	for _, code := range schema.LanguageCodes {
		languages = append(languages, schema.LanguageInfo{
			Code: code,
			Name: schema.DisplayNames[code],
		})
	}
	WriteJSON(w, http.StatusOK, map[string][]schema.LanguageInfo{"languages": languages})
}

// HandleListSpeakers returns the preset speaker catalog.
func (h *Handler) HandleListSpeakers(w http.ResponseWriter, _ *http.Request) {
	speakers := make([]schema.SpeakerInfo, 0, len(schema.Speakers))
	for _, name := range schema.Speakers {
		speakers = append(speakers, schema.SpeakerInfo{Name: name})
	}
	WriteJSON(w, http.StatusOK, map[string][]schema.SpeakerInfo{"speakers": speakers})
}

// decodeBody parses a JSON request body into dst.
func decodeBody(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}

package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/qwen-tts-go/qwen-tts-go/internal/config"
	"github.com/qwen-tts-go/qwen-tts-go/internal/streaming"
	"github.com/qwen-tts-go/qwen-tts-go/internal/tts"
)

// NewRouter constructs the HTTP router with middleware and routes.
func NewRouter(cfg *config.Config, service *tts.Service, metrics *streaming.Metrics, logger zerolog.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(CORSMiddleware)
	r.Use(MaxBodyMiddleware(cfg.Limits.MaxBodyBytes))

	h := NewHandler(service, logger)

	// Liveness and readiness stay outside auth so probes never see 401.
	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)

	r.Group(func(r chi.Router) {
		if cfg.Auth.APIKey != "" {
			r.Use(AuthMiddleware(cfg.Auth.APIKey))
		}

		r.Get("/languages", h.HandleListLanguages)
		r.Get("/speakers", h.HandleListSpeakers)
		r.Method("GET", "/metrics", streaming.MetricsHandler(metrics))

		r.Post("/synthesize", h.HandleSynthesize)
		r.Post("/synthesize/stream", h.HandleSynthesizeStream)
		r.Post("/clone", h.HandleClone)

		r.Post("/voices", h.HandleAddVoice)
		r.Get("/voices", h.HandleListVoices)
		r.Get("/voices/{id}", h.HandleGetVoice)
		r.Patch("/voices/{id}", h.HandleUpdateVoice)
		r.Delete("/voices/{id}", h.HandleDeleteVoice)
		r.Post("/voices/{id}/synthesize", h.HandleVoiceSynthesize)
		r.Post("/voices/{id}/audio-to-audio", h.HandleVoiceAudioToAudio)

		r.Post("/translate-synthesize", h.HandleTranslateSynthesize)
		r.Post("/audio-to-audio", h.HandleAudioToAudio)
		r.Post("/clone/audio-to-audio", h.HandleCloneAudioToAudio)
	})

	return r
}

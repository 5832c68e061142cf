package api

import (
	"errors"
	"net/http"

	"github.com/qwen-tts-go/qwen-tts-go/internal/audio"
	"github.com/qwen-tts-go/qwen-tts-go/internal/backend"
	"github.com/qwen-tts-go/qwen-tts-go/internal/library"
	"github.com/qwen-tts-go/qwen-tts-go/internal/queue"
	"github.com/qwen-tts-go/qwen-tts-go/internal/streaming"
	"github.com/qwen-tts-go/qwen-tts-go/internal/tts"
)

// oomRetryAfter is the hint sent with GPU exhaustion responses.
const oomRetryAfter = "30"

// writeServiceError maps service errors onto HTTP status codes:
// client-fixable input problems to 400, unknown voices to 404, capacity
// exhaustion to 503 (with a retry hint for GPU memory), everything else
// to 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, tts.ErrValidation), errors.Is(err, audio.ErrInvalidSample):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, library.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, backend.ErrOutOfMemory):
		w.Header().Set("Retry-After", oomRetryAfter)
		WriteError(w, http.StatusServiceUnavailable, "GPU memory exhausted, retry later")
	case errors.Is(err, queue.ErrQueueFull),
		errors.Is(err, streaming.ErrLimitExceeded),
		errors.Is(err, streaming.ErrAcquireTimeout):
		WriteError(w, http.StatusServiceUnavailable, "server busy, retry later")
	default:
		WriteError(w, http.StatusInternalServerError, err.Error())
	}
}

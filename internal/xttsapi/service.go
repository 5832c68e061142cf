// Package xttsapi is the second, smaller service: a thin HTTP surface
// over the cross-lingual model with a single lazy-loaded slot.
package xttsapi

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/qwen-tts-go/qwen-tts-go/internal/audio"
	"github.com/qwen-tts-go/qwen-tts-go/internal/backend"
	"github.com/qwen-tts-go/qwen-tts-go/internal/models"
	"github.com/qwen-tts-go/qwen-tts-go/internal/schema"
)

// ModelXTTS is the runtime slot the cross-lingual model loads into.
const ModelXTTS = "xtts"

// ErrValidation marks request errors the client can fix.
var ErrValidation = errors.New("invalid request")

// Service wires the runtime client and model manager into the
// cross-lingual synthesis operation.
type Service struct {
	client  backend.Client
	manager *models.Manager
	logger  zerolog.Logger
}

// NewService constructs a Service.
func NewService(client backend.Client, manager *models.Manager, logger zerolog.Logger) *Service {
	return &Service{
		client:  client,
		manager: manager,
		logger:  logger.With().Str("component", "xtts").Logger(),
	}
}

// Synthesize generates speech with the cross-lingual model, cloning the
// inline speaker sample when one is supplied.
func (s *Service) Synthesize(ctx context.Context, req *schema.XTTSRequest) (*schema.XTTSResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var speakerWav []byte
	if req.SpeakerWav != "" {
		raw, err := base64.StdEncoding.DecodeString(req.SpeakerWav)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid base64 audio data: %v", audio.ErrInvalidSample, err)
		}
		speakerWav = raw
	}

	if err := s.manager.EnsureLoaded(ctx, ModelXTTS); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.client.XTTS(ctx, &backend.XTTSRequest{
		Text:       req.Text,
		Language:   req.Language,
		SpeakerWav: speakerWav,
		Speed:      req.Speed,
	})
	if err != nil {
		return nil, err
	}

	duration, sampleRate, err := audio.WAVStats(result.Audio)
	if err != nil {
		return nil, fmt.Errorf("inspect synthesized audio: %w", err)
	}

	return &schema.XTTSResponse{
		AudioData:      base64.StdEncoding.EncodeToString(result.Audio),
		SampleRate:     sampleRate,
		Duration:       duration,
		Language:       req.Language,
		DeviceUsed:     s.deviceName(ctx),
		ProcessingTime: time.Since(start).Seconds(),
	}, nil
}

// Health reports the service's load state; like the main service it
// always answers with a body rather than a non-200 status.
func (s *Service) Health(ctx context.Context) *schema.XTTSHealthResponse {
	resp := &schema.XTTSHealthResponse{
		Status:      "healthy",
		Device:      "unknown",
		Platform:    runtime.GOOS,
		ModelLoaded: s.manager.IsLoaded(ModelXTTS),
	}
	if !resp.ModelLoaded {
		resp.Status = "initializing"
	}
	if state, _ := s.manager.StateOf(ModelXTTS); state == models.Failed {
		resp.Status = "degraded"
	}

	if device, err := s.manager.Device(ctx); err == nil && device != nil {
		resp.Device = device.Device
		resp.GPUAvailable = device.GPUAvailable
	}
	return resp
}

func (s *Service) deviceName(ctx context.Context) string {
	device, err := s.manager.Device(ctx)
	if err != nil || device == nil {
		return "unknown"
	}
	return device.Device
}

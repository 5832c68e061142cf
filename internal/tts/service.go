// Package tts implements the synthesis operations behind the HTTP API:
// preset-speaker synthesis, voice cloning, pseudo-streaming, library
// voices, and the speech translation pipeline.
package tts

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/qwen-tts-go/qwen-tts-go/internal/audio"
	"github.com/qwen-tts-go/qwen-tts-go/internal/backend"
	"github.com/qwen-tts-go/qwen-tts-go/internal/library"
	"github.com/qwen-tts-go/qwen-tts-go/internal/models"
	"github.com/qwen-tts-go/qwen-tts-go/internal/queue"
	"github.com/qwen-tts-go/qwen-tts-go/internal/schema"
	"github.com/qwen-tts-go/qwen-tts-go/internal/streaming"
	"github.com/qwen-tts-go/qwen-tts-go/internal/translate"
)

// Model slot names the manager and runtime agree on.
const (
	ModelCustomVoice = "custom_voice"
	ModelBase        = "base"
	ModelASR         = "asr"
)

// ErrValidation marks request errors the client can fix.
var ErrValidation = errors.New("invalid request")

// Service wires the runtime client, model manager, voice library and
// translators into the synthesis operations.
type Service struct {
	client    backend.Client
	manager   *models.Manager
	library   *library.Library
	translate *translate.Provider
	validator *audio.Validator
	pool      *queue.Manager
	gate      *streaming.Gate
	metrics   *streaming.Metrics
	logger    zerolog.Logger
}

// Options collects the Service dependencies.
type Options struct {
	Client     backend.Client
	Manager    *models.Manager
	Library    *library.Library
	Translator *translate.Provider
	Validator  *audio.Validator
	Pool       *queue.Manager
	Gate       *streaming.Gate
	Metrics    *streaming.Metrics
	Logger     zerolog.Logger
}

// NewService constructs a Service.
func NewService(opts Options) *Service {
	if opts.Validator == nil {
		opts.Validator = audio.NewValidator()
	}
	return &Service{
		client:    opts.Client,
		manager:   opts.Manager,
		library:   opts.Library,
		translate: opts.Translator,
		validator: opts.Validator,
		pool:      opts.Pool,
		gate:      opts.Gate,
		metrics:   opts.Metrics,
		logger:    opts.Logger.With().Str("component", "tts").Logger(),
	}
}

// Library exposes the voice library for the catalog handlers.
func (s *Service) Library() *library.Library {
	return s.library
}

// Synthesize generates speech with a preset speaker timbre.
func (s *Service) Synthesize(ctx context.Context, req *schema.SynthesizeRequest) (*schema.SynthesizeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := s.manager.EnsureLoaded(ctx, ModelCustomVoice); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.customVoice(ctx, req.Text, req.Speaker, req.Language, req.Instruction)
	if err != nil {
		return nil, err
	}

	duration, sampleRate, err := audio.WAVStats(result.Audio)
	if err != nil {
		return nil, fmt.Errorf("inspect synthesized audio: %w", err)
	}

	return &schema.SynthesizeResponse{
		AudioData:      base64.StdEncoding.EncodeToString(result.Audio),
		SampleRate:     sampleRate,
		Duration:       duration,
		Language:       req.Language,
		Speaker:        req.Speaker,
		DeviceUsed:     s.deviceName(ctx),
		ProcessingTime: time.Since(start).Seconds(),
	}, nil
}

// Clone generates speech in the voice of the supplied reference sample.
// Without a reference transcript the cheaper x-vector-only mode is used.
func (s *Service) Clone(ctx context.Context, req *schema.CloneRequest) (*schema.SynthesizeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	refAudio, cleanup, err := s.stageReference(ctx, req.SpeakerAudio)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	if err := s.manager.EnsureLoaded(ctx, ModelBase); err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := s.cloneVoice(ctx, req.Text, refAudio, req.RefText, req.Language)
	if err != nil {
		return nil, err
	}

	duration, sampleRate, err := audio.WAVStats(result.Audio)
	if err != nil {
		return nil, fmt.Errorf("inspect synthesized audio: %w", err)
	}

	return &schema.SynthesizeResponse{
		AudioData:      base64.StdEncoding.EncodeToString(result.Audio),
		SampleRate:     sampleRate,
		Duration:       duration,
		Language:       req.Language,
		Speaker:        "cloned",
		DeviceUsed:     s.deviceName(ctx),
		ProcessingTime: time.Since(start).Seconds(),
	}, nil
}

// SynthesizeWithLibraryVoice generates speech with a stored library voice.
func (s *Service) SynthesizeWithLibraryVoice(ctx context.Context, voiceID string, req *schema.LibrarySynthesizeRequest) (*schema.SynthesizeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	entry, ok := s.library.Get(voiceID)
	if !ok {
		return nil, fmt.Errorf("voice %s: %w", voiceID, library.ErrNotFound)
	}

	resp, err := s.Clone(ctx, &schema.CloneRequest{
		Text:         req.Text,
		SpeakerAudio: entry.RefAudioB64,
		RefText:      entry.RefText,
		Language:     req.Language,
	})
	if err != nil {
		return nil, err
	}
	resp.Speaker = entry.Name
	return resp, nil
}

// CheckReference stages and discards a base64 reference sample, so a
// bad sample is rejected before it is persisted anywhere.
func (s *Service) CheckReference(ctx context.Context, audioB64 string) error {
	path, _, err := s.validator.Stage(ctx, audioB64)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		s.logger.Warn().Err(err).Str("path", path).Msg("failed to remove staged reference audio")
	}
	return nil
}

// customVoice runs a preset-speaker synthesis on the inference pool.
func (s *Service) customVoice(ctx context.Context, text, speaker, language, instruction string) (*backend.TTSResult, error) {
	var result *backend.TTSResult
	err := s.submit(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.client.CustomVoice(ctx, &backend.CustomVoiceRequest{
			Text:        text,
			Speaker:     speaker,
			Language:    modelLanguage(language),
			Instruction: instruction,
		})
		return err
	})
	return result, err
}

// cloneVoice runs a clone synthesis on the inference pool.
func (s *Service) cloneVoice(ctx context.Context, text string, refAudio []byte, refText, language string) (*backend.TTSResult, error) {
	var result *backend.TTSResult
	err := s.submit(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.client.CloneVoice(ctx, &backend.CloneVoiceRequest{
			Text:        text,
			RefAudio:    refAudio,
			RefText:     refText,
			XVectorOnly: refText == "",
			Language:    modelLanguage(language),
		})
		return err
	})
	return result, err
}

func (s *Service) submit(ctx context.Context, fn func(context.Context) error) error {
	if s.pool == nil {
		return fn(ctx)
	}
	return s.pool.Submit(ctx, fn)
}

// stageReference validates and loads a base64 reference sample. The
// returned cleanup removes the staged temp file.
func (s *Service) stageReference(ctx context.Context, audioB64 string) ([]byte, func(), error) {
	path, _, err := s.validator.Stage(ctx, audioB64)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := os.Remove(path); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("failed to remove staged reference audio")
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("read staged reference audio: %w", err)
	}
	return data, cleanup, nil
}

// modelLanguage converts a short code to the full language name the
// model expects, bridging non-native codes to their synthesis target.
// Codes outside the accepted set fall back to the model's auto-detection.
func modelLanguage(code string) string {
	if !schema.IsLanguageCode(code) {
		return "Auto"
	}
	return schema.DisplayNames[translate.SynthesisLanguage(code)]
}

func (s *Service) deviceName(ctx context.Context) string {
	device, err := s.manager.Device(ctx)
	if err != nil || device == nil {
		return "unknown"
	}
	return device.Device
}

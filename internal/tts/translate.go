package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/qwen-tts-go/qwen-tts-go/internal/audio"
	"github.com/qwen-tts-go/qwen-tts-go/internal/backend"
	"github.com/qwen-tts-go/qwen-tts-go/internal/library"
	"github.com/qwen-tts-go/qwen-tts-go/internal/schema"
)

// TranslateAndSynthesize translates the text into the target language
// and speaks the result. Translation never fails the request: when no
// translator can serve, the original text is synthesized and the
// response flags the fallback.
func (s *Service) TranslateAndSynthesize(ctx context.Context, req *schema.TranslateSynthesizeRequest) (*schema.TranslateSynthesizeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	start := time.Now()
	translated, fallback := s.translate.Translate(ctx, req.Text, req.SourceLanguage, req.TargetLanguage)

	result, speaker, err := s.speakAs(ctx, translated, req.TargetLanguage, req.Speaker, req.VoiceID, req.Instruction)
	if err != nil {
		return nil, err
	}

	duration, sampleRate, err := audio.WAVStats(result.Audio)
	if err != nil {
		return nil, fmt.Errorf("inspect synthesized audio: %w", err)
	}

	return &schema.TranslateSynthesizeResponse{
		AudioData:           base64.StdEncoding.EncodeToString(result.Audio),
		SampleRate:          sampleRate,
		Duration:            duration,
		SourceLanguage:      req.SourceLanguage,
		TargetLanguage:      req.TargetLanguage,
		OriginalText:        req.Text,
		TranslatedText:      translated,
		TranslationFallback: fallback,
		Speaker:             speaker,
		DeviceUsed:          s.deviceName(ctx),
		ProcessingTime:      time.Since(start).Seconds(),
	}, nil
}

// AudioToAudio transcribes the input, translates the transcript into
// the target language and speaks it.
func (s *Service) AudioToAudio(ctx context.Context, req *schema.AudioToAudioRequest) (*schema.TranslateSynthesizeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	input, inputCleanup, err := s.stageReference(ctx, req.Audio)
	if err != nil {
		return nil, err
	}
	defer inputCleanup()

	start := time.Now()
	transcript, err := s.transcribe(ctx, input)
	if err != nil {
		return nil, err
	}

	translated, fallback := s.translate.Translate(ctx, transcript.Text, transcript.Language, req.TargetLanguage)

	result, speaker, err := s.speakAs(ctx, translated, req.TargetLanguage, req.Speaker, req.VoiceID, req.Instruction)
	if err != nil {
		return nil, err
	}

	duration, sampleRate, err := audio.WAVStats(result.Audio)
	if err != nil {
		return nil, fmt.Errorf("inspect synthesized audio: %w", err)
	}

	return &schema.TranslateSynthesizeResponse{
		AudioData:           base64.StdEncoding.EncodeToString(result.Audio),
		SampleRate:          sampleRate,
		Duration:            duration,
		SourceLanguage:      transcript.Language,
		TargetLanguage:      req.TargetLanguage,
		OriginalText:        transcript.Text,
		TranslatedText:      translated,
		TranslationFallback: fallback,
		Speaker:             speaker,
		DeviceUsed:          s.deviceName(ctx),
		ProcessingTime:      time.Since(start).Seconds(),
	}, nil
}

// CloneAudioToAudio transcribes the input and re-speaks it in the same
// language with a cloned voice. The reference is resolved and request
// shape checked before the expensive transcription runs.
func (s *Service) CloneAudioToAudio(ctx context.Context, req *schema.CloneAudioToAudioRequest) (*schema.CloneAudioToAudioResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	refAudio, refText, speakerName, cleanup, err := s.resolveReference(ctx, req.VoiceID, req.SpeakerAudio, req.RefText)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	input, inputCleanup, err := s.stageReference(ctx, req.Audio)
	if err != nil {
		return nil, err
	}
	defer inputCleanup()

	start := time.Now()
	transcript, err := s.transcribe(ctx, input)
	if err != nil {
		return nil, err
	}

	if err := s.manager.EnsureLoaded(ctx, ModelBase); err != nil {
		return nil, err
	}
	result, err := s.cloneVoice(ctx, transcript.Text, refAudio, refText, synthesisSource(transcript.Language))
	if err != nil {
		return nil, err
	}

	duration, sampleRate, err := audio.WAVStats(result.Audio)
	if err != nil {
		return nil, fmt.Errorf("inspect synthesized audio: %w", err)
	}

	return &schema.CloneAudioToAudioResponse{
		AudioData:        base64.StdEncoding.EncodeToString(result.Audio),
		SampleRate:       sampleRate,
		Duration:         duration,
		DetectedLanguage: transcript.Language,
		TranscribedText:  transcript.Text,
		Speaker:          speakerName,
		DeviceUsed:       s.deviceName(ctx),
		ProcessingTime:   time.Since(start).Seconds(),
	}, nil
}

// speakAs synthesizes text with either a stored library voice or a
// preset speaker, returning the generated audio and the speaker label.
func (s *Service) speakAs(ctx context.Context, text, language, speaker, voiceID, instruction string) (*backend.TTSResult, string, error) {
	if voiceID != "" {
		entry, ok := s.library.Get(voiceID)
		if !ok {
			return nil, "", fmt.Errorf("voice %s: %w", voiceID, library.ErrNotFound)
		}
		refAudio, err := base64.StdEncoding.DecodeString(entry.RefAudioB64)
		if err != nil {
			return nil, "", fmt.Errorf("decode stored reference audio: %w", err)
		}
		if err := s.manager.EnsureLoaded(ctx, ModelBase); err != nil {
			return nil, "", err
		}
		result, err := s.cloneVoice(ctx, text, refAudio, entry.RefText, language)
		if err != nil {
			return nil, "", err
		}
		return result, entry.Name, nil
	}

	if err := s.manager.EnsureLoaded(ctx, ModelCustomVoice); err != nil {
		return nil, "", err
	}
	result, err := s.customVoice(ctx, text, speaker, language, instruction)
	if err != nil {
		return nil, "", err
	}
	return result, speaker, nil
}

// resolveReference returns the reference audio bytes, transcript and
// speaker label for a clone request, from either the voice library or
// an inline sample. cleanup is always safe to call.
func (s *Service) resolveReference(ctx context.Context, voiceID, speakerAudio, refText string) ([]byte, string, string, func(), error) {
	noop := func() {}

	if voiceID != "" {
		entry, ok := s.library.Get(voiceID)
		if !ok {
			return nil, "", "", noop, fmt.Errorf("voice %s: %w", voiceID, library.ErrNotFound)
		}
		refAudio, err := base64.StdEncoding.DecodeString(entry.RefAudioB64)
		if err != nil {
			return nil, "", "", noop, fmt.Errorf("decode stored reference audio: %w", err)
		}
		return refAudio, entry.RefText, entry.Name, noop, nil
	}

	refAudio, cleanup, err := s.stageReference(ctx, speakerAudio)
	if err != nil {
		return nil, "", "", noop, err
	}
	return refAudio, refText, "cloned", cleanup, nil
}

// transcribe runs ASR on the inference pool.
func (s *Service) transcribe(ctx context.Context, input []byte) (*backend.TranscribeResult, error) {
	if err := s.manager.EnsureLoaded(ctx, ModelASR); err != nil {
		return nil, err
	}

	var result *backend.TranscribeResult
	err := s.submit(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.client.Transcribe(ctx, &backend.TranscribeRequest{Audio: input})
		return err
	})
	return result, err
}

// synthesisSource normalizes an ASR language code for re-synthesis.
// The raw detected code is echoed in responses; only the code handed to
// the synthesizer falls back when the recognizer reports something the
// model has no mapping for.
func synthesisSource(code string) string {
	if schema.IsLanguageCode(code) {
		return code
	}
	return schema.DefaultLanguage
}

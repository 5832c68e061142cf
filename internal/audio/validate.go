// Package audio decodes, identifies and stages reference audio samples.
//
// Samples arrive as base64 strings inside JSON bodies. Staging writes them
// to a scoped temp file (transcoding M4A to WAV on the way), measures the
// duration and enforces a minimum length so the cloning model has enough
// signal to work with.
package audio

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// ErrInvalidSample marks reference audio the caller can fix: bad base64,
// an unsupported container, or a sample that is too short.
var ErrInvalidSample = errors.New("audio: invalid sample")

// MinSampleDuration is the floor for reference samples, in seconds.
const MinSampleDuration = 3.0

// Validator stages base64 audio payloads into temp files.
type Validator struct {
	// FFmpegPath locates the external decoder used for M4A input.
	// Defaults to "ffmpeg" on PATH.
	FFmpegPath string
	// MinDuration overrides MinSampleDuration when positive.
	MinDuration float64
}

// NewValidator returns a Validator with default settings.
func NewValidator() *Validator {
	return &Validator{FFmpegPath: "ffmpeg", MinDuration: MinSampleDuration}
}

// Stage decodes the base64 payload, sniffs its container format, writes it
// to a temp file (M4A is transcoded to WAV first) and verifies the minimum
// duration. On success the caller owns deletion of the returned path.
func (v *Validator) Stage(ctx context.Context, audioB64 string) (string, float64, error) {
	raw, err := base64.StdEncoding.DecodeString(audioB64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: invalid base64 audio data: %v", ErrInvalidSample, err)
	}

	format := DetectFormat(raw)
	switch format {
	case FormatWAV, FormatFLAC, FormatMP3, FormatM4A:
	default:
		return "", 0, fmt.Errorf("%w: unsupported audio format, supported formats: flac, m4a, mp3, wav", ErrInvalidSample)
	}

	tmp, err := os.CreateTemp("", "refaudio-*"+format.Extension())
	if err != nil {
		return "", 0, fmt.Errorf("create temp file: %w", err)
	}
	path := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(path)
		return "", 0, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("close temp file: %w", err)
	}

	if format == FormatM4A {
		converted, err := v.transcodeToWAV(ctx, path)
		os.Remove(path)
		if err != nil {
			return "", 0, fmt.Errorf("%w: failed to convert M4A audio: %v", ErrInvalidSample, err)
		}
		path = converted
		format = FormatWAV
	}

	duration, _, err := Duration(path, format)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("%w: failed to read audio file: %v", ErrInvalidSample, err)
	}

	min := v.MinDuration
	if min <= 0 {
		min = MinSampleDuration
	}
	if duration < min {
		os.Remove(path)
		return "", 0, fmt.Errorf("%w: audio sample too short (%.1fs), minimum duration is %.0f seconds",
			ErrInvalidSample, duration, min)
	}

	return path, duration, nil
}

// transcodeToWAV shells out to ffmpeg, returning the path of a fresh WAV
// temp file.
func (v *Validator) transcodeToWAV(ctx context.Context, src string) (string, error) {
	out, err := os.CreateTemp("", "refaudio-*.wav")
	if err != nil {
		return "", err
	}
	dst := out.Name()
	out.Close()

	ffmpeg := v.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}

	cmd := exec.CommandContext(ctx, ffmpeg, "-y", "-i", src, "-f", "wav", dst)
	if output, err := cmd.CombinedOutput(); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("ffmpeg: %v: %s", err, firstLine(output))
	}
	return dst, nil
}

func firstLine(b []byte) string {
	for i, c := range b {
		if c == '\n' {
			return string(b[:i])
		}
	}
	return string(b)
}

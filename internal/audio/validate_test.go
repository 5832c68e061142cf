package audio

import (
	"context"
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeWAV writes a mono 16-bit WAV of the given length and returns its bytes.
func makeWAV(t *testing.T, seconds float64, sampleRate int) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sample.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 16, 1, 1)
	n := int(seconds * float64(sampleRate))
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           make([]int, n),
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestStageAcceptsLongEnoughWAV(t *testing.T) {
	data := makeWAV(t, 4.0, 24000)
	v := NewValidator()

	path, duration, err := v.Stage(context.Background(), base64.StdEncoding.EncodeToString(data))
	require.NoError(t, err)
	defer os.Remove(path)

	assert.InDelta(t, 4.0, duration, 0.05)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}

func TestStageAcceptsExactMinimumDuration(t *testing.T) {
	data := makeWAV(t, MinSampleDuration, 24000)
	v := NewValidator()

	path, duration, err := v.Stage(context.Background(), base64.StdEncoding.EncodeToString(data))
	require.NoError(t, err)
	defer os.Remove(path)

	assert.InDelta(t, MinSampleDuration, duration, 1e-9)
}

func TestStageRejectsShortSample(t *testing.T) {
	data := makeWAV(t, 1.5, 24000)
	v := NewValidator()

	_, _, err := v.Stage(context.Background(), base64.StdEncoding.EncodeToString(data))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSample))
	assert.Contains(t, err.Error(), "too short")
}

func TestStageRejectsBadBase64(t *testing.T) {
	v := NewValidator()
	_, _, err := v.Stage(context.Background(), "not-base64!!!")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSample))
}

func TestStageRejectsUnknownFormat(t *testing.T) {
	v := NewValidator()
	payload := base64.StdEncoding.EncodeToString([]byte("this is definitely not audio data"))
	_, _, err := v.Stage(context.Background(), payload)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidSample))
	assert.Contains(t, err.Error(), "supported formats")
}

func TestWAVStats(t *testing.T) {
	data := makeWAV(t, 2.0, 44100)
	duration, rate, err := WAVStats(data)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, duration, 0.05)
	assert.Equal(t, 44100, rate)
}

func TestWAVStatsRejectsGarbage(t *testing.T) {
	_, _, err := WAVStats([]byte("not a wav"))
	require.Error(t, err)
}

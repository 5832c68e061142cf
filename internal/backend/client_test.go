package backend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestClientCustomVoiceSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/tts/custom-voice", r.URL.Path)
		require.Equal(t, "application/msgpack", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var req CustomVoiceRequest
		require.NoError(t, msgpack.Unmarshal(body, &req))
		assert.Equal(t, "hello", req.Text)
		assert.Equal(t, "Vivian", req.Speaker)
		assert.Equal(t, "English", req.Language)

		resp, err := msgpack.Marshal(&TTSResult{Audio: []byte("audio"), SampleRate: 24000})
		require.NoError(t, err)
		_, _ = w.Write(resp)
	}))
	defer server.Close()

	client := NewRuntimeClient(server.URL, 10*time.Second)
	result, err := client.CustomVoice(context.Background(), &CustomVoiceRequest{
		Text:     "hello",
		Speaker:  "Vivian",
		Language: "English",
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("audio"), result.Audio)
	assert.Equal(t, 24000, result.SampleRate)
}

func TestClientOutOfMemoryStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(507)
		_, _ = w.Write([]byte("CUDA allocation failed"))
	}))
	defer server.Close()

	client := NewRuntimeClient(server.URL, 10*time.Second)
	_, err := client.CloneVoice(context.Background(), &CloneVoiceRequest{Text: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
}

func TestClientOutOfMemoryMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("torch error: CUDA Out Of Memory while allocating"))
	}))
	defer server.Close()

	client := NewRuntimeClient(server.URL, 10*time.Second)
	_, err := client.CustomVoice(context.Background(), &CustomVoiceRequest{Text: "hi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
}

func TestClientRuntimeErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model exploded"))
	}))
	defer server.Close()

	client := NewRuntimeClient(server.URL, 10*time.Second)
	_, err := client.CustomVoice(context.Background(), &CustomVoiceRequest{Text: "hi"})
	require.Error(t, err)

	var re *RuntimeError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusInternalServerError, re.StatusCode)
	assert.Contains(t, re.Message, "model exploded")
}

func TestClientUnreachable(t *testing.T) {
	client := NewRuntimeClient("http://127.0.0.1:1", time.Second)
	err := client.Health(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRuntimeUnavailable))
}

func TestClientTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/asr/transcribe", r.URL.Path)

		resp, err := msgpack.Marshal(&TranscribeResult{Language: "de", Text: "hallo welt"})
		require.NoError(t, err)
		_, _ = w.Write(resp)
	}))
	defer server.Close()

	client := NewRuntimeClient(server.URL, 10*time.Second)
	result, err := client.Transcribe(context.Background(), &TranscribeRequest{Audio: []byte("wav")})
	require.NoError(t, err)
	assert.Equal(t, "de", result.Language)
	assert.Equal(t, "hallo welt", result.Text)
}

func TestClientDevice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/device", r.URL.Path)

		resp, err := msgpack.Marshal(&DeviceInfo{Device: "cuda", GPUAvailable: true, FlashAttention: true})
		require.NoError(t, err)
		_, _ = w.Write(resp)
	}))
	defer server.Close()

	client := NewRuntimeClient(server.URL, 10*time.Second)
	info, err := client.Device(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cuda", info.Device)
	assert.True(t, info.GPUAvailable)
	assert.True(t, info.FlashAttention)
}

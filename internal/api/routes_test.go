package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwen-tts-go/qwen-tts-go/internal/backend"
	"github.com/qwen-tts-go/qwen-tts-go/internal/config"
	"github.com/qwen-tts-go/qwen-tts-go/internal/library"
	"github.com/qwen-tts-go/qwen-tts-go/internal/models"
	"github.com/qwen-tts-go/qwen-tts-go/internal/schema"
	"github.com/qwen-tts-go/qwen-tts-go/internal/streaming"
	"github.com/qwen-tts-go/qwen-tts-go/internal/translate"
	"github.com/qwen-tts-go/qwen-tts-go/internal/tts"
)

type stubClient struct {
	customVoiceFunc func(ctx context.Context, req *backend.CustomVoiceRequest) (*backend.TTSResult, error)
	cloneVoiceFunc  func(ctx context.Context, req *backend.CloneVoiceRequest) (*backend.TTSResult, error)
}

func (s *stubClient) Health(context.Context) error { return nil }

func (s *stubClient) Device(context.Context) (*backend.DeviceInfo, error) {
	return &backend.DeviceInfo{Device: "cpu"}, nil
}

func (s *stubClient) LoadModel(context.Context, *backend.LoadModelRequest) error { return nil }

func (s *stubClient) CustomVoice(ctx context.Context, req *backend.CustomVoiceRequest) (*backend.TTSResult, error) {
	if s.customVoiceFunc != nil {
		return s.customVoiceFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (s *stubClient) CloneVoice(ctx context.Context, req *backend.CloneVoiceRequest) (*backend.TTSResult, error) {
	if s.cloneVoiceFunc != nil {
		return s.cloneVoiceFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (s *stubClient) XTTS(context.Context, *backend.XTTSRequest) (*backend.TTSResult, error) {
	return nil, errors.New("not implemented")
}

func (s *stubClient) Transcribe(context.Context, *backend.TranscribeRequest) (*backend.TranscribeResult, error) {
	return nil, errors.New("not implemented")
}

func testWAV(t *testing.T, seconds float64) []byte {
	t.Helper()

	const rate = 24000
	path := filepath.Join(t.TempDir(), "sample.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: rate},
		Data:           make([]int, int(seconds*rate)),
		SourceBitDepth: 16,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

type routerOptions struct {
	apiKey string
}

func newTestRouter(t *testing.T, client backend.Client, opts routerOptions) (http.Handler, *models.Manager) {
	t.Helper()

	manager := models.NewManager(client, nil, time.Minute, zerolog.Nop())
	manager.Register(models.Spec{Name: tts.ModelCustomVoice, RegistryID: "org/custom"})
	manager.Register(models.Spec{Name: tts.ModelBase, RegistryID: "org/base"})
	manager.Register(models.Spec{Name: tts.ModelASR, RegistryID: "org/asr"})

	lib, err := library.Open(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)

	metrics := streaming.NewMetrics()
	service := tts.NewService(tts.Options{
		Client:     client,
		Manager:    manager,
		Library:    lib,
		Translator: translate.NewProvider(nil, nil, zerolog.Nop()),
		Gate:       streaming.NewGate(streaming.GateConfig{MaxConcurrent: 2, Metrics: metrics}),
		Metrics:    metrics,
		Logger:     zerolog.Nop(),
	})

	cfg := config.Default()
	cfg.Auth.APIKey = opts.apiKey
	return NewRouter(cfg, service, metrics, zerolog.Nop()), manager
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAlwaysOK(t *testing.T) {
	router, _ := newTestRouter(t, &stubClient{}, routerOptions{})

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp schema.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "initializing", resp.Status)
}

func TestReadyGate(t *testing.T) {
	router, manager := newTestRouter(t, &stubClient{}, routerOptions{})

	rec := doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	require.NoError(t, manager.EnsureLoaded(context.Background(), tts.ModelCustomVoice))
	require.NoError(t, manager.EnsureLoaded(context.Background(), tts.ModelBase))

	rec = doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListLanguagesIncludesExtended(t *testing.T) {
	router, _ := newTestRouter(t, &stubClient{}, routerOptions{})

	rec := doJSON(t, router, http.MethodGet, "/languages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string][]schema.LanguageInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	codes := make(map[string]bool)
	for _, l := range resp["languages"] {
		codes[l.Code] = true
	}
	for _, want := range []string{"en", "zh", "ur", "ar", "hi"} {
		assert.True(t, codes[want], "missing language %s", want)
	}
}

func TestSynthesize(t *testing.T) {
	wavData := testWAV(t, 1.0)
	client := &stubClient{
		customVoiceFunc: func(_ context.Context, req *backend.CustomVoiceRequest) (*backend.TTSResult, error) {
			return &backend.TTSResult{Audio: wavData, SampleRate: 24000}, nil
		},
	}
	router, _ := newTestRouter(t, client, routerOptions{})

	rec := doJSON(t, router, http.MethodPost, "/synthesize", schema.SynthesizeRequest{Text: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp schema.SynthesizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, base64.StdEncoding.EncodeToString(wavData), resp.AudioData)
	assert.Equal(t, schema.DefaultSpeaker, resp.Speaker)
}

func TestSynthesizeValidationError(t *testing.T) {
	router, _ := newTestRouter(t, &stubClient{}, routerOptions{})

	rec := doJSON(t, router, http.MethodPost, "/synthesize", schema.SynthesizeRequest{Text: ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp schema.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, "text is required")
}

func TestSynthesizeOutOfMemory(t *testing.T) {
	client := &stubClient{
		customVoiceFunc: func(context.Context, *backend.CustomVoiceRequest) (*backend.TTSResult, error) {
			return nil, fmt.Errorf("custom voice: %w", backend.ErrOutOfMemory)
		},
	}
	router, _ := newTestRouter(t, client, routerOptions{})

	rec := doJSON(t, router, http.MethodPost, "/synthesize", schema.SynthesizeRequest{Text: "hello"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
}

func TestSynthesizeStreamNDJSON(t *testing.T) {
	wavData := testWAV(t, 0.5)
	client := &stubClient{
		customVoiceFunc: func(context.Context, *backend.CustomVoiceRequest) (*backend.TTSResult, error) {
			return &backend.TTSResult{Audio: wavData, SampleRate: 24000}, nil
		},
	}
	router, _ := newTestRouter(t, client, routerOptions{})

	rec := doJSON(t, router, http.MethodPost, "/synthesize/stream", schema.SynthesizeRequest{Text: "One. Two. Three."})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))

	var chunks []schema.StreamChunk
	scanner := bufio.NewScanner(rec.Body)
	scanner.Buffer(make([]byte, 1<<20), 1<<20)
	for scanner.Scan() {
		var c schema.StreamChunk
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &c))
		chunks = append(chunks, c)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, chunks, 3)
	for i, c := range chunks {
		assert.Equal(t, i, c.SequenceNumber)
		assert.Equal(t, i == 2, c.IsLast)
	}
}

func TestVoicesCRUD(t *testing.T) {
	refB64 := base64.StdEncoding.EncodeToString(testWAV(t, 4.0))
	router, _ := newTestRouter(t, &stubClient{}, routerOptions{})

	rec := doJSON(t, router, http.MethodPost, "/voices", schema.AddVoiceRequest{
		Name:     "Narrator",
		RefAudio: refB64,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created schema.VoiceEntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "Narrator", created.Name)

	rec = doJSON(t, router, http.MethodGet, "/voices", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list schema.ListVoicesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Voices, 1)

	newName := "Storyteller"
	rec = doJSON(t, router, http.MethodPatch, "/voices/"+created.ID, schema.UpdateVoiceRequest{Name: &newName})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/voices/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var got schema.VoiceEntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Storyteller", got.Name)

	rec = doJSON(t, router, http.MethodDelete, "/voices/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted schema.DeleteVoiceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &deleted))
	assert.True(t, deleted.Deleted)

	rec = doJSON(t, router, http.MethodGet, "/voices/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddVoiceRejectsShortSample(t *testing.T) {
	refB64 := base64.StdEncoding.EncodeToString(testWAV(t, 1.0))
	router, _ := newTestRouter(t, &stubClient{}, routerOptions{})

	rec := doJSON(t, router, http.MethodPost, "/voices", schema.AddVoiceRequest{
		Name:     "Short",
		RefAudio: refB64,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp schema.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Detail, "too short")
}

func TestVoiceSynthesizeNotFound(t *testing.T) {
	router, _ := newTestRouter(t, &stubClient{}, routerOptions{})

	rec := doJSON(t, router, http.MethodPost, "/voices/missing/synthesize", schema.LibrarySynthesizeRequest{Text: "hi"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthMiddleware(t *testing.T) {
	router, _ := newTestRouter(t, &stubClient{}, routerOptions{apiKey: "secret"})

	rec := doJSON(t, router, http.MethodGet, "/languages", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Probes carry no credentials; health and readiness stay reachable.
	rec = doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doJSON(t, router, http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/languages", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/languages", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTranslateSynthesizePassthrough(t *testing.T) {
	wavData := testWAV(t, 1.0)
	client := &stubClient{
		customVoiceFunc: func(context.Context, *backend.CustomVoiceRequest) (*backend.TTSResult, error) {
			return &backend.TTSResult{Audio: wavData, SampleRate: 24000}, nil
		},
	}
	router, _ := newTestRouter(t, client, routerOptions{})

	rec := doJSON(t, router, http.MethodPost, "/translate-synthesize", schema.TranslateSynthesizeRequest{
		Text:           "hello",
		SourceLanguage: "en",
		TargetLanguage: "de",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp schema.TranslateSynthesizeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.TranslationFallback)
	assert.Equal(t, "hello", resp.TranslatedText)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t, &stubClient{}, routerOptions{})

	rec := doJSON(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "streaming_active_streams"))
}

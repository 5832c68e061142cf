package models

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qwen-tts-go/qwen-tts-go/internal/backend"
)

type mockClient struct {
	loadFunc   func(ctx context.Context, req *backend.LoadModelRequest) error
	deviceFunc func(ctx context.Context) (*backend.DeviceInfo, error)
}

func (m *mockClient) Health(context.Context) error { return nil }

func (m *mockClient) Device(ctx context.Context) (*backend.DeviceInfo, error) {
	if m.deviceFunc != nil {
		return m.deviceFunc(ctx)
	}
	return &backend.DeviceInfo{Device: "cpu"}, nil
}

func (m *mockClient) LoadModel(ctx context.Context, req *backend.LoadModelRequest) error {
	if m.loadFunc != nil {
		return m.loadFunc(ctx, req)
	}
	return nil
}

func (m *mockClient) CustomVoice(context.Context, *backend.CustomVoiceRequest) (*backend.TTSResult, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) CloneVoice(context.Context, *backend.CloneVoiceRequest) (*backend.TTSResult, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) XTTS(context.Context, *backend.XTTSRequest) (*backend.TTSResult, error) {
	return nil, errors.New("not implemented")
}

func (m *mockClient) Transcribe(context.Context, *backend.TranscribeRequest) (*backend.TranscribeResult, error) {
	return nil, errors.New("not implemented")
}

func newTestManager(client backend.Client) *Manager {
	return NewManager(client, nil, time.Minute, zerolog.Nop())
}

func TestEnsureLoadedLoadsOnce(t *testing.T) {
	var loads atomic.Int32
	client := &mockClient{
		loadFunc: func(context.Context, *backend.LoadModelRequest) error {
			loads.Add(1)
			time.Sleep(50 * time.Millisecond)
			return nil
		},
	}

	m := newTestManager(client)
	m.Register(Spec{Name: "custom_voice", RegistryID: "org/model"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			require.NoError(t, m.EnsureLoaded(context.Background(), "custom_voice"))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	assert.True(t, m.IsLoaded("custom_voice"))
}

func TestEnsureLoadedRetriesAfterFailure(t *testing.T) {
	var loads atomic.Int32
	client := &mockClient{
		loadFunc: func(context.Context, *backend.LoadModelRequest) error {
			if loads.Add(1) == 1 {
				return errors.New("weights missing")
			}
			return nil
		},
	}

	m := newTestManager(client)
	m.Register(Spec{Name: "base", RegistryID: "org/model"})

	err := m.EnsureLoaded(context.Background(), "base")
	require.Error(t, err)

	state, loadErr := m.StateOf("base")
	assert.Equal(t, Failed, state)
	assert.Error(t, loadErr)

	// A later caller retries the load.
	require.NoError(t, m.EnsureLoaded(context.Background(), "base"))
	assert.True(t, m.IsLoaded("base"))
	assert.Equal(t, int32(2), loads.Load())
}

func TestEnsureLoadedUnknownModel(t *testing.T) {
	m := newTestManager(&mockClient{})
	err := m.EnsureLoaded(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestLoadRequestsCUDASettings(t *testing.T) {
	var captured *backend.LoadModelRequest
	client := &mockClient{
		deviceFunc: func(context.Context) (*backend.DeviceInfo, error) {
			return &backend.DeviceInfo{Device: "cuda", FlashAttention: true}, nil
		},
		loadFunc: func(_ context.Context, req *backend.LoadModelRequest) error {
			captured = req
			return nil
		},
	}

	m := newTestManager(client)
	m.Register(Spec{Name: "custom_voice", RegistryID: "org/model"})
	require.NoError(t, m.EnsureLoaded(context.Background(), "custom_voice"))

	require.NotNil(t, captured)
	assert.Equal(t, "org/model", captured.Path)
	assert.Equal(t, "bfloat16", captured.Dtype)
	assert.Equal(t, "flash_attention_2", captured.AttnImplementation)
}

func TestAllLoaded(t *testing.T) {
	m := newTestManager(&mockClient{})
	assert.False(t, m.AllLoaded())

	m.Register(Spec{Name: "a", RegistryID: "org/a"})
	m.Register(Spec{Name: "b", RegistryID: "org/b"})
	assert.False(t, m.AllLoaded())

	require.NoError(t, m.EnsureLoaded(context.Background(), "a"))
	assert.False(t, m.AllLoaded())

	require.NoError(t, m.EnsureLoaded(context.Background(), "b"))
	assert.True(t, m.AllLoaded())
}

// Package models tracks the lifecycle of the runtime-hosted models.
// Each model occupies a named slot that moves Unloaded -> Loading ->
// Loaded, or to Failed when the runtime rejects the load. A Failed slot
// may be retried.
package models

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/qwen-tts-go/qwen-tts-go/internal/backend"
	"github.com/qwen-tts-go/qwen-tts-go/internal/modelstore"
)

// State is the load state of a model slot.
type State int

const (
	Unloaded State = iota
	Loading
	Loaded
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Spec identifies a model the manager owns.
type Spec struct {
	// Name is the slot name the runtime loads the model into.
	Name string
	// RegistryID is the upstream identifier, e.g. "Qwen/Qwen3-TTS-12B".
	RegistryID string
	// CacheName is the model's directory name in the bucket and cache.
	CacheName string
}

type slot struct {
	spec    Spec
	state   State
	loadErr error
}

// Manager coordinates model loads so each model is loaded at most once
// regardless of how many requests arrive while weights are coming up.
type Manager struct {
	mu    sync.Mutex
	cond  *sync.Cond
	slots map[string]*slot

	client   backend.Client
	resolver *modelstore.Resolver
	logger   zerolog.Logger

	deviceMu sync.Mutex
	device   *backend.DeviceInfo

	loadTimeout time.Duration
}

// NewManager constructs a Manager over the given runtime client.
func NewManager(client backend.Client, resolver *modelstore.Resolver, loadTimeout time.Duration, logger zerolog.Logger) *Manager {
	if loadTimeout <= 0 {
		loadTimeout = 30 * time.Minute
	}
	m := &Manager{
		slots:       make(map[string]*slot),
		client:      client,
		resolver:    resolver,
		logger:      logger.With().Str("component", "models").Logger(),
		loadTimeout: loadTimeout,
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Register adds a model slot in the Unloaded state.
func (m *Manager) Register(spec Spec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slots[spec.Name] = &slot{spec: spec, state: Unloaded}
}

// Device queries the runtime's inference device, caching the first
// successful answer; the device never changes after the runtime starts.
func (m *Manager) Device(ctx context.Context) (*backend.DeviceInfo, error) {
	m.deviceMu.Lock()
	defer m.deviceMu.Unlock()
	if m.device != nil {
		return m.device, nil
	}
	device, err := m.client.Device(ctx)
	if err != nil {
		return nil, err
	}
	m.device = device
	return device, nil
}

// EnsureLoaded blocks until the named model is Loaded. The first caller
// for an Unloaded or Failed slot performs the load; concurrent callers
// wait on the same attempt and share its outcome. A Failed slot is
// retried on the next call.
func (m *Manager) EnsureLoaded(ctx context.Context, name string) error {
	m.mu.Lock()
	sl, ok := m.slots[name]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("unknown model %q", name)
	}

	for sl.state == Loading {
		if err := m.waitLocked(ctx); err != nil {
			m.mu.Unlock()
			return err
		}
	}

	if sl.state == Loaded {
		m.mu.Unlock()
		return nil
	}

	// Unloaded or Failed: this caller owns the load attempt.
	sl.state = Loading
	sl.loadErr = nil
	spec := sl.spec
	m.mu.Unlock()

	err := m.load(ctx, spec)

	m.mu.Lock()
	if err != nil {
		sl.state = Failed
		sl.loadErr = err
	} else {
		sl.state = Loaded
	}
	m.cond.Broadcast()
	m.mu.Unlock()

	return err
}

// waitLocked waits on the condition while honoring ctx cancellation.
// The mutex is held on entry and exit.
func (m *Manager) waitLocked(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			m.cond.Broadcast()
		case <-done:
		}
	}()
	m.cond.Wait()
	close(done)
	return ctx.Err()
}

func (m *Manager) load(ctx context.Context, spec Spec) error {
	loadCtx, cancel := context.WithTimeout(ctx, m.loadTimeout)
	defer cancel()

	path := spec.RegistryID
	if m.resolver != nil {
		path = m.resolver.Resolve(loadCtx, spec.CacheName, spec.RegistryID)
	}

	req := &backend.LoadModelRequest{
		Model: spec.Name,
		Path:  path,
	}
	if device, err := m.Device(loadCtx); err == nil && device.Device == "cuda" {
		req.DeviceMap = "cuda"
		req.Dtype = "bfloat16"
		if device.FlashAttention {
			req.AttnImplementation = "flash_attention_2"
		}
	}

	start := time.Now()
	m.logger.Info().Str("model", spec.Name).Str("path", path).Msg("loading model")

	if err := m.client.LoadModel(loadCtx, req); err != nil {
		m.logger.Error().Err(err).Str("model", spec.Name).Msg("model load failed")
		return fmt.Errorf("load model %s: %w", spec.Name, err)
	}

	m.logger.Info().
		Str("model", spec.Name).
		Dur("elapsed", time.Since(start)).
		Msg("model loaded")
	return nil
}

// InitializeAll kicks off loads for every registered slot in the
// background so the first request does not pay the full warm-up cost.
// Failures stay in the slot and surface on the next EnsureLoaded.
func (m *Manager) InitializeAll(ctx context.Context) {
	m.mu.Lock()
	names := make([]string, 0, len(m.slots))
	for name := range m.slots {
		names = append(names, name)
	}
	m.mu.Unlock()

	for _, name := range names {
		go func(name string) {
			if err := m.EnsureLoaded(ctx, name); err != nil {
				m.logger.Warn().Err(err).Str("model", name).Msg("background model load failed")
			}
		}(name)
	}
}

// IsLoaded reports whether the named model is currently Loaded.
func (m *Manager) IsLoaded(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	sl, ok := m.slots[name]
	return ok && sl.state == Loaded
}

// StateOf reports the slot's state and last load error.
func (m *Manager) StateOf(name string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sl, ok := m.slots[name]
	if !ok {
		return Unloaded, fmt.Errorf("unknown model %q", name)
	}
	return sl.state, sl.loadErr
}

// AllLoaded reports whether every registered model is Loaded.
func (m *Manager) AllLoaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sl := range m.slots {
		if sl.state != Loaded {
			return false
		}
	}
	return len(m.slots) > 0
}

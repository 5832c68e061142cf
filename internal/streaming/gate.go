// Package streaming gates concurrent pseudo-streaming synthesis.
// Each active stream holds a model-inference slot for its whole
// duration, so the gate caps how many streams run at once and counts
// what it turned away.
package streaming

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrAcquireTimeout indicates no stream slot freed up within the configured timeout.
	ErrAcquireTimeout = errors.New("streaming: acquire timeout")
	// ErrLimitExceeded indicates the gate refused a stream because concurrency is exhausted.
	ErrLimitExceeded = errors.New("streaming: limit exceeded")
)

// Gate limits concurrent streams using a semaphore-style slot pool.
type Gate struct {
	slots          chan struct{}
	acquireTimeout time.Duration
	metrics        *Metrics
}

// GateConfig controls how the Gate admits streams.
type GateConfig struct {
	MaxConcurrent  int
	AcquireTimeout time.Duration
	Metrics        *Metrics
}

// NewGate constructs a Gate with the provided configuration.
func NewGate(cfg GateConfig) *Gate {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	return &Gate{
		slots:          make(chan struct{}, cfg.MaxConcurrent),
		acquireTimeout: cfg.AcquireTimeout,
		metrics:        cfg.Metrics,
	}
}

// Acquire reserves a stream slot. The returned release function must be
// called to free the slot.
func (g *Gate) Acquire(ctx context.Context) (func(), error) {
	// Fast path when a slot is immediately available.
	select {
	case g.slots <- struct{}{}:
		return g.onAcquire(), nil
	default:
	}

	if g.acquireTimeout <= 0 {
		select {
		case g.slots <- struct{}{}:
			return g.onAcquire(), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
			g.metrics.IncLimitExceeded()
			return nil, ErrLimitExceeded
		}
	}

	timer := time.NewTimer(g.acquireTimeout)
	defer timer.Stop()

	select {
	case g.slots <- struct{}{}:
		return g.onAcquire(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timer.C:
		g.metrics.IncAcquireTimeouts()
		return nil, ErrAcquireTimeout
	}
}

func (g *Gate) onAcquire() func() {
	g.metrics.IncActiveStreams()

	// A repeated release must not free another stream's slot.
	var once sync.Once
	return func() {
		once.Do(func() {
			<-g.slots
			g.metrics.DecActiveStreams()
		})
	}
}

// Stream executes streamFn while holding a slot, releasing it when the
// function returns. Completion and failure are recorded on the metrics.
func (g *Gate) Stream(ctx context.Context, streamFn func(context.Context) error) error {
	release, err := g.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if err := streamFn(ctx); err != nil {
		g.metrics.IncStreamsFailed()
		return err
	}
	g.metrics.IncStreamsCompleted()
	return nil
}

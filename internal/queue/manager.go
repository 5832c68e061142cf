// Package queue bounds concurrent GPU work. The runtime serializes
// inference per model, so unbounded handler concurrency only piles
// requests onto its socket; the pool keeps the pile-up here where it
// can be rejected cheaply.
package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var (
	ErrQueueFull = errors.New("queue: full")
	ErrShutdown  = errors.New("queue: shutdown")
)

type Config struct {
	Workers  int
	MaxQueue int
}

// Manager runs submitted inference jobs on a fixed worker pool with a
// bounded backlog.
type Manager struct {
	jobs chan job
	wg   sync.WaitGroup

	closeOnce sync.Once
	closed    chan struct{}

	workers int32
	active  atomic.Int32
	queued  atomic.Int32
}

type job struct {
	ctx    context.Context
	fn     func(context.Context) error
	result chan error
}

func NewManager(cfg Config) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxQueue < 0 {
		cfg.MaxQueue = 0
	}

	m := &Manager{
		jobs:    make(chan job, cfg.MaxQueue),
		closed:  make(chan struct{}),
		workers: int32(cfg.Workers),
	}

	for i := 0; i < cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker()
	}

	return m
}

// Submit runs fn on the pool and blocks until it finishes or ctx is
// done. When the backlog is full it fails fast with ErrQueueFull
// instead of queueing behind minutes of synthesis.
func (m *Manager) Submit(ctx context.Context, fn func(context.Context) error) error {
	select {
	case <-m.closed:
		return ErrShutdown
	default:
	}

	j := job{ctx: ctx, fn: fn, result: make(chan error, 1)}

	if cap(m.jobs) == 0 {
		if m.active.Load() >= m.workers {
			return ErrQueueFull
		}
		select {
		case m.jobs <- j:
			m.queued.Add(1)
		case <-m.closed:
			return ErrShutdown
		case <-ctx.Done():
			return ctx.Err()
		}
	} else {
		select {
		case m.jobs <- j:
			m.queued.Add(1)
		case <-m.closed:
			return ErrShutdown
		default:
			return ErrQueueFull
		}
	}

	select {
	case err := <-j.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-m.closed:
		// allow in-flight job to finish if already running
		select {
		case err := <-j.result:
			return err
		default:
			return ErrShutdown
		}
	}
}

// Active reports how many jobs are executing right now.
func (m *Manager) Active() int {
	return int(m.active.Load())
}

// Queued reports how many jobs are waiting in the backlog.
func (m *Manager) Queued() int {
	return int(m.queued.Load())
}

// Shutdown stops accepting work and waits for running jobs. The jobs
// channel is never closed: a concurrent Submit may still be selecting a
// send on it, and senders bail out via the closed channel instead.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.closeOnce.Do(func() {
		close(m.closed)
	})

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) worker() {
	defer m.wg.Done()

	for {
		select {
		case j := <-m.jobs:
			m.run(j)
		case <-m.closed:
			// Drain the backlog before exiting.
			for {
				select {
				case j := <-m.jobs:
					m.run(j)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) run(j job) {
	m.queued.Add(-1)
	m.active.Add(1)
	if j.ctx.Err() != nil {
		j.result <- j.ctx.Err()
	} else {
		j.result <- j.fn(j.ctx)
	}
	m.active.Add(-1)
}

package streaming

import "sync/atomic"

// Metrics exposes counters and gauges for streaming synthesis.
// The fields are intentionally minimal to keep dependencies light while
// still enabling consumption by Prometheus-style collectors.
type Metrics struct {
	activeStreams    atomic.Int64
	limitExceeded    atomic.Int64
	acquireTimeouts  atomic.Int64
	chunksEmitted    atomic.Int64
	streamsCompleted atomic.Int64
	streamsFailed    atomic.Int64
}

// NewMetrics constructs an empty Metrics collection.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncActiveStreams increments the active stream gauge.
func (m *Metrics) IncActiveStreams() {
	if m == nil {
		return
	}
	m.activeStreams.Add(1)
}

// DecActiveStreams decrements the active stream gauge.
func (m *Metrics) DecActiveStreams() {
	if m == nil {
		return
	}
	m.activeStreams.Add(-1)
}

// ActiveStreams reports the number of currently active streams.
func (m *Metrics) ActiveStreams() int64 {
	if m == nil {
		return 0
	}
	return m.activeStreams.Load()
}

// IncLimitExceeded increments the counter for refused stream attempts.
func (m *Metrics) IncLimitExceeded() {
	if m == nil {
		return
	}
	m.limitExceeded.Add(1)
}

// LimitExceeded reports how many attempts exceeded the stream limit.
func (m *Metrics) LimitExceeded() int64 {
	if m == nil {
		return 0
	}
	return m.limitExceeded.Load()
}

// IncAcquireTimeouts increments the acquire timeout counter.
func (m *Metrics) IncAcquireTimeouts() {
	if m == nil {
		return
	}
	m.acquireTimeouts.Add(1)
}

// AcquireTimeouts reports the total number of acquire timeouts.
func (m *Metrics) AcquireTimeouts() int64 {
	if m == nil {
		return 0
	}
	return m.acquireTimeouts.Load()
}

// AddChunks records sentence chunks delivered to clients.
func (m *Metrics) AddChunks(n int64) {
	if m == nil {
		return
	}
	m.chunksEmitted.Add(n)
}

// ChunksEmitted reports the total sentence chunks delivered.
func (m *Metrics) ChunksEmitted() int64 {
	if m == nil {
		return 0
	}
	return m.chunksEmitted.Load()
}

// IncStreamsCompleted counts a stream that delivered its final chunk.
func (m *Metrics) IncStreamsCompleted() {
	if m == nil {
		return
	}
	m.streamsCompleted.Add(1)
}

// StreamsCompleted reports how many streams finished cleanly.
func (m *Metrics) StreamsCompleted() int64 {
	if m == nil {
		return 0
	}
	return m.streamsCompleted.Load()
}

// IncStreamsFailed counts a stream that ended with an error chunk.
func (m *Metrics) IncStreamsFailed() {
	if m == nil {
		return
	}
	m.streamsFailed.Add(1)
}

// StreamsFailed reports how many streams ended in error.
func (m *Metrics) StreamsFailed() int64 {
	if m == nil {
		return 0
	}
	return m.streamsFailed.Load()
}

package sched

import (
	"sync"
	"time"
)

// #region metrics

// Metrics accumulates per-iteration pipeline timings.
type Metrics struct {
	mu         sync.Mutex
	iterations int
	decisions  int
	failures   int
	last       time.Duration
	min        time.Duration
	max        time.Duration
	total      time.Duration
	lastError  string
}

// MetricsSnapshot is a point-in-time copy of the counters.
type MetricsSnapshot struct {
	Iterations int
	Decisions  int
	Failures   int
	Last       time.Duration
	Min        time.Duration
	Max        time.Duration
	Avg        time.Duration
	LastError  string
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordIteration notes one completed loop pass.
func (m *Metrics) RecordIteration(latency time.Duration, decided bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.iterations++
	if decided {
		m.decisions++
	}
	m.last = latency
	m.total += latency
	if m.min == 0 || latency < m.min {
		m.min = latency
	}
	if latency > m.max {
		m.max = latency
	}
}

// RecordFailure notes a failed pass.
func (m *Metrics) RecordFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures++
	if err != nil {
		m.lastError = err.Error()
	}
}

// Snapshot returns a copy of the counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := MetricsSnapshot{
		Iterations: m.iterations,
		Decisions:  m.decisions,
		Failures:   m.failures,
		Last:       m.last,
		Min:        m.min,
		Max:        m.max,
		LastError:  m.lastError,
	}
	if m.iterations > 0 {
		s.Avg = m.total / time.Duration(m.iterations)
	}
	return s
}

// #endregion metrics

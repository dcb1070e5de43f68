package core

import (
	"context"
	"expvar"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var expvarSeq atomic.Uint64

// OperationStats aggregates every observation of one store operation.
type OperationStats struct {
	Calls           int64   `json:"calls"`
	PersistFailures int64   `json:"persist_failures"`
	TotalMS         float64 `json:"total_ms"`
	MaxMS           float64 `json:"max_ms"`
}

// MeanMS is the average latency, or 0 before the first call.
func (s OperationStats) MeanMS() float64 {
	if s.Calls == 0 {
		return 0
	}
	return s.TotalMS / float64(s.Calls)
}

// ExpvarMetricsSnapshot is a point-in-time copy of an ExpvarMetricsRecorder.
type ExpvarMetricsSnapshot struct {
	Operations      map[string]OperationStats `json:"operations"`
	PersistFailures int64                     `json:"persist_failures_total"`
	LastFailed      string                    `json:"last_failed_operation,omitempty"`
	LastFailedAt    time.Time                 `json:"last_failed_at,omitzero"`
	RecordedAt      time.Time                 `json:"recorded_at"`
}

// ExpvarMetricsRecorder keeps store operation statistics in memory and
// publishes them as a single expvar variable. An operation counts as a
// persist failure when any of its backing-store writes failed.
type ExpvarMetricsRecorder struct {
	name string

	mu           sync.Mutex
	ops          map[string]*OperationStats
	failures     int64
	lastFailed   string
	lastFailedAt time.Time
}

// NewExpvarMetricsRecorder publishes a recorder under name, or under a
// generated inspector_store_metrics_<n> when name is empty. expvar names are
// process-global, so publishing the same name twice panics.
func NewExpvarMetricsRecorder(name string) *ExpvarMetricsRecorder {
	if name == "" {
		name = fmt.Sprintf("inspector_store_metrics_%d", expvarSeq.Add(1))
	}
	r := &ExpvarMetricsRecorder{name: name, ops: map[string]*OperationStats{}}
	expvar.Publish(name, expvar.Func(func() any { return r.Snapshot() }))
	return r
}

// Name returns the expvar variable name.
func (r *ExpvarMetricsRecorder) Name() string { return r.name }

// Observe implements MetricsRecorder. Unnamed operations are dropped.
func (r *ExpvarMetricsRecorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	ms := float64(duration) / float64(time.Millisecond)
	r.mu.Lock()
	defer r.mu.Unlock()
	st := r.ops[operation]
	if st == nil {
		st = &OperationStats{}
		r.ops[operation] = st
	}
	st.Calls++
	st.TotalMS += ms
	st.MaxMS = max(st.MaxMS, ms)
	if !success {
		st.PersistFailures++
		r.failures++
		r.lastFailed, r.lastFailedAt = operation, time.Now().UTC()
	}
}

// Stats returns the statistics of one operation.
func (r *ExpvarMetricsRecorder) Stats(operation string) (OperationStats, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.ops[operation]
	if !ok {
		return OperationStats{}, false
	}
	return *st, true
}

// Snapshot copies the current statistics.
func (r *ExpvarMetricsRecorder) Snapshot() ExpvarMetricsSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	ops := make(map[string]OperationStats, len(r.ops))
	for name, st := range r.ops {
		ops[name] = *st
	}
	return ExpvarMetricsSnapshot{
		Operations:      ops,
		PersistFailures: r.failures,
		LastFailed:      r.lastFailed,
		LastFailedAt:    r.lastFailedAt,
		RecordedAt:      time.Now().UTC(),
	}
}

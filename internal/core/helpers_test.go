package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"inspectorcore/internal/kv"
	"inspectorcore/pkg/domain"
)

var testNow = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type captureLogger struct {
	mu    sync.Mutex
	calls []string
}

func (c *captureLogger) add(level, msg string) {
	c.mu.Lock()
	c.calls = append(c.calls, level+":"+msg)
	c.mu.Unlock()
}

func (c *captureLogger) Debug(msg string, _ ...any) { c.add("d", msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.add("i", msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.add("w", msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.add("e", msg) }

func (c *captureLogger) has(entry string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call == entry {
			return true
		}
	}
	return false
}

type metricsCall struct {
	op      string
	success bool
}

type captureMetrics struct {
	mu    sync.Mutex
	calls []metricsCall
}

func (c *captureMetrics) Observe(_ context.Context, op string, success bool, _ time.Duration) {
	c.mu.Lock()
	c.calls = append(c.calls, metricsCall{op: op, success: success})
	c.mu.Unlock()
}

func (c *captureMetrics) has(op string, success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, call := range c.calls {
		if call.op == op && call.success == success {
			return true
		}
	}
	return false
}

// faultyStore is the in-memory backing store with its fault-injection hooks.
type faultyStore interface {
	domain.BackingStore
	FailWrites(fn func(key string) error)
	Len() int
}

type harness struct {
	ctx     context.Context
	backing faultyStore
	clock   *fixedClock
	log     *captureLogger
	metrics *captureMetrics
	store   *Store
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		ctx:     context.Background(),
		backing: kv.NewMemory(),
		clock:   &fixedClock{t: testNow},
		log:     &captureLogger{},
		metrics: &captureMetrics{},
	}
	h.store = h.reopen()
	return h
}

// reopen builds a fresh store over the same backing store, as a new process would.
func (h *harness) reopen() *Store {
	return NewStore(h.ctx, h.backing, WithClock(h.clock), WithLogger(h.log), WithMetricsRecorder(h.metrics))
}

func (h *harness) persisted(key string) (string, bool) {
	v, ok, err := h.backing.Load(h.ctx, key)
	if err != nil {
		panic(fmt.Sprintf("load %s: %v", key, err))
	}
	return v, ok
}

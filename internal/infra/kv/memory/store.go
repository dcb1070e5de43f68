// Package memory provides a process-local backing store used by tests and by
// ephemeral CLI sessions.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"inspectorcore/pkg/domain"
)

// Driver is the driver name reported by Store.
const Driver domain.Driver = "memory"

var _ domain.BackingStore = (*Store)(nil)

// Store keeps values in a map guarded by a mutex. Writes can be made to fail
// through FailWrites to simulate quota errors.
type Store struct {
	mu        sync.RWMutex
	values    map[string]string
	failWrite func(key string) error
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// FailWrites installs a hook consulted before every Save and Remove. A non-nil
// return aborts the write with that error. Pass nil to clear the hook.
func (s *Store) FailWrites(fn func(key string) error) {
	s.mu.Lock()
	s.failWrite = fn
	s.mu.Unlock()
}

// Load implements domain.BackingStore.
func (s *Store) Load(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Save implements domain.BackingStore.
func (s *Store) Save(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		if err := s.failWrite(key); err != nil {
			return err
		}
	}
	s.values[key] = value
	return nil
}

// Remove implements domain.BackingStore.
func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		if err := s.failWrite(key); err != nil {
			return err
		}
	}
	delete(s.values, key)
	return nil
}

// Keys implements domain.BackingStore.
func (s *Store) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// Driver implements domain.BackingStore.
func (s *Store) Driver() domain.Driver { return Driver }

// Close implements domain.BackingStore.
func (s *Store) Close() error { return nil }

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.values)
}

// Package history records the event trace of runs. The runner appends every
// emitted event when a store is configured; callers can fetch a run's trace
// afterwards for inspection or display. Only a volatile in-memory
// implementation ships here.
package history

import (
	"errors"
	"sync"

	"github.com/hupe1980/graphmesh/core"
)

// ErrRunNotFound is returned by Get for an unknown run id.
var ErrRunNotFound = errors.New("history: run not found")

// Store persists per-run event traces.
type Store interface {
	Append(runID string, ev core.Event) error
	Get(runID string) ([]core.Event, error)
}

// InMemoryStore is a volatile Store keeping traces in a process local map.
// It is safe for concurrent access and best suited for tests or ephemeral
// demo setups. Get returns a defensive copy.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[string][]core.Event
}

// NewInMemoryStore constructs an empty in-memory history store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: make(map[string][]core.Event)}
}

// Append adds an event to the run's trace, creating the trace lazily.
func (s *InMemoryStore) Append(runID string, ev core.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = append(s.runs[runID], ev)
	return nil
}

// Get returns a copy of the run's event trace.
func (s *InMemoryStore) Get(runID string) ([]core.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	trace, ok := s.runs[runID]
	if !ok {
		return nil, ErrRunNotFound
	}
	out := make([]core.Event, len(trace))
	copy(out, trace)
	return out, nil
}

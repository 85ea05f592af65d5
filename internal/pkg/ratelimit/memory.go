package ratelimit

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	windowStart time.Time
	window      time.Duration
	current     int64
	previous    int64
}

// MemoryStore keeps counters in process memory. Call Sweep periodically to
// drop idle keys.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

// Hit implements Store.
func (s *MemoryStore) Hit(_ context.Context, key string, window time.Duration, now time.Time) (Counts, error) {
	start := windowStart(now, window)

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	switch {
	case !ok:
		e = &memoryEntry{windowStart: start, window: window}
		s.entries[key] = e
	case start.Equal(e.windowStart):
	case start.Equal(e.windowStart.Add(window)):
		e.previous, e.current, e.windowStart = e.current, 0, start
	default:
		e.previous, e.current, e.windowStart = 0, 0, start
	}
	e.current++

	return Counts{Current: e.current, Previous: e.previous, WindowStart: e.windowStart}, nil
}

// Sweep removes keys with no hits in the last two windows and returns how many were removed.
func (s *MemoryStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.entries {
		if now.Sub(e.windowStart) >= 2*e.window {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked keys.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

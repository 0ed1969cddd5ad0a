package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps sliding-window logs in process memory. It stores the
// timestamp of each request per key and prunes lazily on access, so idle
// keys cost nothing once their window passes.
type MemoryStore struct {
	mu   sync.Mutex
	logs map[string]*windowLog
}

type windowLog struct {
	entries   []time.Time
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[string]*windowLog)}
}

func (s *MemoryStore) Slide(_ context.Context, key string, now time.Time, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.get(key, now)
	log.prune(now.Add(-window))
	count := len(log.entries)

	log.entries = append(log.entries, now)
	log.expiresAt = now.Add(window)
	s.logs[key] = log

	return count, nil
}

func (s *MemoryStore) Count(_ context.Context, key string, now time.Time, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.get(key, now)
	log.prune(now.Add(-window))
	if len(log.entries) == 0 {
		delete(s.logs, key)
		return 0, nil
	}
	return len(log.entries), nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, key)
	return nil
}

// get returns the live log for key, discarding it if its expiry passed.
func (s *MemoryStore) get(key string, now time.Time) *windowLog {
	log, ok := s.logs[key]
	if !ok || (!log.expiresAt.IsZero() && !now.Before(log.expiresAt)) {
		return &windowLog{}
	}
	return log
}

func (l *windowLog) prune(windowStart time.Time) {
	kept := l.entries[:0]
	for _, ts := range l.entries {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	l.entries = kept
}

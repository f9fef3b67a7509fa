package store

import (
	"context"
	"sync"
)

// MemoryStore is a concurrency-safe in-memory Backend. It keeps the most
// recent revisions of every key so callers can inspect write history.
type MemoryStore struct {
	mu sync.RWMutex

	// key: record key, value: revisions, oldest first
	data map[string][][]byte

	maxHistory int // 0 = unlimited
}

// NewMemoryStore creates a MemoryStore. If maxHistory is <= 0, every
// revision is kept.
func NewMemoryStore(maxHistory int) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string][][]byte),
		maxHistory: maxHistory,
	}
}

// Save appends a revision for key and enforces retention.
func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	rev := append([]byte(nil), data...)

	s.mu.Lock()
	defer s.mu.Unlock()

	history := append(s.data[key], rev)
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	s.data[key] = history
	return nil
}

// Load returns the latest revision for key.
func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.data[key]
	if len(history) == 0 {
		return nil, ErrNotFound
	}
	return append([]byte(nil), history[len(history)-1]...), nil
}

// Revisions returns every retained revision for key, oldest first.
func (s *MemoryStore) Revisions(key string) [][]byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([][]byte, 0, len(s.data[key]))
	for _, rev := range s.data[key] {
		out = append(out, append([]byte(nil), rev...))
	}
	return out
}

func (s *MemoryStore) Close() error { return nil }

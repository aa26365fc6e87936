// Package db persists the companion's collections to a local key/value store.
//
// Every collection is stored whole under its own key as a JSON document. The
// backends (SQLite, Redis, in-memory) only move bytes; decoding, validation
// and defaults live in Collections.
package db

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by KV.Get when the key has never been written.
var ErrNotFound = errors.New("key not found")

// Keys of the persisted collections.
const (
	KeyMessages    = "chat-messages"
	KeyMoodLogs    = "mood-logs"
	KeyTheme       = "theme"
	KeyPreferences = "preferences"
)

// KV is the byte-level store behind Collections. Implementations must be safe
// for concurrent use.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// MemoryStore is a non-persistent KV, suitable for tests and throwaway runs.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

package store

import (
	"context"
	"errors"
	"sync"

	"github.com/i474232898/weather-coordinator/internal/weather"
)

var (
	// ErrNotFound is returned when a key or history entry does not exist.
	ErrNotFound = errors.New("not found")
)

// MemoryStore is a concurrency-safe in-memory key-value store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

var _ weather.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get returns the value for key or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

// Set overwrites the value for key.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

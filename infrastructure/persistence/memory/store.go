// Package memory keeps session records in process memory. Records vanish
// with the process; it backs tests and throwaway sessions.
package memory

import (
	"context"
	"sync"
)

// Store is a goroutine-safe map store
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

// Get returns the value stored under key
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

// Set stores value under key
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// Close implements io.Closer
func (s *Store) Close() error { return nil }

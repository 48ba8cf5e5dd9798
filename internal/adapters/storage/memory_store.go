package storage

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// MemoryStore is an in-memory implementation of the KVStore interface
type MemoryStore struct {
	entries map[string][]byte
	mu      sync.RWMutex
	logger  *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]byte),
		logger:  logger,
	}
}

// Get retrieves the values present for keys
func (s *MemoryStore) Get(ctx context.Context, keys []string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	values := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if v, ok := s.entries[key]; ok {
			values[key] = append([]byte(nil), v...)
		}
	}
	return values, nil
}

// Set stores every value, overwriting existing entries
func (s *MemoryStore) Set(ctx context.Context, values map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, v := range values {
		s.entries[key] = append([]byte(nil), v...)
	}

	s.logger.Debug("Stored values in memory", zap.Int("count", len(values)))
	return nil
}

// Stop is a no-op for the memory store
func (s *MemoryStore) Stop() {}

package store

import (
	"context"
	"sync"

	"resumetailor/internal/types"
)

// MemoryStore is an in-process TailoredStore backed by a mutex-guarded map.
// Records do not survive process restarts.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[memoryKey]types.TailoredResume
}

type memoryKey struct {
	userID string
	jobID  string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[memoryKey]types.TailoredResume),
	}
}

// Get returns the stored record for the key.
func (s *MemoryStore) Get(ctx context.Context, userID, jobID string) (*types.TailoredResume, error) {
	s.mu.RLock()
	record, ok := s.records[memoryKey{userID, jobID}]
	s.mu.RUnlock()

	if !ok {
		return nil, notFoundError(userID, jobID)
	}

	// Return a copy so callers cannot mutate stored state.
	return &record, nil
}

// Put stores the record, replacing any existing record for the key.
func (s *MemoryStore) Put(ctx context.Context, record *types.TailoredResume) error {
	s.mu.Lock()
	s.records[memoryKey{record.UserID, record.JobID}] = *record
	s.mu.Unlock()
	return nil
}

// Delete removes the record for the key.
func (s *MemoryStore) Delete(ctx context.Context, userID, jobID string) error {
	s.mu.Lock()
	delete(s.records, memoryKey{userID, jobID})
	s.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}

package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"vrp-import/internal/location"
)

// MemoryStore is a LocationStore kept in memory. It is safe for concurrent
// use.
type MemoryStore struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]location.Existing
}

// NewMemoryStore creates a store holding seed.
func NewMemoryStore(seed ...location.Existing) *MemoryStore {
	s := &MemoryStore{byID: make(map[string]location.Existing, len(seed))}

	for _, loc := range seed {
		if _, dup := s.byID[loc.ID]; !dup {
			s.order = append(s.order, loc.ID)
		}

		s.byID[loc.ID] = loc
	}

	return s
}

// List implements LocationStore.
func (s *MemoryStore) List(_ context.Context) ([]location.Existing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]location.Existing, len(s.order))
	for i, id := range s.order {
		out[i] = s.byID[id]
	}

	return out, nil
}

// Get implements LocationStore.
func (s *MemoryStore) Get(_ context.Context, id string) (location.Existing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	loc, ok := s.byID[id]
	if !ok {
		return location.Existing{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}

	return loc, nil
}

// Create implements LocationStore.
func (s *MemoryStore) Create(ctx context.Context, nl location.NewLocation) (location.Existing, error) {
	if err := ctx.Err(); err != nil {
		return location.Existing{}, err
	}

	loc := fromNew(uuid.NewString(), nl)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.order = append(s.order, loc.ID)
	s.byID[loc.ID] = loc

	return loc, nil
}

// Close implements LocationStore.
func (s *MemoryStore) Close() error {
	return nil
}

package store

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/matzehuels/deptree/pkg/errors"
)

// MemoryStore keeps runs in memory.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []*Run
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Record saves a copy of run.
func (s *MemoryStore) Record(_ context.Context, run *Run) error {
	cp := *run
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = append(s.runs, &cp)
	return nil
}

// Recent returns up to limit runs, newest first. A non-positive limit
// returns every run.
func (s *MemoryStore) Recent(_ context.Context, limit int) ([]*Run, error) {
	s.mu.RLock()
	runs := slices.Clone(s.runs)
	s.mu.RUnlock()

	slices.SortStableFunc(runs, func(a, b *Run) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Get returns one run by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.runs {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, errors.New(errors.ErrCodeNotFound, "run %s not found", id)
}

// Close does nothing.
func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)

// Package inmemory keeps runs for the lifetime of the process.
package inmemory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/kiosk404/swarmscope/internal/swarm/entity"
	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
)

// RunStore hands out clones so callers never alias stored records.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*entity.Run
}

func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*entity.Run)}
}

func (s *RunStore) Create(_ context.Context, run *entity.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run.Clone()
	return nil
}

func (s *RunStore) Get(_ context.Context, id string) (*entity.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if run, ok := s.runs[id]; ok {
		return run.Clone(), nil
	}
	return nil, fmt.Errorf("run %q: %w", id, errno.ErrRunNotFound)
}

func (s *RunStore) Update(_ context.Context, run *entity.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[run.ID]; !ok {
		return fmt.Errorf("run %q: %w", run.ID, errno.ErrRunNotFound)
	}
	s.runs[run.ID] = run.Clone()
	return nil
}

func (s *RunStore) List(_ context.Context) ([]*entity.Run, error) {
	s.mu.RLock()
	runs := make([]*entity.Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run.Clone())
	}
	s.mu.RUnlock()

	slices.SortFunc(runs, func(a, b *entity.Run) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return runs, nil
}

package inmemory

import (
	"context"
	"slices"
	"sync"
)

type EventStore struct {
	mu   sync.RWMutex
	logs map[string][][]byte
}

func NewEventStore() *EventStore {
	return &EventStore{
		logs: make(map[string][][]byte),
	}
}

func (s *EventStore) Append(_ context.Context, runID string, events ...[]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		s.logs[runID] = append(s.logs[runID], slices.Clone(ev))
	}
	return nil
}

func (s *EventStore) Events(_ context.Context, runID string) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.logs[runID]), nil
}

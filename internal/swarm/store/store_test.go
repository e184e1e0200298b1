package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiosk404/swarmscope/internal/pkg/options"
	"github.com/kiosk404/swarmscope/internal/swarm/entity"
	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
)

func backends(t *testing.T) map[string]*Store {
	t.Helper()
	bolt, err := New(&options.StoreOptions{Driver: "bolt", Path: filepath.Join(t.TempDir(), "nested", "runs.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return map[string]*Store{
		"memory": NewInMemory(),
		"bolt":   bolt,
	}
}

func TestStore_RunRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
			run := &entity.Run{
				ID:           "r1",
				Source:       "run.jsonl",
				Status:       entity.RunStatusInProgress,
				Requirements: []entity.Requirement{{Role: "Coder", Count: 1}},
				CreatedAt:    created,
			}
			require.NoError(t, s.Runs.Create(ctx, run))

			run.Status = entity.RunStatusCompleted
			run.Counts = map[string]int{"Coder": 1}
			run.Handoffs = []entity.Handoff{{Source: "Coder", Target: "Auditor"}}
			run.EventCount = 7
			require.NoError(t, s.Runs.Update(ctx, run))

			got, err := s.Runs.Get(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, entity.RunStatusCompleted, got.Status)
			assert.Equal(t, run.Handoffs, got.Handoffs)
			assert.Equal(t, 1, got.Counts["Coder"])
			assert.Equal(t, 7, got.EventCount)
			assert.True(t, got.CreatedAt.Equal(created))
			assert.True(t, got.RequirementsMet())
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Runs.Get(ctx, "missing")
			assert.ErrorIs(t, err, errno.ErrRunNotFound)

			err = s.Runs.Update(ctx, &entity.Run{ID: "missing"})
			assert.ErrorIs(t, err, errno.ErrRunNotFound)
		})
	}
}

func TestStore_ListMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for i := range 3 {
				require.NoError(t, s.Runs.Create(ctx, &entity.Run{
					ID:        fmt.Sprintf("r%d", i),
					CreatedAt: base.Add(time.Duration(i) * time.Hour),
				}))
			}
			runs, err := s.Runs.List(ctx)
			require.NoError(t, err)
			require.Len(t, runs, 3)
			assert.Equal(t, []string{"r2", "r1", "r0"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
		})
	}
}

func TestStore_ListSameTimeOrdersByID(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"b", "c", "a"} {
				require.NoError(t, s.Runs.Create(ctx, &entity.Run{ID: id, CreatedAt: at}))
			}
			runs, err := s.Runs.List(ctx)
			require.NoError(t, err)
			require.Len(t, runs, 3)
			assert.Equal(t, []string{"c", "b", "a"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
		})
	}
}

func TestStore_UpdateReplacesRecord(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			run := &entity.Run{ID: "r1", Status: entity.RunStatusInProgress}
			require.NoError(t, s.Runs.Create(ctx, run))
			run.Status = entity.RunStatusCompleted
			run.Missing = []string{"Coder: 0/1"}
			require.NoError(t, s.Runs.Update(ctx, run))

			got, err := s.Runs.Get(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, entity.RunStatusCompleted, got.Status)
			assert.Equal(t, []string{"Coder: 0/1"}, got.Missing)
		})
	}
}

func TestStore_EventLogOrder(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Events.Append(ctx, "r1", []byte(`{"n":1}`), []byte(`{"n":2}`)))
			require.NoError(t, s.Events.Append(ctx, "r2", []byte(`{"other":true}`)))
			require.NoError(t, s.Events.Append(ctx, "r1", []byte(`{"n":3}`)))

			events, err := s.Events.Events(ctx, "r1")
			require.NoError(t, err)
			assert.Equal(t, [][]byte{[]byte(`{"n":1}`), []byte(`{"n":2}`), []byte(`{"n":3}`)}, events)

			empty, err := s.Events.Events(ctx, "nope")
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestNew_Drivers(t *testing.T) {
	_, err := New(&options.StoreOptions{Driver: "none"})
	assert.ErrorIs(t, err, errno.ErrStoreDisabled)

	s, err := New(&options.StoreOptions{Driver: "memory"})
	require.NoError(t, err)
	assert.NoError(t, s.Close())

	_, err = New(&options.StoreOptions{Driver: "etcd"})
	assert.Error(t, err)
}

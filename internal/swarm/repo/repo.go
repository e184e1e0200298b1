// Package repo declares the persistence contracts for recorded swarm runs.
package repo

import (
	"context"

	"github.com/kiosk404/swarmscope/internal/swarm/entity"
)

// RunRepository persists run summaries.
type RunRepository interface {
	Create(ctx context.Context, run *entity.Run) error
	// Get fails with errno.ErrRunNotFound for an unknown id.
	Get(ctx context.Context, id string) (*entity.Run, error)
	Update(ctx context.Context, run *entity.Run) error
	// List orders runs newest first.
	List(ctx context.Context) ([]*entity.Run, error)
}

// EventLogRepository keeps the encoded events of each run, in arrival order.
type EventLogRepository interface {
	Append(ctx context.Context, runID string, events ...[]byte) error
	// Events yields an empty log for an unknown run.
	Events(ctx context.Context, runID string) ([][]byte, error)
}

// Package store opens the run persistence backend selected by StoreOptions.
package store

import (
	"fmt"
	"path/filepath"

	"github.com/kiosk404/swarmscope/internal/pkg/config"
	"github.com/kiosk404/swarmscope/internal/pkg/logger"
	"github.com/kiosk404/swarmscope/internal/pkg/options"
	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
	"github.com/kiosk404/swarmscope/internal/swarm/repo"
	boltdbStore "github.com/kiosk404/swarmscope/internal/swarm/store/boltdb"
	"github.com/kiosk404/swarmscope/internal/swarm/store/inmemory"
)

// Store bundles the repositories of one backend.
type Store struct {
	Runs   repo.RunRepository
	Events repo.EventLogRepository

	boltDB *boltdbStore.DB // nil when using inmemory store
}

// DefaultPath is the BoltDB file used when none is configured.
func DefaultPath() string {
	return filepath.Join(config.HomeDir(), "data", "runs.db")
}

// New opens the backend selected by opts. The "none" driver yields
// errno.ErrStoreDisabled.
func New(opts *options.StoreOptions) (*Store, error) {
	switch opts.Driver {
	case "none":
		return nil, errno.ErrStoreDisabled
	case "memory":
		return NewInMemory(), nil
	case "bolt", "":
		path := opts.Path
		if path == "" {
			path = DefaultPath()
		}
		db, err := boltdbStore.Open(path, opts.LockTimeout)
		if err != nil {
			return nil, fmt.Errorf("failed to open boltdb at %s: %w", path, err)
		}
		logger.Debug("[Store] using boltdb at %s", path)
		return &Store{
			Runs:   boltdbStore.NewRunStore(db),
			Events: boltdbStore.NewEventStore(db),
			boltDB: db,
		}, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}

// NewInMemory returns a process-local Store.
func NewInMemory() *Store {
	return &Store{
		Runs:   inmemory.NewRunStore(),
		Events: inmemory.NewEventStore(),
	}
}

// Close releases the backend.
func (s *Store) Close() error {
	if s == nil || s.boltDB == nil {
		return nil
	}
	return s.boltDB.Close()
}

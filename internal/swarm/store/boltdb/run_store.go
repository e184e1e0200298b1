package boltdb

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/boltdb/bolt"

	"github.com/kiosk404/swarmscope/internal/pkg/utils/json"
	"github.com/kiosk404/swarmscope/internal/swarm/entity"
	"github.com/kiosk404/swarmscope/internal/swarm/pkg/errno"
)

// RunStore keeps one JSON document per run in the runs bucket, keyed by id.
type RunStore struct {
	db *bolt.DB
}

func NewRunStore(db *DB) *RunStore {
	return &RunStore{db: db.bolt()}
}

func (s *RunStore) Create(_ context.Context, run *entity.Run) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return putRun(tx.Bucket(bucketRunStore), run)
	})
}

func (s *RunStore) Get(_ context.Context, id string) (*entity.Run, error) {
	var run *entity.Run
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		run, err = getRun(tx.Bucket(bucketRunStore), id)
		return err
	})
	return run, err
}

func (s *RunStore) Update(_ context.Context, run *entity.Run) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRunStore)
		if b.Get([]byte(run.ID)) == nil {
			return fmt.Errorf("run %q: %w", run.ID, errno.ErrRunNotFound)
		}
		return putRun(b, run)
	})
}

func (s *RunStore) List(_ context.Context) ([]*entity.Run, error) {
	var runs []*entity.Run
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRunStore).ForEach(func(k, v []byte) error {
			run, err := decodeRun(k, v)
			if err != nil {
				return err
			}
			runs = append(runs, run)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	slices.SortFunc(runs, func(a, b *entity.Run) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return runs, nil
}

func putRun(b *bolt.Bucket, run *entity.Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %q: %w", run.ID, err)
	}
	return b.Put([]byte(run.ID), data)
}

func getRun(b *bolt.Bucket, id string) (*entity.Run, error) {
	data := b.Get([]byte(id))
	if data == nil {
		return nil, fmt.Errorf("run %q: %w", id, errno.ErrRunNotFound)
	}
	return decodeRun([]byte(id), data)
}

// decodeRun copies out of data, which bolt only keeps valid for the
// transaction.
func decodeRun(key, data []byte) (*entity.Run, error) {
	var run entity.Run
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("decode run %q: %w", key, err)
	}
	return &run, nil
}

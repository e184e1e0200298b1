package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"slices"

	"github.com/boltdb/bolt"
)

// EventStore keeps each run's encoded events in a nested bucket, keyed by a
// big-endian sequence number so a cursor walks them in arrival order.
type EventStore struct {
	db *bolt.DB
}

// NewEventStore creates a new EventStore.
func NewEventStore(db *DB) *EventStore {
	return &EventStore{db: db.bolt()}
}

func (s *EventStore) Append(_ context.Context, runID string, events ...[]byte) error {
	if len(events) == 0 {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket(bucketEventStore).CreateBucketIfNotExists([]byte(runID))
		if err != nil {
			return fmt.Errorf("failed to create event log for run %q: %w", runID, err)
		}
		for _, ev := range events {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			key := make([]byte, 8)
			binary.BigEndian.PutUint64(key, seq)
			if err := b.Put(key, ev); err != nil {
				return fmt.Errorf("failed to append event to run %q: %w", runID, err)
			}
		}
		return nil
	})
}

func (s *EventStore) Events(_ context.Context, runID string) ([][]byte, error) {
	var out [][]byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketEventStore).Bucket([]byte(runID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			// values are only valid for the life of the transaction
			out = append(out, slices.Clone(v))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read events of run %q: %w", runID, err)
	}
	return out, nil
}

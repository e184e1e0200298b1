package boltdb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_SecondOpenTimesOut(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	first, err := Open(path, time.Second)
	require.NoError(t, err)
	defer first.Close()

	_, err = Open(path, 50*time.Millisecond)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestOpen_ReopenKeepsSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "runs.db")
	db, err := Open(path, time.Second)
	require.NoError(t, err)
	assert.Equal(t, path, db.Path())
	require.NoError(t, db.Close())

	db, err = Open(path, time.Second)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestOpen_RejectsUnknownSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	raw, err := bolt.Open(path, 0o600, nil)
	require.NoError(t, err)
	require.NoError(t, raw.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketMeta)
		if err != nil {
			return err
		}
		return b.Put(keySchema, []byte("99"))
	}))
	require.NoError(t, raw.Close())

	_, err = Open(path, time.Second)
	assert.ErrorContains(t, err, `unsupported run database schema "99"`)
}

package boltdb

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

const schemaVersion = "1"

var (
	bucketMeta       = []byte("meta")
	bucketRunStore   = []byte("runs")
	bucketEventStore = []byte("events")

	keySchema = []byte("schema")
)

// ErrLocked is returned when another process keeps the database open past
// the lock timeout.
var ErrLocked = errors.New("run database is locked by another process")

// DB is an opened run database with its buckets in place.
type DB struct {
	db   *bolt.DB
	path string
}

// Open creates path's directory when needed, opens the file and stamps the
// schema version on first use. A zero lockTimeout waits forever.
func Open(path string, lockTimeout time.Duration) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: lockTimeout})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Update(initSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{db: db, path: path}, nil
}

func initSchema(tx *bolt.Tx) error {
	for _, name := range [][]byte{bucketMeta, bucketRunStore, bucketEventStore} {
		if _, err := tx.CreateBucketIfNotExists(name); err != nil {
			return fmt.Errorf("failed to create bucket %q: %w", name, err)
		}
	}
	meta := tx.Bucket(bucketMeta)
	switch v := meta.Get(keySchema); {
	case v == nil:
		return meta.Put(keySchema, []byte(schemaVersion))
	case string(v) != schemaVersion:
		return fmt.Errorf("unsupported run database schema %q, want %q", v, schemaVersion)
	}
	return nil
}

// Path reports the file backing the database.
func (d *DB) Path() string { return d.path }

func (d *DB) Close() error {
	return d.db.Close()
}

func (d *DB) bolt() *bolt.DB {
	return d.db
}

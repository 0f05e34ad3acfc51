package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cuemby/vmmv/pkg/types"
	bolt "go.etcd.io/bbolt"
)

// DefaultPath is where the journal lives on a node
const DefaultPath = "/var/lib/vmmv/journal.db"

// LockTimeout bounds how long Open waits for another run to release the
// journal
const LockTimeout = time.Second

var bucketRuns = []byte("runs")

// ErrLocked means another process holds the journal open
var ErrLocked = errors.New("journal is locked by another run")

// BoltJournal implements Journal using BoltDB
type BoltJournal struct {
	db *bolt.DB
}

// Open opens or creates the journal at path. It fails with ErrLocked when
// another process already holds it.
func Open(path string) (*BoltJournal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: LockTimeout})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketRuns); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketRuns, err)
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltJournal{db: db}, nil
}

// Close closes the database
func (j *BoltJournal) Close() error {
	return j.db.Close()
}

// SaveRun creates or replaces a run
func (j *BoltJournal) SaveRun(run *Run) error {
	return j.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketRuns)
		data, err := json.Marshal(run)
		if err != nil {
			return err
		}
		return b.Put([]byte(run.ID), data)
	})
}

// GetRun returns a run by id
func (j *BoltJournal) GetRun(id string) (*Run, error) {
	var run Run
	err := j.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketRuns).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("run %s: %w", id, types.ErrNotFound)
		}
		return json.Unmarshal(data, &run)
	})
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns every run in key order. Run ids are time-ordered, so
// this is oldest first.
func (j *BoltJournal) ListRuns() ([]*Run, error) {
	var runs []*Run
	err := j.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRuns).ForEach(func(k, v []byte) error {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("failed to decode run %s: %w", k, err)
			}
			runs = append(runs, &run)
			return nil
		})
	})
	return runs, err
}

package boltstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"go.etcd.io/bbolt"

	"waffle-cron/internal/domain/model"
	"waffle-cron/internal/domain/ports"
)

const runsBucket = "runs"

// ErrLocked is returned by Open when another process holds the ledger.
var ErrLocked = errors.New("run ledger is locked by another process")

// Store is a bbolt-backed run ledger.
//
// bbolt holds an exclusive file lock while the database is open, so an open
// Store also serves as the single-instance lock for task runs.
//
// References:
//   - https://github.com/etcd-io/bbolt
type Store struct {
	db *bbolt.DB
}

var _ ports.RunStore = (*Store)(nil)

// Open opens or creates the ledger at path, waiting up to lockTimeout for the file lock.
func Open(path string, lockTimeout time.Duration) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: lockTimeout})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, fmt.Errorf("open %s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(runsBucket))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing ledger for reading. It takes a shared lock,
// so it can run alongside other readers but waits up to lockTimeout while a
// writer holds the ledger.
func OpenReadOnly(path string, lockTimeout time.Duration) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: lockTimeout, ReadOnly: true})
	if err != nil {
		if errors.Is(err, bbolt.ErrTimeout) {
			return nil, fmt.Errorf("open %s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &Store{db: db}, nil
}

// Record writes the run keyed by its start time so iteration is chronological.
func (s *Store) Record(_ context.Context, run model.RunRecord) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(runsBucket)).Put(runKey(run), data)
	})
}

// Recent returns up to limit runs, newest first. A non-positive limit returns all runs.
func (s *Store) Recent(_ context.Context, limit int) ([]model.RunRecord, error) {
	var runs []model.RunRecord

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(runsBucket))
		if bucket == nil {
			return nil
		}
		c := bucket.Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if limit > 0 && len(runs) >= limit {
				break
			}
			var run model.RunRecord
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("decode run %s: %w", k, err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return runs, nil
}

// Close releases the database and its lock.
func (s *Store) Close() error {
	return s.db.Close()
}

func runKey(run model.RunRecord) []byte {
	return []byte(run.StartedAt.UTC().Format("2006-01-02T15:04:05.000000000Z") + "/" + run.ID)
}

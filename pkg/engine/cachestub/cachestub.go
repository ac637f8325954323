// Package cachestub is a bbolt-backed stand-in for the fast local cache
// device: a set of block addresses already resident in the cache, used
// to drive the splitter's miss-override path without real hardware.
package cachestub

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const residentBucket = "resident_blocks"

// Store tracks which block addresses are resident in the cache.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the store at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := bbolt.Open(dbPath, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(residentBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create resident-blocks bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// MarkResident records that blockAddr is now cached.
func (s *Store) MarkResident(blockAddr string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(residentBucket)).Put([]byte(blockAddr), []byte{1})
	})
}

// Evict removes blockAddr from the resident set.
func (s *Store) Evict(blockAddr string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(residentBucket)).Delete([]byte(blockAddr))
	})
}

// IsMiss implements the splitter's is_miss(req) engine capability: a
// request is a cache miss when its block address is not resident.
func (s *Store) IsMiss(blockAddr string) bool {
	var resident bool
	s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket([]byte(residentBucket)).Get([]byte(blockAddr))
		resident = v != nil
		return nil
	})
	return !resident
}

// Count returns the number of resident blocks.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.View(func(tx *bbolt.Tx) error {
		n = tx.Bucket([]byte(residentBucket)).Stats().KeyN
		return nil
	})
	return n, err
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

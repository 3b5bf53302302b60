// Package store implements the data layer of the chat service: a snapshot
// of six entity mappings, reconstituted from a pluggable substrate on each
// access and written back whole after every mutation.
//
// Known limitation: there are no transactions. The mutex below serializes
// read-modify-write cycles within one process, so concurrent callers cannot
// lose updates to each other here, but two processes sharing one substrate
// still race and the last save wins.
package store

import (
	"context"
	"sync"
)

// Store is the query API over the snapshot. All operations are short-lived
// load -> mutate -> save cycles under a single writer lock.
type Store struct {
	mu        sync.Mutex
	substrate Substrate
}

// New creates a Store backed by the given substrate.
func New(substrate Substrate) *Store {
	return &Store{substrate: substrate}
}

// read runs fn against a freshly loaded snapshot.
func (s *Store) read(ctx context.Context, fn func(*Snapshot)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.substrate.Load())
	return nil
}

// write runs fn against a freshly loaded snapshot and persists the result.
// If fn reports false the snapshot is unchanged and the save is skipped.
func (s *Store) write(ctx context.Context, fn func(*Snapshot) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.substrate.Load()
	if fn(snap) {
		s.substrate.Save(snap)
	}
	return nil
}

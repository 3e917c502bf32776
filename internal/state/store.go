package state

import "sync/atomic"

// Store publishes snapshots from a single writer to any number of readers.
//
// Publication is copy-on-publish into an atomically exchanged pointer:
// the writer hands over a fresh record each tick and never mutates a
// record after the swap. Readers therefore get tear-free whole-tick
// copies without locks on either side.
type Store struct {
	current atomic.Pointer[Snapshot]
}

// NewStore returns a Store holding a zero Snapshot, so Load is safe to
// call before the first publish.
func NewStore() *Store {
	s := &Store{}
	s.current.Store(&Snapshot{})
	return s
}

// Publish replaces the current snapshot. Only the ingestion loop may
// call this; the record is copied, so the caller may reuse snap.
func (s *Store) Publish(snap Snapshot) {
	s.current.Store(&snap)
}

// Load returns a copy of the most recently published snapshot.
func (s *Store) Load() Snapshot {
	return *s.current.Load()
}

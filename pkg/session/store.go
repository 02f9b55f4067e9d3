package session

import (
	"sync"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Snapshot is an immutable view of the session captured when an operation
// starts. FormID and Schema are both set or both absent.
type Snapshot struct {
	FormID     schema.FormID
	Schema     schema.Schema
	Generation uint64
}

// Empty reports whether no form has been generated yet.
func (s Snapshot) Empty() bool {
	return s.Generation == 0
}

// Store holds the single "current form" session. Replace is the only way to
// change it.
type Store struct {
	mu      sync.RWMutex
	current Snapshot
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{}
}

// Current captures the session as it is right now.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace swaps identifier and schema together and bumps the generation.
func (s *Store) Replace(id schema.FormID, sch schema.Schema) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{FormID: id, Schema: sch, Generation: s.current.Generation + 1}
	return s.current
}

// ReplaceIf replaces the session only when its generation still equals
// expected, so a slow generate cannot overwrite a newer one.
func (s *Store) ReplaceIf(expected uint64, id schema.FormID, sch schema.Schema) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current.Generation != expected {
		return s.current, false
	}
	s.current = Snapshot{FormID: id, Schema: sch, Generation: s.current.Generation + 1}
	return s.current, true
}

// IsCurrent reports whether snap is still the live session.
func (s *Store) IsCurrent(snap Snapshot) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Generation == snap.Generation
}

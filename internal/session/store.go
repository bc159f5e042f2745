package session

import (
	"errors"
	"sync"
)

var errDuplicateID = errors.New("session id already in use")

type entry struct {
	mu      sync.Mutex
	session *Session
}

// Store maps session ids to sessions. The map lock only guards insert and
// lookup; every session is mutated under its own entry lock.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

func NewStore() *Store {
	return &Store{entries: make(map[string]*entry)}
}

func (s *Store) Insert(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.entries[sess.ID]; exists {
		return errDuplicateID
	}
	s.entries[sess.ID] = &entry{session: sess}
	return nil
}

func (s *Store) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// With runs fn while holding the session's lock. fn must not block.
func (s *Store) With(id string, fn func(*Session)) error {
	e, ok := s.lookup(id)
	if !ok {
		return ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
	return nil
}

// Get returns a deep copy of the session
func (s *Store) Get(id string) (Session, bool) {
	var snapshot Session
	err := s.With(id, func(sess *Session) {
		snapshot = sess.clone()
	})
	return snapshot, err == nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) CountByStatus(statuses ...Status) int {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	count := 0
	for _, e := range entries {
		e.mu.Lock()
		current := e.session.Status
		e.mu.Unlock()
		for _, st := range statuses {
			if current == st {
				count++
				break
			}
		}
	}
	return count
}

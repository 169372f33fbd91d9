package session

import (
	"errors"
	"sync"
)

var ErrNotFound = errors.New("session not found")

// Store holds every known session, queued through terminal. It is created
// once at process start, injected into every component that needs it, and
// never recreated.
type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Put registers a session under its id.
func (st *Store) Put(s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = s
}

// Get returns the session with the given id.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// List returns all sessions in no particular order.
func (st *Store) List() []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, s)
	}
	return out
}

// ListActive returns the sessions currently in play. The periodic sweep
// walks this set. Status is read under each session's own lock, after
// the store lock is released; the store lock never nests around a
// session lock.
func (st *Store) ListActive() []*Session {
	st.mu.RLock()
	all := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		all = append(all, s)
	}
	st.mu.RUnlock()

	var out []*Session
	for _, s := range all {
		s.Lock()
		active := s.Status == StatusActive
		s.Unlock()
		if active {
			out = append(out, s)
		}
	}
	return out
}

// Remove drops a session from the store. Used only to quarantine a
// corrupted record; subsequent access reports ErrNotFound.
func (st *Store) Remove(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}

// Count returns the number of known sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

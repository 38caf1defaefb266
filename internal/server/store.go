package server

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/extratos/verifier/internal/session"
)

// ErrSessionNotFound is returned for ids the store does not hold.
var ErrSessionNotFound = errors.New("session not found")

// Store keeps in-memory sessions keyed by id. Sessions are values: callers
// get copies and hand back replacements through Update.
type Store struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]session.Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[uuid.UUID]session.Session)}
}

// Create registers an empty session and returns its id.
func (s *Store) Create() uuid.UUID {
	id := uuid.New()
	s.mu.Lock()
	s.sessions[id] = session.Session{}
	s.mu.Unlock()
	return id
}

// Get returns a copy of the session with id.
func (s *Store) Get(id uuid.UUID) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return session.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

// Update replaces the session with id by fn's result. fn runs under the
// store lock; when it fails the stored session is left as it was.
func (s *Store) Update(id uuid.UUID, fn func(session.Session) (session.Session, error)) (session.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return session.Session{}, ErrSessionNotFound
	}
	next, err := fn(sess)
	if err != nil {
		return sess, err
	}
	s.sessions[id] = next
	return next, nil
}

// Delete resets and forgets the session with id.
func (s *Store) Delete(id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

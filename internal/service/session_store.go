package service

import (
	"sync"

	"github.com/google/uuid"
)

// SessionStore is the in-process registry of logged-in sessions. A token is
// only honored while its session id is present here, so logging out
// invalidates the token immediately even though the JWT itself has not
// expired.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]int // session id -> user id
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]int)}
}

// Open registers a new session for the user and returns its id.
func (s *SessionStore) Open(userID int) string {
	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = userID
	s.mu.Unlock()
	return id
}

// Active reports whether the session id is registered for the user.
func (s *SessionStore) Active(sessionID string, userID int) bool {
	s.mu.RLock()
	owner, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	return ok && owner == userID
}

// Close removes the session. Closing an unknown id is a no-op.
func (s *SessionStore) Close(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// CloseAll removes every session belonging to the user.
func (s *SessionStore) CloseAll(userID int) {
	s.mu.Lock()
	for id, owner := range s.sessions {
		if owner == userID {
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
}

package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bobmcallan/nav-portal/internal/models"
)

// SessionStore holds live dashboard sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates an empty SessionStore whose sessions live for ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*models.Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a session for username.
func (s *SessionStore) Create(username string) *models.Session {
	now := s.now()
	sess := &models.Session{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)
	s.sessions[sess.ID] = sess
	return sess
}

// Get retrieves a session by ID. Returns false if not found or expired.
func (s *SessionStore) Get(id string) (*models.Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if sess.ExpiredAt(s.now()) {
		s.Delete(id)
		return nil, false
	}
	return sess, true
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Cleanup removes expired sessions and returns how many were dropped.
func (s *SessionStore) Cleanup() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

// Len returns the number of stored sessions, expired or not.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) sweepLocked(now time.Time) int {
	n := 0
	for k, sess := range s.sessions {
		if sess.ExpiredAt(now) {
			delete(s.sessions, k)
			n++
		}
	}
	return n
}

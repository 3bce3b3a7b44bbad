// Package auth holds the credential of the signed-in GitHub user.
package auth

import (
	"errors"
	"sync"
)

// ErrNotAuthenticated is returned once the session has been invalidated.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session carries an opaque bearer token and the owner ID that scopes every
// store call. It is safe for concurrent use.
type Session struct {
	mu      sync.RWMutex
	token   string
	ownerID string
	valid   bool
}

func NewSession(token, ownerID string) *Session {
	return &Session{token: token, ownerID: ownerID, valid: true}
}

// Token returns the bearer token, or ErrNotAuthenticated after Invalidate.
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.valid {
		return "", ErrNotAuthenticated
	}
	return s.token, nil
}

// OwnerID returns the owner identifier, or ErrNotAuthenticated after Invalidate.
func (s *Session) OwnerID() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.valid {
		return "", ErrNotAuthenticated
	}
	return s.ownerID, nil
}

func (s *Session) Valid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.valid
}

// Invalidate drops the credential. It cannot be undone; sign in again with a new Session.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.valid = false
	s.token = ""
}

// Identity supplies the owner that scopes store calls.
type Identity interface {
	OwnerID() (string, error)
}

var _ Identity = (*Session)(nil)

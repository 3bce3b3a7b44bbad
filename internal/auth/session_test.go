package auth

import (
	"errors"
	"testing"
)

func TestSession(t *testing.T) {
	t.Parallel()
	s := NewSession("tok", "alice")

	tok, err := s.Token()
	if err != nil || tok != "tok" {
		t.Fatalf("Token() = %q, %v", tok, err)
	}
	owner, err := s.OwnerID()
	if err != nil || owner != "alice" {
		t.Fatalf("OwnerID() = %q, %v", owner, err)
	}

	s.Invalidate()
	if s.Valid() {
		t.Error("Expected session to be invalid")
	}
	if _, err := s.Token(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := s.OwnerID(); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("Expected ErrNotAuthenticated, got %v", err)
	}
}

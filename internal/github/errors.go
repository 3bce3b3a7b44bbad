package github

import (
	"errors"
	"fmt"
)

// ErrAuthExpired means GitHub rejected the credential. It ends the session
// and is never worth retrying.
var ErrAuthExpired = errors.New("github credential rejected")

// ErrTransport is the kind matched by every *TransportError.
var ErrTransport = errors.New("github transport error")

// TransportError is any non-auth failure talking to GitHub.
type TransportError struct {
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	msg := "github request failed"
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both ErrTransport and the underlying cause.
func (e *TransportError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrTransport, e.Err}
	}
	return []error{ErrTransport}
}

// IsAuthExpired reports whether err ends the session.
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}

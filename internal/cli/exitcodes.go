package cli

import (
	"errors"
	"fmt"

	"github.com/weibeld/github-projects-dashboard/internal/app"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneral indicates a general error occurred.
	// Use for: unexpected failures or anything that doesn't fit below.
	ExitGeneral = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Missing arguments, invalid flag combinations.
	ExitUsage = 2

	// ExitNotFound indicates a requested resource was not found.
	// Use for: column, label or project IDs that don't exist.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: unreadable fixtures or config files.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: empty or duplicate titles, bad colors, illegal moves.
	ExitValidation = 5

	// ExitAuth indicates the GitHub credential was rejected.
	ExitAuth = 6

	// ExitUnavailable indicates GitHub or the store could not be reached.
	ExitUnavailable = 7
)

// ExitError carries the process exit code for an error that was already
// reported to the user.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCodeFor maps an application error onto an exit code.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	if errors.Is(err, ErrAmbiguousRef) {
		return ExitUsage
	}
	switch app.Classify(err) {
	case app.KindValidation, app.KindConflict:
		return ExitValidation
	case app.KindNotFound:
		return ExitNotFound
	case app.KindAuth:
		return ExitAuth
	case app.KindUnavailable:
		return ExitUnavailable
	default:
		return ExitGeneral
	}
}

// ErrorCode returns the machine-readable code printed in JSON errors.
func ErrorCode(err error) string {
	if errors.Is(err, ErrAmbiguousRef) {
		return "AMBIGUOUS_REFERENCE"
	}
	switch app.Classify(err) {
	case app.KindValidation:
		return "VALIDATION_ERROR"
	case app.KindConflict:
		return "CONFLICT"
	case app.KindNotFound:
		return "NOT_FOUND"
	case app.KindAuth:
		return "AUTH_REQUIRED"
	case app.KindUnavailable:
		return "UNAVAILABLE"
	default:
		return "ERROR"
	}
}

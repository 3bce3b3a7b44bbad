package column

import "errors"

// Column-related errors
var (
	// Validation errors
	ErrEmptyTitle     = errors.New("title cannot be empty")
	ErrTitleTooLong   = errors.New("title cannot exceed 50 characters")
	ErrDuplicateTitle = errors.New("a column with this title already exists")
	ErrInvalidSort    = errors.New("invalid sort field or direction")

	// Business logic errors
	ErrColumnNotFound    = errors.New("column not found")
	ErrSystemColumn      = errors.New("system columns cannot be deleted or moved")
	ErrInsertAfterClosed = errors.New("cannot insert a column after the closed column")
	ErrUnassignedMissing = errors.New("unassigned column missing")
)

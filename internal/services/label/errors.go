package label

import "errors"

// Label-related errors
var (
	// Validation errors
	ErrEmptyTitle       = errors.New("title cannot be empty")
	ErrTitleTooLong     = errors.New("title cannot exceed 50 characters")
	ErrInvalidColor     = errors.New("invalid color format (must be hex color like #FFFFFF)")
	ErrInvalidTextColor = errors.New("invalid text color (must be white or black)")
	ErrDuplicateTitle   = errors.New("a label with this title already exists")

	// Business logic errors
	ErrLabelNotFound   = errors.New("label not found")
	ErrProjectNotFound = errors.New("project not found")
)

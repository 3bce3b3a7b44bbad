package models

import "errors"

// Domain errors shared by the column operations
var (
	// ErrAlreadyFirstColumn indicates a move left from the leftmost movable slot
	ErrAlreadyFirstColumn = errors.New("column is already the first user column")

	// ErrAlreadyLastColumn indicates a move right from the rightmost movable slot
	ErrAlreadyLastColumn = errors.New("column is already the last user column")
)

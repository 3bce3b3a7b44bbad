package project

import "errors"

// Project-related errors
var (
	ErrProjectNotFound = errors.New("project not found")
	ErrColumnNotFound  = errors.New("column not found")

	errSourceChanged = errors.New("project moved concurrently")
)

package mutation

import (
	"errors"
	"fmt"
)

// RejectedError wraps a failure raised before anything was applied.
// Neither the cache nor the store were touched.
type RejectedError struct {
	Op  string
	Err error
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s rejected: %v", e.Op, e.Err)
}

func (e *RejectedError) Unwrap() error { return e.Err }

// IsRejected reports whether err is a validation failure.
func IsRejected(err error) bool {
	var r *RejectedError
	return errors.As(err, &r)
}

package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSystemColumnsMissing means reconciliation ran before bootstrap.
	ErrSystemColumnsMissing = errors.New("system columns missing: run EnsureSystemColumns first")
	// ErrReread means the projects could not be read back after the effects
	// ran; the Result then carries no project set.
	ErrReread = errors.New("re-read projects")
)

// EffectFailure is one create, delete or reassign that the store rejected.
type EffectFailure struct {
	Effect Effect
	Err    error
}

// EffectsError reports every failed effect of a reconciliation pass. The
// effects that succeeded stay applied; the pass still re-reads the store.
type EffectsError struct {
	Total    int
	Failures []EffectFailure
}

func (e *EffectsError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s %s: %v", f.Effect.Kind, f.Effect.ProjectID, f.Err)
	}
	return fmt.Sprintf("reconcile: %d of %d effects failed: %s", len(e.Failures), e.Total, strings.Join(parts, "; "))
}

// Unwrap exposes each underlying failure to errors.Is and errors.As.
func (e *EffectsError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Failed returns the IDs of projects whose effect failed, in report order.
func (e *EffectsError) Failed() []string {
	ids := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		ids[i] = f.Effect.ProjectID
	}
	return ids
}

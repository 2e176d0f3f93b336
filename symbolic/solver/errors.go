package solver

import (
	"fmt"
	"time"
)

// SolverError describes the failure to decide the path condition of a single path. It is recoverable: the paths
// solved alongside it are unaffected.
type SolverError struct {
	// PathID is the identifier of the path whose condition could not be decided.
	PathID int

	// Condition is the textual form of the path condition.
	Condition string

	// Backend is the name of the oracle which failed.
	Backend string

	// Diagnostic holds the oracle's own explanation, if it produced one.
	Diagnostic string

	// Timeout indicates whether the failure is due to the solver timeout expiring.
	Timeout bool

	// Elapsed is the time spent before the failure.
	Elapsed time.Duration

	// Cause is the underlying error, if any.
	Cause error
}

// Error returns the error message.
func (e *SolverError) Error() string {
	reason := "unknown verdict"
	switch {
	case e.Timeout:
		reason = fmt.Sprintf("timed out after %v", e.Elapsed.Round(time.Millisecond))
	case e.Cause != nil:
		reason = e.Cause.Error()
	}
	msg := fmt.Sprintf("%v solver failed on path #%d (%v): %v", e.Backend, e.PathID, e.Condition, reason)
	if e.Diagnostic != "" {
		msg += ": " + e.Diagnostic
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *SolverError) Unwrap() error {
	return e.Cause
}

package extraction

import (
	"fmt"

	"github.com/crytic/symgen/symbolic/syntax"
)

// UnsupportedConstructError describes a construct of the target function which is outside the subset the generator
// models, such as a loop or an assignment. It aborts the whole run.
type UnsupportedConstructError struct {
	// Function is the name of the function the construct was found in.
	Function string

	// Kind names the kind of construct, e.g. "for statement".
	Kind string

	// Text is the source text of the construct.
	Text string

	// Position is the location of the construct.
	Position syntax.Position
}

// Error returns the error message string, implementing the `error` interface.
func (e *UnsupportedConstructError) Error() string {
	text := e.Text
	if runes := []rune(text); len(runes) > 60 {
		text = string(runes[:57]) + "..."
	}
	if e.Function == "" {
		return fmt.Sprintf("unsupported construct at %v: %s `%s`", e.Position, e.Kind, text)
	}
	return fmt.Sprintf("unsupported construct in %s at %v: %s `%s`", e.Function, e.Position, e.Kind, text)
}

// MaxPathsExceededError is returned when the branch tree of the target has more leaves than allowed.
type MaxPathsExceededError struct {
	// Paths is the number of paths the branch tree has.
	Paths int

	// Limit is the configured maximum.
	Limit int
}

// Error returns the error message string, implementing the `error` interface.
func (e *MaxPathsExceededError) Error() string {
	return fmt.Sprintf("the target has %d paths which exceeds the limit of %d", e.Paths, e.Limit)
}

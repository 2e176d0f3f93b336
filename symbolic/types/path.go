package types

import (
	"fmt"
	"strings"

	"github.com/crytic/symgen/symbolic/expr"
)

// Polarity describes which side of a branch a path takes.
type Polarity bool

const (
	// Taken indicates the path follows the then-branch, so the predicate holds.
	Taken Polarity = true
	// NotTaken indicates the path follows the else-branch, so the predicate does not hold.
	NotTaken Polarity = false
)

// String returns "taken" or "not taken".
func (p Polarity) String() string {
	if p == Taken {
		return "taken"
	}
	return "not taken"
}

// PathStep is a single branch decision along a path.
type PathStep struct {
	Predicate *Predicate
	Polarity  Polarity
}

// Path describes one root-to-leaf route through the branch tree.
type Path struct {
	// ID is the 1-based index of the path in enumeration order.
	ID int

	// Steps are the branch decisions from the root to the leaf.
	Steps []PathStep

	// Outcome is the leaf the path ends in.
	Outcome *Outcome
}

// String returns a compact description of the path's decisions, e.g. "#1 -> !#2 -> return 1".
func (p *Path) String() string {
	parts := make([]string, 0, len(p.Steps)+1)
	for _, step := range p.Steps {
		if step.Polarity == Taken {
			parts = append(parts, fmt.Sprintf("#%d", step.Predicate.ID))
		} else {
			parts = append(parts, fmt.Sprintf("!#%d", step.Predicate.ID))
		}
	}
	parts = append(parts, "return "+p.Outcome.Label)
	return strings.Join(parts, " -> ")
}

// PathCondition is the conjunction of a path's predicates, each negated when the path does not take its branch.
type PathCondition struct {
	// Path is the path the condition was derived from.
	Path *Path

	// Terms hold one conjunct per step of the path, in path order.
	Terms []expr.Expr
}

// Expr returns the condition as a single conjunction.
func (c *PathCondition) Expr() expr.Expr {
	return expr.NewAnd(c.Terms...)
}

// String returns the condition in source-like syntax. Each term is rendered in parentheses so that the predicates
// the path depends on remain recognisable.
func (c *PathCondition) String() string {
	if len(c.Terms) == 0 {
		return "true"
	}
	parts := make([]string, len(c.Terms))
	for i, term := range c.Terms {
		parts[i] = "(" + term.String() + ")"
	}
	return strings.Join(parts, " && ")
}

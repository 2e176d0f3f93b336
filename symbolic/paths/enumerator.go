// Package paths implements the path enumerator and the path condition builder.
package paths

import (
	"iter"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/types"
)

// All returns a sequence of every root-to-leaf path of the branch tree, in depth-first order with the then-branch
// visited before the else-branch. Paths are numbered from 1 in that order. The sequence can be iterated any number of
// times and yields the same paths each time.
func All(root types.Node) iter.Seq[*types.Path] {
	return func(yield func(*types.Path) bool) {
		id := 0
		steps := make([]types.PathStep, 0)

		var walk func(n types.Node) bool
		walk = func(n types.Node) bool {
			switch t := n.(type) {
			case *types.Outcome:
				id++
				path := &types.Path{ID: id, Steps: append([]types.PathStep(nil), steps...), Outcome: t}
				return yield(path)
			case *types.BranchNode:
				steps = append(steps, types.PathStep{Predicate: t.Predicate, Polarity: types.Taken})
				if !walk(t.Then) {
					return false
				}
				steps[len(steps)-1].Polarity = types.NotTaken
				if !walk(t.Else) {
					return false
				}
				steps = steps[:len(steps)-1]
			}
			return true
		}
		walk(root)
	}
}

// Enumerate returns every root-to-leaf path of the branch tree in the order produced by All.
func Enumerate(root types.Node) []*types.Path {
	paths := make([]*types.Path, 0, root.Leaves())
	for path := range All(root) {
		paths = append(paths, path)
	}
	return paths
}

// BuildCondition returns the path condition of a path: one term per step, holding the step's predicate when the
// branch is taken and its negation otherwise, in path order.
func BuildCondition(path *types.Path) *types.PathCondition {
	terms := make([]expr.Expr, len(path.Steps))
	for i, step := range path.Steps {
		if step.Polarity == types.Taken {
			terms[i] = step.Predicate.Expr
		} else {
			terms[i] = expr.NewNot(step.Predicate.Expr)
		}
	}
	return &types.PathCondition{Path: path, Terms: terms}
}

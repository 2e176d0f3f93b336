// Package extraction implements the condition extractor, which turns the parsed body of a target function into a
// branch tree whose predicates are tagged by their position in the tree.
package extraction

import (
	"math"

	"github.com/crytic/symgen/symbolic/syntax"
	"github.com/crytic/symgen/symbolic/types"
)

// defaultImplicitReturnLabel labels the outcome of falling off the end of a function when the frontend provides no
// language-specific label.
const defaultImplicitReturnLabel = "return"

// Options describes limits applied during extraction.
type Options struct {
	// MaxPaths is the maximum number of leaves the branch tree may have. A zero value disables the limit.
	MaxPaths int
}

// Extract builds the branch tree of the provided function. Statements following a conditional are part of both of
// its subtrees, so a conditional without an else-branch still yields a node with two subtrees. Returns an
// UnsupportedConstructError naming the first construct outside the supported subset, or a MaxPathsExceededError if
// the tree would be larger than allowed. Extract does not modify fn.
func Extract(fn *syntax.Function, opts Options) (types.Node, error) {
	// Reject the whole function before building anything
	if unsupported := findUnsupported(fn.Body); unsupported != nil {
		return nil, &UnsupportedConstructError{
			Function: fn.Name,
			Kind:     unsupported.Kind,
			Text:     unsupported.Text,
			Position: unsupported.Position,
		}
	}

	// Count the paths without materialising the tree, since sequential conditionals grow it exponentially
	if opts.MaxPaths > 0 {
		if count := countPaths(fn.Body, 1); count > opts.MaxPaths {
			return nil, &MaxPathsExceededError{Paths: count, Limit: opts.MaxPaths}
		}
	}

	label := fn.ImplicitReturnLabel
	if label == "" {
		label = defaultImplicitReturnLabel
	}
	e := &extractor{
		nextID:   1,
		implicit: &types.Outcome{Label: label, Implicit: true, Position: fn.Position},
	}
	return e.extract(fn.Body), nil
}

// extractor holds the state of a single extraction.
type extractor struct {
	// nextID is the identifier assigned to the next predicate encountered.
	nextID int

	// implicit is the outcome reached by falling off the end of the function.
	implicit *types.Outcome
}

// extract builds the subtree for executing stmts in order.
func (e *extractor) extract(stmts []syntax.Stmt) types.Node {
	for i, stmt := range stmts {
		switch s := stmt.(type) {
		case *syntax.Return:
			// Anything after a return is unreachable
			return &types.Outcome{
				Label:           s.Label,
				Value:           s.Value,
				DependsOnInputs: s.DependsOnInputs,
				Implicit:        s.Implicit,
				Position:        s.Position,
			}
		case *syntax.If:
			rest := stmts[i+1:]

			// Identifiers follow a pre-order traversal, so the predicate is numbered before its subtrees
			predicate := &types.Predicate{ID: e.nextID, Expr: s.Cond, Text: s.CondText, Position: s.Position}
			e.nextID++
			then := e.extract(concat(s.Then, rest))
			els := e.extract(concat(s.Else, rest))
			return &types.BranchNode{Predicate: predicate, Then: then, Else: els}
		}
	}
	// Every leaf is a distinct node, even when several fall off the end of the function
	implicit := *e.implicit
	return &implicit
}

// concat returns a new slice holding a followed by b.
func concat(a, b []syntax.Stmt) []syntax.Stmt {
	r := make([]syntax.Stmt, 0, len(a)+len(b))
	return append(append(r, a...), b...)
}

// findUnsupported returns the first unsupported statement in source order, including those nested in conditionals.
func findUnsupported(stmts []syntax.Stmt) *syntax.Unsupported {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *syntax.Unsupported:
			return s
		case *syntax.If:
			if u := findUnsupported(s.Then); u != nil {
				return u
			}
			if u := findUnsupported(s.Else); u != nil {
				return u
			}
		}
	}
	return nil
}

// countPaths returns the number of leaves extract would produce for stmts, given that falling off their end leads to
// a continuation with the provided number of leaves. The result saturates at math.MaxInt.
func countPaths(stmts []syntax.Stmt, continuation int) int {
	for i, stmt := range stmts {
		switch s := stmt.(type) {
		case *syntax.Return:
			return 1
		case *syntax.If:
			rest := countPaths(stmts[i+1:], continuation)
			return saturatingAdd(countPaths(s.Then, rest), countPaths(s.Else, rest))
		}
	}
	return continuation
}

func saturatingAdd(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

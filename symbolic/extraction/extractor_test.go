package extraction

import (
	"testing"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/syntax"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	a = expr.NewVar("a", expr.SortInt)
	b = expr.NewVar("b", expr.SortInt)
	c = expr.NewVar("c", expr.SortInt)
)

func ret(label string) *syntax.Return {
	return &syntax.Return{Label: label}
}

func cond(e expr.Expr, then []syntax.Stmt, els []syntax.Stmt) *syntax.If {
	return &syntax.If{Cond: e, CondText: e.String(), Then: then, Else: els}
}

// triangleFunction returns the parsed form of:
//
//	if a == b {
//		if b == c { return "equilateral" }
//		return "isosceles"
//	}
//	if b == c || a == c { return "isosceles" }
//	return "scalene"
func triangleFunction() *syntax.Function {
	return &syntax.Function{
		Name: "Triangle",
		Body: []syntax.Stmt{
			cond(expr.NewCompare(expr.OpEq, a, b), []syntax.Stmt{
				cond(expr.NewCompare(expr.OpEq, b, c), []syntax.Stmt{ret(`"equilateral"`)}, nil),
				ret(`"isosceles"`),
			}, nil),
			cond(expr.NewOr(expr.NewCompare(expr.OpEq, b, c), expr.NewCompare(expr.OpEq, a, c)), []syntax.Stmt{ret(`"isosceles"`)}, nil),
			ret(`"scalene"`),
		},
	}
}

// TestExtractTriangle verifies the shape of the branch tree and its pre-order predicate numbering.
func TestExtractTriangle(t *testing.T) {
	root, err := Extract(triangleFunction(), Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, root.Leaves())

	node, ok := root.(*types.BranchNode)
	require.True(t, ok)
	assert.EqualValues(t, 1, node.Predicate.ID)
	assert.EqualValues(t, "a == b", node.Predicate.Text)

	// The nested conditional is numbered before the one in the else-subtree
	then := node.Then.(*types.BranchNode)
	assert.EqualValues(t, 2, then.Predicate.ID)
	assert.EqualValues(t, `"equilateral"`, then.Then.(*types.Outcome).Label)
	assert.EqualValues(t, `"isosceles"`, then.Else.(*types.Outcome).Label)

	els := node.Else.(*types.BranchNode)
	assert.EqualValues(t, 3, els.Predicate.ID)
	assert.EqualValues(t, "branch #3", els.Predicate.Label())
	assert.EqualValues(t, `"isosceles"`, els.Then.(*types.Outcome).Label)
	assert.EqualValues(t, `"scalene"`, els.Else.(*types.Outcome).Label)
}

// TestExtractFallThrough verifies that statements following a conditional are copied into both of its subtrees, and
// that falling off the end produces an implicit outcome per leaf.
func TestExtractFallThrough(t *testing.T) {
	fn := &syntax.Function{
		Name:                "f",
		ImplicitReturnLabel: "None",
		Body: []syntax.Stmt{
			cond(expr.NewCompare(expr.OpGt, a, expr.NewInt(0)), nil, nil),
			cond(expr.NewCompare(expr.OpGt, b, expr.NewInt(0)), []syntax.Stmt{ret("1")}, nil),
		},
	}
	root, err := Extract(fn, Options{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, root.Leaves())

	predicates := types.Predicates(root)
	require.Len(t, predicates, 3)
	assert.EqualValues(t, []int{1, 2, 3}, []int{predicates[0].ID, predicates[1].ID, predicates[2].ID})
	assert.EqualValues(t, "b > 0", predicates[1].Text)
	assert.EqualValues(t, "b > 0", predicates[2].Text)

	implicit := root.(*types.BranchNode).Then.(*types.BranchNode).Else.(*types.Outcome)
	assert.True(t, implicit.Implicit)
	assert.EqualValues(t, "None", implicit.Label)
	assert.NotSame(t, implicit, root.(*types.BranchNode).Else.(*types.BranchNode).Else)
}

// TestExtractStraightLine verifies that a function without conditionals yields a single outcome, and that an empty
// function yields the default implicit outcome.
func TestExtractStraightLine(t *testing.T) {
	root, err := Extract(&syntax.Function{Name: "f", Body: []syntax.Stmt{ret("42"), ret("unreachable")}}, Options{})
	require.NoError(t, err)
	assert.EqualValues(t, "42", root.(*types.Outcome).Label)

	root, err = Extract(&syntax.Function{Name: "g"}, Options{})
	require.NoError(t, err)
	assert.EqualValues(t, defaultImplicitReturnLabel, root.(*types.Outcome).Label)
	assert.True(t, root.(*types.Outcome).Implicit)
}

// TestExtractUnsupported verifies that a loop anywhere in the function aborts extraction and is named by the error.
func TestExtractUnsupported(t *testing.T) {
	loop := &syntax.Unsupported{Kind: "for statement", Text: "for i := 0; i < n; i++ {}", Position: syntax.Position{Line: 4, Column: 3}}
	fn := &syntax.Function{
		Name: "Loop",
		Body: []syntax.Stmt{
			cond(expr.NewCompare(expr.OpGt, a, expr.NewInt(0)), []syntax.Stmt{ret("1")}, []syntax.Stmt{loop, ret("2")}),
		},
	}

	root, err := Extract(fn, Options{})
	assert.Nil(t, root)
	var unsupported *UnsupportedConstructError
	require.ErrorAs(t, err, &unsupported)
	assert.EqualValues(t, "for statement", unsupported.Kind)
	assert.EqualValues(t, loop.Text, unsupported.Text)
	assert.EqualValues(t, 4, unsupported.Position.Line)
	assert.Contains(t, err.Error(), "Loop")
	assert.Contains(t, err.Error(), "4:3")
}

// TestExtractMaxPaths verifies that sequential conditionals are counted without building the tree.
func TestExtractMaxPaths(t *testing.T) {
	body := make([]syntax.Stmt, 0)
	for i := 0; i < 40; i++ {
		body = append(body, cond(expr.NewCompare(expr.OpGt, a, expr.NewInt(int64(i))), nil, nil))
	}
	body = append(body, ret("0"))

	_, err := Extract(&syntax.Function{Name: "wide", Body: body}, Options{MaxPaths: 1000})
	var exceeded *MaxPathsExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.EqualValues(t, int64(1)<<40, exceeded.Paths)

	// The triangle stays under any reasonable limit
	_, err = Extract(triangleFunction(), Options{MaxPaths: 4})
	assert.NoError(t, err)
	_, err = Extract(triangleFunction(), Options{MaxPaths: 3})
	assert.Error(t, err)
}

package z3

import (
	"context"
	"testing"
	"time"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOracle verifies verdicts when z3 support is compiled in, and the error returned otherwise.
func TestOracle(t *testing.T) {
	oracle, err := NewOracle(time.Second)
	if !Available {
		assert.ErrorContains(t, err, "without z3 support")
		return
	}
	require.NoError(t, err)
	assert.EqualValues(t, Name, oracle.Name())

	x := expr.NewVar("x", expr.SortInt)
	ok := expr.NewVar("ok", expr.SortBool)
	formula := expr.NewAnd(expr.NewCompare(expr.OpEq, expr.NewNeg(x), expr.NewInt(7)), expr.NewNot(ok))
	result, err := oracle.Solve(context.Background(), &types.Query{Vars: []*expr.Var{x, ok}, Formula: formula})
	require.NoError(t, err)
	require.EqualValues(t, types.OracleSat, result.Status)
	assert.EqualValues(t, expr.IntValue(-7), result.Model["x"])

	formula = expr.NewAnd(expr.NewCompare(expr.OpGt, x, expr.NewInt(0)), expr.NewCompare(expr.OpLt, x, expr.NewInt(0)))
	result, err = oracle.Solve(context.Background(), &types.Query{Vars: []*expr.Var{x}, Formula: formula})
	require.NoError(t, err)
	assert.EqualValues(t, types.OracleUnsat, result.Status)

	// Wrapped sums overflow into the range of their type
	y := expr.NewVar("y", expr.SortInt)
	formula = expr.NewAnd(
		expr.NewCompare(expr.OpGe, x, expr.NewInt(0)), expr.NewCompare(expr.OpLe, x, expr.NewInt(127)),
		expr.NewCompare(expr.OpGe, y, expr.NewInt(0)), expr.NewCompare(expr.OpLe, y, expr.NewInt(127)),
		expr.NewCompare(expr.OpLt, expr.NewWrap(expr.NewArith(expr.OpAdd, x, y), 8, true), expr.NewInt(0)),
	)
	result, err = oracle.Solve(context.Background(), &types.Query{Vars: []*expr.Var{x, y}, Formula: formula})
	require.NoError(t, err)
	require.EqualValues(t, types.OracleSat, result.Status)
	holds, err := expr.EvalBool(formula, result.Model)
	require.NoError(t, err)
	assert.True(t, holds)
}

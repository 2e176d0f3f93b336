package bitblast

import (
	"context"
	"testing"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	x  = expr.NewVar("x", expr.SortInt)
	y  = expr.NewVar("y", expr.SortInt)
	ok = expr.NewVar("ok", expr.SortBool)
)

func cmp(op expr.CompareOp, a, b expr.Expr) expr.Expr {
	return expr.NewCompare(op, a, b)
}

func lit(v int64) expr.Expr {
	return expr.NewInt(v)
}

// TestOracleSolve verifies verdicts of the oracle, and that every model it returns satisfies the query.
func TestOracleSolve(t *testing.T) {
	// Create the list of test cases
	testCases := []struct {
		name     string
		width    int
		formula  expr.Expr
		expected types.OracleStatus
		model    expr.Assignment
	}{
		{
			name:     "contradiction",
			width:    16,
			formula:  expr.NewAnd(cmp(expr.OpGt, x, lit(0)), cmp(expr.OpLt, x, lit(0))),
			expected: types.OracleUnsat,
		},
		{
			name:     "system of equations",
			width:    8,
			formula:  expr.NewAnd(cmp(expr.OpEq, expr.NewArith(expr.OpMul, x, y), lit(12)), cmp(expr.OpEq, expr.NewArith(expr.OpAdd, x, y), lit(7)), cmp(expr.OpLt, x, y)),
			expected: types.OracleSat,
			model:    expr.Assignment{"x": expr.IntValue(3), "y": expr.IntValue(4), "ok": expr.BoolValue(false)},
		},
		{
			name:     "negative result",
			width:    16,
			formula:  cmp(expr.OpEq, expr.NewArith(expr.OpSub, x, lit(5)), lit(-20)),
			expected: types.OracleSat,
			model:    expr.Assignment{"x": expr.IntValue(-15), "y": expr.IntValue(0), "ok": expr.BoolValue(false)},
		},
		{
			name:     "negation",
			width:    16,
			formula:  cmp(expr.OpEq, expr.NewNeg(x), lit(300)),
			expected: types.OracleSat,
			model:    expr.Assignment{"x": expr.IntValue(-300), "y": expr.IntValue(0), "ok": expr.BoolValue(false)},
		},
		{
			name:     "booleans",
			width:    16,
			formula:  expr.NewAnd(cmp(expr.OpNe, ok, expr.NewBool(false)), expr.NewNot(cmp(expr.OpLe, x, lit(100))), cmp(expr.OpGe, y, x)),
			expected: types.OracleSat,
		},
		{
			name:     "variable range",
			width:    4,
			formula:  expr.NewOr(cmp(expr.OpGt, x, lit(7)), cmp(expr.OpLt, x, lit(-8))),
			expected: types.OracleUnsat,
		},
		{
			name:     "no overflow of intermediate results",
			width:    4,
			formula:  cmp(expr.OpEq, expr.NewArith(expr.OpMul, x, x), lit(49)),
			expected: types.OracleSat,
		},
		{
			name:  "signed wraparound",
			width: 16,
			formula: expr.NewAnd(
				cmp(expr.OpGe, x, lit(0)), cmp(expr.OpLe, x, lit(127)), cmp(expr.OpGe, y, lit(0)), cmp(expr.OpLe, y, lit(127)),
				cmp(expr.OpLt, expr.NewWrap(expr.NewArith(expr.OpAdd, x, y), 8, true), lit(0)),
			),
			expected: types.OracleSat,
		},
		{
			name:     "unsigned wraparound",
			width:    16,
			formula:  expr.NewAnd(cmp(expr.OpEq, x, lit(0)), cmp(expr.OpEq, expr.NewWrap(expr.NewArith(expr.OpSub, x, lit(1)), 8, false), lit(255))),
			expected: types.OracleSat,
		},
		{
			name:     "wrapped values stay in range",
			width:    16,
			formula:  cmp(expr.OpGt, expr.NewWrap(expr.NewArith(expr.OpMul, x, y), 8, true), lit(127)),
			expected: types.OracleUnsat,
		},
		{
			name:     "constant true",
			width:    16,
			formula:  expr.NewAnd(),
			expected: types.OracleSat,
			model:    expr.Assignment{"x": expr.IntValue(0), "y": expr.IntValue(0), "ok": expr.BoolValue(false)},
		},
		{
			name:     "constant false",
			width:    16,
			formula:  cmp(expr.OpLt, lit(3), lit(-2)),
			expected: types.OracleUnsat,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			oracle, err := NewOracle(tc.width)
			require.NoError(t, err)

			query := &types.Query{Vars: []*expr.Var{x, y, ok}, Formula: tc.formula}
			result, err := oracle.Solve(context.Background(), query)
			require.NoError(t, err)
			assert.EqualValues(t, tc.expected, result.Status)

			if result.Status != types.OracleSat {
				return
			}
			require.Len(t, result.Model, 3)
			holds, err := expr.EvalBool(tc.formula, result.Model)
			require.NoError(t, err)
			assert.True(t, holds, "model %v does not satisfy %v", result.Model, tc.formula)
			if tc.model != nil {
				assert.EqualValues(t, tc.model, result.Model)
			}
		})
	}
}

// TestOracleErrors verifies rejected widths, ill-sorted formulas and cancelled contexts.
func TestOracleErrors(t *testing.T) {
	_, err := NewOracle(1)
	assert.Error(t, err)
	_, err = NewOracle(65)
	assert.Error(t, err)

	oracle, err := NewOracle(16)
	require.NoError(t, err)
	assert.EqualValues(t, Name, oracle.Name())
	assert.EqualValues(t, 16, oracle.IntWidth())

	_, err = oracle.Solve(context.Background(), &types.Query{Formula: x})
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = oracle.Solve(ctx, &types.Query{Vars: []*expr.Var{x}, Formula: cmp(expr.OpGt, x, lit(0))})
	assert.ErrorIs(t, err, context.Canceled)
}

// TestOracleWidthLimit verifies that deeply nested products are rejected instead of building huge circuits.
func TestOracleWidthLimit(t *testing.T) {
	oracle, err := NewOracle(64)
	require.NoError(t, err)

	var product expr.Expr = x
	for i := 0; i < 4; i++ {
		product = expr.NewArith(expr.OpMul, product, product)
	}
	_, err = oracle.Solve(context.Background(), &types.Query{Vars: []*expr.Var{x}, Formula: cmp(expr.OpEq, product, lit(0))})
	assert.ErrorContains(t, err, "exceeds the limit")
}

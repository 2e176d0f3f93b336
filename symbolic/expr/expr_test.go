package expr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExprString verifies that expressions render with the minimal parentheses required by operator precedence.
func TestExprString(t *testing.T) {
	x := NewVar("x", SortInt)
	y := NewVar("y", SortInt)
	b := NewVar("b", SortBool)

	// Create the list of test cases
	testCases := []struct {
		expr     Expr
		expected string
	}{
		{NewCompare(OpGt, x, NewInt(0)), "x > 0"},
		{NewCompare(OpLt, NewArith(OpAdd, x, y), NewInt(10)), "x + y < 10"},
		{NewArith(OpMul, NewArith(OpAdd, x, y), NewInt(2)), "(x + y) * 2"},
		{NewArith(OpSub, x, NewArith(OpSub, y, NewInt(1))), "x - (y - 1)"},
		{NewArith(OpSub, NewArith(OpSub, x, y), NewInt(1)), "x - y - 1"},
		{NewNeg(NewInt(-5)), "-(-5)"},
		{NewNot(NewCompare(OpEq, x, y)), "!(x == y)"},
		{NewNot(b), "!b"},
		{NewAnd(NewCompare(OpGt, x, NewInt(0)), NewOr(b, NewCompare(OpLt, y, NewInt(0)))), "x > 0 && (b || y < 0)"},
		{NewOr(NewAnd(b, b), NewBool(false)), "b && b || false"},
		{NewAnd(), "true"},
		{NewOr(), "false"},
		{NewNot(NewAnd(NewOr(b, b))), "!(b || b)"},
	}

	for _, tc := range testCases {
		assert.EqualValues(t, tc.expected, tc.expr.String())
	}
}

// TestEval verifies expression evaluation, including short-circuiting and wide intermediate arithmetic.
func TestEval(t *testing.T) {
	x := NewVar("x", SortInt)
	y := NewVar("y", SortInt)
	b := NewVar("b", SortBool)
	env := Assignment{"x": IntValue(3), "y": IntValue(-4), "b": BoolValue(true)}

	// Create the list of test cases
	testCases := []struct {
		expr     Expr
		expected Value
	}{
		{NewArith(OpMul, x, y), IntValue(-12)},
		{NewNeg(NewArith(OpSub, x, y)), IntValue(-7)},
		{NewCompare(OpGe, x, NewInt(3)), BoolValue(true)},
		{NewCompare(OpNe, b, NewBool(true)), BoolValue(false)},
		{NewAnd(b, NewCompare(OpLt, y, NewInt(0))), BoolValue(true)},
		{NewOr(NewNot(b), NewCompare(OpEq, x, y)), BoolValue(false)},
		// The unassigned variable is never reached
		{NewOr(b, NewVar("missing", SortBool)), BoolValue(true)},
	}

	for _, tc := range testCases {
		v, err := Eval(tc.expr, env)
		require.NoError(t, err, tc.expr.String())
		assert.EqualValues(t, tc.expected, v, tc.expr.String())
	}

	// Errors are reported for unassigned variables and mismatched sorts
	_, err := Eval(NewCompare(OpLt, NewVar("z", SortInt), x), env)
	assert.Error(t, err)
	_, err = Eval(NewCompare(OpLt, b, x), env)
	assert.Error(t, err)

	// Products which overflow 64 bits are reported rather than wrapped
	big := NewInt(1 << 62)
	_, err = Eval(NewArith(OpMul, big, big), env)
	assert.Error(t, err)

	// ...but comparisons over them are still exact
	ok, err := EvalBool(NewCompare(OpGt, NewArith(OpMul, big, big), NewInt(0)), env)
	require.NoError(t, err)
	assert.True(t, ok)
}

// TestVarsAndEqual verifies variable collection order and structural equality.
func TestVarsAndEqual(t *testing.T) {
	x := NewVar("x", SortInt)
	y := NewVar("y", SortInt)
	e := NewAnd(NewCompare(OpLt, y, x), NewCompare(OpGt, NewArith(OpAdd, x, y), NewInt(1)))

	vars := Vars(e)
	require.Len(t, vars, 2)
	assert.EqualValues(t, "y", vars[0].Name)
	assert.EqualValues(t, "x", vars[1].Name)
	assert.EqualValues(t, 9, Size(e))

	clone := NewAnd(NewCompare(OpLt, NewVar("y", SortInt), NewVar("x", SortInt)),
		NewCompare(OpGt, NewArith(OpAdd, NewVar("x", SortInt), NewVar("y", SortInt)), NewInt(1)))
	assert.True(t, Equal(e, clone))
	assert.False(t, Equal(e, NewNot(e)))
}

// TestCompareOpAlgebra verifies that Negate and Swap are consistent with evaluation.
func TestCompareOpAlgebra(t *testing.T) {
	ops := []CompareOp{OpEq, OpNe, OpLt, OpLe, OpGt, OpGe}
	for _, op := range ops {
		for a := int64(-1); a <= 1; a++ {
			for b := int64(-1); b <= 1; b++ {
				env := Assignment{}
				base, err := EvalBool(NewCompare(op, NewInt(a), NewInt(b)), env)
				require.NoError(t, err)
				negated, err := EvalBool(NewCompare(op.Negate(), NewInt(a), NewInt(b)), env)
				require.NoError(t, err)
				swapped, err := EvalBool(NewCompare(op.Swap(), NewInt(b), NewInt(a)), env)
				require.NoError(t, err)
				assert.EqualValues(t, !base, negated)
				assert.EqualValues(t, base, swapped)
			}
		}
	}
}

// TestValueJSON verifies that values encode as bare JSON scalars.
func TestValueJSON(t *testing.T) {
	b, err := json.Marshal(map[string]Value{"a": IntValue(-7), "b": BoolValue(true)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": -7, "b": true}`, string(b))

	var decoded map[string]Value
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.EqualValues(t, IntValue(-7), decoded["a"])
	assert.EqualValues(t, BoolValue(true), decoded["b"])

	var v Value
	assert.Error(t, json.Unmarshal([]byte(`1.5`), &v))
	assert.Error(t, json.Unmarshal([]byte(`"x"`), &v))
}

// TestTypeCheck verifies that ill-sorted expressions are rejected.
func TestTypeCheck(t *testing.T) {
	x := NewVar("x", SortInt)
	b := NewVar("b", SortBool)

	assert.NoError(t, TypeCheck(NewAnd(NewCompare(OpEq, b, NewBool(true)), NewCompare(OpLt, NewNeg(x), NewInt(3)))))
	assert.Error(t, TypeCheck(NewArith(OpAdd, x, b)))
	assert.Error(t, TypeCheck(NewCompare(OpLt, b, b)))
	assert.Error(t, TypeCheck(NewCompare(OpEq, x, b)))
	assert.Error(t, TypeCheck(NewNot(x)))
	assert.Error(t, TypeCheck(NewOr(b, x)))
	assert.Error(t, TypeCheck(NewNeg(b)))
}

// TestWrap verifies that wrapped integers overflow like two's complement integers of their width, and that wraps only
// show in the canonical rendering.
func TestWrap(t *testing.T) {
	a := NewVar("a", SortInt)
	b := NewVar("b", SortInt)
	sum := NewWrap(NewArith(OpAdd, a, b), 8, true)

	// Create the list of test cases
	testCases := []struct {
		expr     Expr
		env      Assignment
		expected int64
	}{
		{sum, Assignment{"a": IntValue(127), "b": IntValue(97)}, -32},
		{sum, Assignment{"a": IntValue(-128), "b": IntValue(-1)}, 127},
		{sum, Assignment{"a": IntValue(50), "b": IntValue(20)}, 70},
		{NewWrap(NewArith(OpSub, a, NewInt(1)), 8, false), Assignment{"a": IntValue(0)}, 255},
		{NewWrap(NewNeg(a), 8, true), Assignment{"a": IntValue(-128)}, -128},
		{NewWrap(NewArith(OpMul, a, a), 64, true), Assignment{"a": IntValue(1 << 32)}, 0},
		{NewWrap(NewArith(OpAdd, a, NewInt(1)), 64, true), Assignment{"a": IntValue(1<<63 - 1)}, -1 << 63},
	}

	for _, tc := range testCases {
		v, err := Eval(tc.expr, tc.env)
		require.NoError(t, err, Canonical(tc.expr))
		assert.EqualValues(t, IntValue(tc.expected), v, Canonical(tc.expr))
	}

	cond := NewCompare(OpGt, sum, NewInt(100))
	assert.EqualValues(t, "a + b > 100", cond.String())
	assert.EqualValues(t, "int8(a + b) > 100", Canonical(cond))
	assert.EqualValues(t, "uint16(-a) * 2", Canonical(NewArith(OpMul, NewWrap(NewNeg(a), 16, false), NewInt(2))))
	assert.EqualValues(t, "(a + b) * 2", NewArith(OpMul, sum, NewInt(2)).String())

	assert.True(t, Equal(sum, NewWrap(NewArith(OpAdd, a, b), 8, true)))
	assert.False(t, Equal(sum, NewWrap(NewArith(OpAdd, a, b), 8, false)))
	assert.False(t, Equal(sum, NewArith(OpAdd, a, b)))
	assert.EqualValues(t, []*Var{a, b}, Vars(cond))

	assert.NoError(t, TypeCheck(cond))
	assert.Error(t, TypeCheck(NewWrap(NewBool(true), 8, true)))
	assert.Error(t, TypeCheck(NewWrap(a, 65, true)))
}

package solver

import (
	"context"
	"testing"
	"time"

	"github.com/crytic/symgen/symbolic/config"
	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/solver/bitblast"
	"github.com/crytic/symgen/symbolic/syntax"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOracle answers every query with a fixed result, or blocks until the context is done.
type fakeOracle struct {
	result *types.OracleResult
	err    error
	block  bool
	last   *types.Query
}

func (f *fakeOracle) Name() string {
	return "fake"
}

func (f *fakeOracle) Solve(ctx context.Context, query *types.Query) (*types.OracleResult, error) {
	f.last = query
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.result, f.err
}

var (
	intParam  = syntax.Param{Name: "x", Sort: expr.SortInt, Min: -10, Max: 10}
	boolParam = syntax.Param{Name: "ok", Sort: expr.SortBool}
	params    = []syntax.Param{intParam, boolParam}
)

// newCondition returns a path condition requiring x > 2.
func newCondition() *types.PathCondition {
	x := intParam.Var()
	predicate := &types.Predicate{ID: 1, Expr: expr.NewCompare(expr.OpGt, x, expr.NewInt(2)), Text: "x > 2"}
	path := &types.Path{
		ID:      3,
		Steps:   []types.PathStep{{Predicate: predicate, Polarity: types.Taken}},
		Outcome: &types.Outcome{Label: "1"},
	}
	return &types.PathCondition{Path: path, Terms: []expr.Expr{predicate.Expr}}
}

// TestBuildQuery verifies that queries conjoin the condition, the domain constraints and the parameter ranges.
func TestBuildQuery(t *testing.T) {
	domain := []expr.Expr{expr.NewCompare(expr.OpNe, intParam.Var(), expr.NewInt(5))}
	query := BuildQuery(newCondition(), domain, params)

	require.Len(t, query.Vars, 2)
	assert.EqualValues(t, "x", query.Vars[0].Name)
	assert.EqualValues(t, "ok", query.Vars[1].Name)
	assert.EqualValues(t, "x > 2 && x != 5 && (x >= -10 && x <= 10)", query.Formula.String())
}

// TestSolveVerdicts verifies that satisfiable and unsatisfiable verdicts are returned as results, and that witnesses
// are completed with parameters the oracle left unbound.
func TestSolveVerdicts(t *testing.T) {
	oracle := &fakeOracle{result: &types.OracleResult{Status: types.OracleSat, Model: expr.Assignment{"x": expr.IntValue(7)}}}
	adapter := NewAdapter(oracle, Options{})
	assert.Same(t, oracle, adapter.Oracle())

	result, err := adapter.Solve(context.Background(), newCondition(), nil, params)
	require.NoError(t, err)
	assert.EqualValues(t, Satisfiable, result.Status)
	assert.EqualValues(t, "fake", result.Backend)
	assert.EqualValues(t, expr.Assignment{"x": expr.IntValue(7), "ok": expr.BoolValue(false)}, result.Assignment)

	oracle.result = &types.OracleResult{Status: types.OracleUnsat}
	result, err = adapter.Solve(context.Background(), newCondition(), nil, params)
	require.NoError(t, err)
	assert.EqualValues(t, Unsatisfiable, result.Status)
	assert.Nil(t, result.Assignment)
}

// TestSolveErrors verifies that every oracle failure becomes a SolverError attributed to the path condition.
func TestSolveErrors(t *testing.T) {
	// Create the list of test cases
	testCases := []struct {
		name       string
		oracle     *fakeOracle
		timeout    time.Duration
		isTimeout  bool
		diagnostic string
		message    string
	}{
		{
			name:       "unknown verdict",
			oracle:     &fakeOracle{result: &types.OracleResult{Status: types.OracleUnknown, Diagnostic: "incomplete"}},
			diagnostic: "incomplete",
			message:    "unknown verdict",
		},
		{
			name:    "oracle error",
			oracle:  &fakeOracle{err: errors.New("query rejected")},
			message: "query rejected",
		},
		{
			name:      "timeout",
			oracle:    &fakeOracle{block: true},
			timeout:   10 * time.Millisecond,
			isTimeout: true,
			message:   "timed out",
		},
		{
			name:    "invalid witness",
			oracle:  &fakeOracle{result: &types.OracleResult{Status: types.OracleSat, Model: expr.Assignment{"x": expr.IntValue(1)}}},
			message: "does not satisfy",
		},
		{
			name:    "witness out of range",
			oracle:  &fakeOracle{result: &types.OracleResult{Status: types.OracleSat, Model: expr.Assignment{"x": expr.IntValue(50)}}},
			message: "does not satisfy",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			adapter := NewAdapter(tc.oracle, Options{Timeout: tc.timeout})
			result, err := adapter.Solve(context.Background(), newCondition(), nil, params)
			assert.Nil(t, result)

			var solverErr *SolverError
			require.ErrorAs(t, err, &solverErr)
			assert.EqualValues(t, 3, solverErr.PathID)
			assert.EqualValues(t, "(x > 2)", solverErr.Condition)
			assert.EqualValues(t, "fake", solverErr.Backend)
			assert.EqualValues(t, tc.isTimeout, solverErr.Timeout)
			assert.EqualValues(t, tc.diagnostic, solverErr.Diagnostic)
			assert.Contains(t, err.Error(), tc.message)
			assert.Contains(t, err.Error(), "path #3")
		})
	}
}

// TestSolveWithBitblast verifies the adapter end to end with the default backend, including domain constraints.
func TestSolveWithBitblast(t *testing.T) {
	oracle, err := NewOracle(config.SolverConfig{Backend: bitblast.Name, IntWidth: 16})
	require.NoError(t, err)
	adapter := NewAdapter(oracle, Options{Timeout: 10 * time.Second})

	domain := []expr.Expr{expr.NewCompare(expr.OpLt, intParam.Var(), expr.NewInt(4)), boolParam.Var()}
	result, err := adapter.Solve(context.Background(), newCondition(), domain, params)
	require.NoError(t, err)
	require.EqualValues(t, Satisfiable, result.Status)
	assert.EqualValues(t, expr.Assignment{"x": expr.IntValue(3), "ok": expr.BoolValue(true)}, result.Assignment)

	// The parameter range excludes every value above 10
	domain = []expr.Expr{expr.NewCompare(expr.OpGt, intParam.Var(), expr.NewInt(10))}
	result, err = adapter.Solve(context.Background(), newCondition(), domain, params)
	require.NoError(t, err)
	assert.EqualValues(t, Unsatisfiable, result.Status)
}

// TestNewOracle verifies backend selection.
func TestNewOracle(t *testing.T) {
	oracle, err := NewOracle(config.SolverConfig{Backend: "smtlib", Command: []string{"z3", "-in"}})
	require.NoError(t, err)
	assert.EqualValues(t, "smtlib", oracle.Name())

	_, err = NewOracle(config.SolverConfig{Backend: "magic"})
	assert.Error(t, err)
}

// Package solver implements the solver adapter, which decides path conditions with a satisfiability oracle.
package solver

import (
	"context"
	"time"

	"github.com/crytic/symgen/logging"
	"github.com/crytic/symgen/logging/colors"
	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/syntax"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/crytic/symgen/utils"
	"github.com/pkg/errors"
)

// Status describes the verdict on a path condition which was decided.
type Status string

const (
	// Satisfiable indicates the path condition holds for the returned assignment.
	Satisfiable Status = "SATISFIABLE"
	// Unsatisfiable indicates no input reaches the path.
	Unsatisfiable Status = "UNSATISFIABLE"
)

// Result describes the decision on a path condition.
type Result struct {
	// Status is the verdict.
	Status Status

	// Assignment binds every parameter when Status is Satisfiable.
	Assignment expr.Assignment

	// Backend is the name of the oracle which decided the condition.
	Backend string

	// Elapsed is the time the oracle took.
	Elapsed time.Duration
}

// Options describes the configuration of an Adapter.
type Options struct {
	// Timeout bounds a single oracle call. A zero value disables the timeout.
	Timeout time.Duration
}

// Adapter submits path conditions to an oracle. It is safe for concurrent use if its oracle is.
type Adapter struct {
	// oracle is the satisfiability engine queries are submitted to.
	oracle types.Oracle

	// options describes the adapter configuration.
	options Options

	// logger describes the adapter's logger.
	logger *logging.Logger
}

// NewAdapter creates an Adapter submitting queries to the provided oracle.
func NewAdapter(oracle types.Oracle, options Options) *Adapter {
	return &Adapter{
		oracle:  oracle,
		options: options,
		logger:  logging.GlobalLogger.NewSubLogger("service", logging.SOLVER_SERVICE),
	}
}

// Oracle returns the oracle queries are submitted to.
func (a *Adapter) Oracle() types.Oracle {
	return a.oracle
}

// BuildQuery returns the query deciding a path condition: the conjunction of its terms, the domain constraints and the
// range of every integer parameter. Every parameter is a query variable, in declaration order, so a model binds all
// of them even if the condition does not mention some.
func BuildQuery(condition *types.PathCondition, domain []expr.Expr, params []syntax.Param) *types.Query {
	conjuncts := make([]expr.Expr, 0, len(condition.Terms)+len(domain)+len(params))
	conjuncts = append(conjuncts, condition.Terms...)
	conjuncts = append(conjuncts, domain...)

	vars := make([]*expr.Var, len(params))
	for i, param := range params {
		vars[i] = param.Var()
		if rangeConstraint := param.RangeConstraint(); rangeConstraint != nil {
			conjuncts = append(conjuncts, rangeConstraint)
		}
	}
	return &types.Query{Vars: vars, Formula: expr.NewAnd(conjuncts...)}
}

// Solve decides the path condition conjoined with the domain constraints and parameter ranges. It returns a Result
// when the oracle reached a verdict, or a *SolverError when it failed, timed out, answered unknown, or produced a
// witness which does not satisfy the query. Failures are never retried.
func (a *Adapter) Solve(ctx context.Context, condition *types.PathCondition, domain []expr.Expr, params []syntax.Param) (*Result, error) {
	query := BuildQuery(condition, domain, params)
	pathID := 0
	if condition.Path != nil {
		pathID = condition.Path.ID
	}
	newError := func(diagnostic string, cause error, elapsed time.Duration, timeout bool) *SolverError {
		return &SolverError{
			PathID:     pathID,
			Condition:  condition.String(),
			Backend:    a.oracle.Name(),
			Diagnostic: diagnostic,
			Timeout:    timeout,
			Elapsed:    elapsed,
			Cause:      cause,
		}
	}

	// Bound the oracle call
	solveCtx := ctx
	if a.options.Timeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, a.options.Timeout)
		defer cancel()
	}

	a.logger.Trace("Submitting path #", pathID, " to the ", a.oracle.Name(), " oracle: ", colors.Bold, query.Formula)
	start := time.Now()
	result, err := a.oracle.Solve(solveCtx, query)
	elapsed := time.Since(start)
	if err != nil {
		return nil, newError("", err, elapsed, utils.IsContextTimeout(solveCtx, err))
	}

	switch result.Status {
	case types.OracleUnsat:
		return &Result{Status: Unsatisfiable, Backend: a.oracle.Name(), Elapsed: elapsed}, nil
	case types.OracleSat:
		assignment := completeAssignment(result.Model, params)

		// Never trust the witness
		holds, err := expr.EvalBool(query.Formula, assignment)
		if err != nil {
			return nil, newError(result.Diagnostic, errors.Wrap(err, "could not evaluate the witness"), elapsed, false)
		}
		if !holds {
			return nil, newError(result.Diagnostic, errors.Errorf("witness %v does not satisfy the query", assignment), elapsed, false)
		}
		return &Result{Status: Satisfiable, Assignment: assignment, Backend: a.oracle.Name(), Elapsed: elapsed}, nil
	default:
		return nil, newError(result.Diagnostic, nil, elapsed, false)
	}
}

// completeAssignment returns the model restricted to the parameters, binding any parameter the model omits to the
// value closest to zero within its range.
func completeAssignment(model expr.Assignment, params []syntax.Param) expr.Assignment {
	assignment := make(expr.Assignment, len(params))
	for _, param := range params {
		if value, ok := model[param.Name]; ok && value.Sort == param.Sort {
			assignment[param.Name] = value
			continue
		}
		if param.Sort == expr.SortBool {
			assignment[param.Name] = expr.BoolValue(false)
			continue
		}
		assignment[param.Name] = expr.IntValue(min(max(0, param.Min), param.Max))
	}
	return assignment
}

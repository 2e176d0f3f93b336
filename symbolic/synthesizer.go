package symbolic

import (
	"context"
	"time"

	"github.com/crytic/symgen/events"
	"github.com/crytic/symgen/logging"
	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/paths"
	"github.com/crytic/symgen/symbolic/solver"
	"github.com/crytic/symgen/symbolic/syntax"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/crytic/symgen/utils"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// SynthesizerOptions describes the configuration of a Synthesizer.
type SynthesizerOptions struct {
	// Workers is the maximum number of paths solved concurrently. Values below one solve paths one at a time.
	Workers int

	// PathSolved receives an event for every solved path, if it is not nil.
	PathSolved *events.EventEmitter[PathSolvedEvent]
}

// Synthesizer turns paths into test cases by solving their path conditions.
type Synthesizer struct {
	// adapter decides path conditions.
	adapter *solver.Adapter

	// params are the inputs of the target function, in declaration order.
	params []syntax.Param

	// options describes the synthesizer configuration.
	options SynthesizerOptions

	// logger describes the synthesizer's logger.
	logger *logging.Logger
}

// NewSynthesizer creates a Synthesizer solving path conditions over the provided parameters with the adapter.
func NewSynthesizer(adapter *solver.Adapter, params []syntax.Param, options SynthesizerOptions) *Synthesizer {
	if options.Workers < 1 {
		options.Workers = 1
	}
	return &Synthesizer{
		adapter: adapter,
		params:  params,
		options: options,
		logger:  logging.GlobalLogger.NewSubLogger("service", logging.GENERATOR_SERVICE),
	}
}

// Synthesize solves the condition of every path conjoined with the domain constraints and emits one test case per
// satisfiable path. Unsatisfiable paths are recorded as dead and paths the oracle failed on as failed, without
// affecting the others. Paths are solved concurrently, but every list in the results follows the order of paths. Test
// cases sharing their inputs are flagged as duplicates of each other.
func (s *Synthesizer) Synthesize(ctx context.Context, targets []*types.Path, domain []expr.Expr) *Results {
	start := time.Now()
	pathResults := make([]*PathResult, len(targets))

	var group errgroup.Group
	group.SetLimit(s.options.Workers)
	for i, path := range targets {
		group.Go(func() error {
			pathResults[i] = s.solvePath(ctx, path, domain)
			if s.options.PathSolved != nil {
				if err := s.options.PathSolved.Publish(PathSolvedEvent{Result: pathResults[i]}); err != nil {
					s.logger.Warn("A path solved event handler failed", err)
				}
			}
			return nil
		})
	}
	_ = group.Wait()

	results := &Results{
		RunID:       uuid.New(),
		Params:      s.params,
		Paths:       pathResults,
		TestCases:   make([]*types.TestCase, 0),
		DeadPaths:   make([]DeadPath, 0),
		FailedPaths: make([]FailedPath, 0),
	}
	for _, result := range pathResults {
		switch result.Status {
		case PathSatisfiable:
			results.TestCases = append(results.TestCases, result.TestCase)
		case PathUnsatisfiable:
			results.DeadPaths = append(results.DeadPaths, DeadPath{
				PathID:    result.Path.ID,
				Outcome:   result.Path.Outcome.Label,
				Condition: result.Condition.String(),
			})
		case PathSolverError:
			results.FailedPaths = append(results.FailedPaths, FailedPath{
				PathID:     result.Path.ID,
				Outcome:    result.Path.Outcome.Label,
				Condition:  result.Condition.String(),
				Backend:    result.Err.Backend,
				Timeout:    result.Err.Timeout,
				Diagnostic: result.Err.Diagnostic,
				Error:      result.Err.Error(),
			})
		}
	}
	flagDuplicates(results.TestCases)
	results.Duration = time.Since(start)
	return results
}

// solvePath decides the condition of a single path.
func (s *Synthesizer) solvePath(ctx context.Context, path *types.Path, domain []expr.Expr) *PathResult {
	condition := paths.BuildCondition(path)
	result := &PathResult{Path: path, Condition: condition}

	solved, err := s.adapter.Solve(ctx, condition, domain, s.params)
	if err != nil {
		var solverErr *solver.SolverError
		if !errors.As(err, &solverErr) {
			solverErr = &solver.SolverError{
				PathID:    path.ID,
				Condition: condition.String(),
				Backend:   s.adapter.Oracle().Name(),
				Cause:     err,
			}
		}
		result.Status = PathSolverError
		result.Err = solverErr
		result.Elapsed = solverErr.Elapsed
		return result
	}

	result.Elapsed = solved.Elapsed
	if solved.Status == solver.Unsatisfiable {
		result.Status = PathUnsatisfiable
		return result
	}
	result.Status = PathSatisfiable
	result.TestCase = s.newTestCase(condition, solved.Assignment)
	return result
}

// newTestCase builds the test case exercising a path from a satisfying assignment. Outcomes returning a modelled
// value record the value the target is expected to return.
func (s *Synthesizer) newTestCase(condition *types.PathCondition, assignment expr.Assignment) *types.TestCase {
	outcome := condition.Path.Outcome
	testCase := &types.TestCase{
		PathID:    condition.Path.ID,
		Inputs:    make([]types.InputValue, len(s.params)),
		Outcome:   outcome.Label,
		Condition: condition.String(),
	}
	for i, param := range s.params {
		testCase.Inputs[i] = types.InputValue{Name: param.Name, Value: assignment[param.Name]}
	}

	if outcome.Value != nil {
		value, err := expr.Eval(outcome.Value, assignment)
		if err != nil {
			s.logger.Debug("Could not evaluate the return value of path #", condition.Path.ID, err)
		} else {
			testCase.Expected = &value
		}
	}
	return testCase
}

// flagDuplicates records, for every test case, the paths of the other test cases with the same input tuple.
func flagDuplicates(testCases []*types.TestCase) {
	_, groups := utils.SliceGroupBy(testCases, func(tc *types.TestCase) string {
		return utils.HashParts(tc.InputTuple())
	})
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		for _, testCase := range group {
			testCase.DuplicateOf = make([]int, 0, len(group)-1)
			for _, other := range group {
				if other != testCase {
					testCase.DuplicateOf = append(testCase.DuplicateOf, other.PathID)
				}
			}
		}
	}
}

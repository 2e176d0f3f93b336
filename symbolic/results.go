package symbolic

import (
	"time"

	"github.com/crytic/symgen/symbolic/replay"
	"github.com/crytic/symgen/symbolic/solver"
	"github.com/crytic/symgen/symbolic/syntax"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/crytic/symgen/utils"
	"github.com/google/uuid"
)

// PathStatus describes what became of a single path during synthesis.
type PathStatus string

const (
	// PathSatisfiable indicates the path condition was satisfied and a test case was emitted for the path.
	PathSatisfiable PathStatus = "SATISFIABLE"
	// PathUnsatisfiable indicates the path is dead: no input reaches it.
	PathUnsatisfiable PathStatus = "UNSATISFIABLE"
	// PathSolverError indicates the oracle failed to decide the path condition.
	PathSolverError PathStatus = "SOLVER_ERROR"
)

// PathResult describes the outcome of solving a single path.
type PathResult struct {
	// Path is the path which was solved.
	Path *types.Path

	// Condition is the path condition submitted to the oracle.
	Condition *types.PathCondition

	// Status describes the verdict on the path.
	Status PathStatus

	// TestCase is the test case emitted for the path if Status is PathSatisfiable.
	TestCase *types.TestCase

	// Err is the oracle failure if Status is PathSolverError.
	Err *solver.SolverError

	// Elapsed is the time spent solving the path.
	Elapsed time.Duration
}

// DeadPath describes a path whose condition is unsatisfiable.
type DeadPath struct {
	// PathID is the identifier of the path.
	PathID int `json:"pathId" yaml:"pathId" cbor:"pathId"`

	// Outcome is the label of the unreachable outcome.
	Outcome string `json:"outcome" yaml:"outcome" cbor:"outcome"`

	// Condition is the textual form of the path condition.
	Condition string `json:"condition" yaml:"condition" cbor:"condition"`
}

// FailedPath describes a path whose condition could not be decided.
type FailedPath struct {
	// PathID is the identifier of the path.
	PathID int `json:"pathId" yaml:"pathId" cbor:"pathId"`

	// Outcome is the label of the outcome the path leads to.
	Outcome string `json:"outcome" yaml:"outcome" cbor:"outcome"`

	// Condition is the textual form of the path condition.
	Condition string `json:"condition" yaml:"condition" cbor:"condition"`

	// Backend is the name of the oracle which failed.
	Backend string `json:"backend" yaml:"backend" cbor:"backend"`

	// Timeout indicates whether the solver timed out.
	Timeout bool `json:"timeout" yaml:"timeout" cbor:"timeout"`

	// Diagnostic holds the oracle's own explanation, if any.
	Diagnostic string `json:"diagnostic,omitempty" yaml:"diagnostic,omitempty" cbor:"diagnostic,omitempty"`

	// Error is the full error message.
	Error string `json:"error" yaml:"error" cbor:"error"`
}

// Results describes the results of a generation run.
type Results struct {
	// RunID uniquely identifies the run.
	RunID uuid.UUID

	// Function is the parsed target function. It is nil for results produced by a Synthesizer alone.
	Function *syntax.Function

	// Params are the inputs of the target function, in declaration order.
	Params []syntax.Param

	// Tree is the branch tree of the target.
	Tree types.Node

	// Paths holds one result per path, in traversal order.
	Paths []*PathResult

	// TestCases holds the test cases emitted for satisfiable paths, in traversal order.
	TestCases []*types.TestCase

	// DeadPaths lists the paths with an unsatisfiable condition, in traversal order.
	DeadPaths []DeadPath

	// FailedPaths lists the paths the oracle failed on, in traversal order.
	FailedPaths []FailedPath

	// Verification holds the outcome of replaying the test cases, or nil if they were not replayed.
	Verification *replay.Summary

	// Duration is the time the run took.
	Duration time.Duration
}

// Counts returns the number of satisfiable, unsatisfiable and failed paths.
func (r *Results) Counts() (satisfiable int, unsatisfiable int, failed int) {
	return len(r.TestCases), len(r.DeadPaths), len(r.FailedPaths)
}

// Duplicates returns the test cases which share their input tuple with the test case of another path.
func (r *Results) Duplicates() []*types.TestCase {
	return utils.SliceWhere(r.TestCases, func(testCase *types.TestCase) bool {
		return testCase.IsDuplicate()
	})
}

// TestCaseForPath returns the test case emitted for the path with the given identifier, or nil if there is none.
func (r *Results) TestCaseForPath(pathID int) *types.TestCase {
	for _, result := range r.Paths {
		if result.Path.ID == pathID {
			return result.TestCase
		}
	}
	return nil
}

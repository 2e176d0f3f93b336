package symbolic

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/crytic/symgen/symbolic/config"
	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/extraction"
	"github.com/crytic/symgen/symbolic/replay"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConfig returns a project configuration targeting a function of the Go testdata targets.
func newTestConfig(function string, constraints ...string) config.ProjectConfig {
	cfg := config.GetDefaultProjectConfig()
	cfg.Target.File = filepath.Join("testdata", "targets.go")
	cfg.Target.Function = function
	cfg.Generation.DomainConstraints = constraints
	cfg.Output.Formats = []string{}
	cfg.Logging.Level = zerolog.ErrorLevel
	return *cfg
}

// runGenerator creates a generator for the provided configuration and runs it to completion.
func runGenerator(t *testing.T, cfg config.ProjectConfig) *Results {
	generator, err := NewGenerator(cfg)
	require.NoError(t, err)
	defer generator.Close()

	results, err := generator.Run(context.Background())
	require.NoError(t, err)
	return results
}

// TestGenerateTriangle verifies that every path of a three-input classifier yields a test case under positivity
// constraints, and that the test cases replay to their recorded outcomes.
func TestGenerateTriangle(t *testing.T) {
	results := runGenerator(t, newTestConfig("Triangle", "a > 0", "b > 0", "c > 0"))

	// Four comparisons over three conditionals
	comparisons := 0
	for _, predicate := range types.Predicates(results.Tree) {
		expr.Inspect(predicate.Expr, func(e expr.Expr) bool {
			if _, ok := e.(*expr.Compare); ok {
				comparisons++
			}
			return true
		})
	}
	assert.EqualValues(t, 4, comparisons)
	assert.EqualValues(t, 4, results.Tree.Leaves())

	require.Len(t, results.Paths, 4)
	require.Len(t, results.TestCases, 4)
	assert.Empty(t, results.DeadPaths)
	assert.Empty(t, results.FailedPaths)
	assert.EqualValues(t, "Triangle", results.Function.Name)
	assert.Len(t, results.Params, 3)

	outcomes := []string{`"equilateral"`, `"isosceles"`, `"isosceles"`, `"scalene"`}
	distinct := 0
	for i, testCase := range results.TestCases {
		assert.EqualValues(t, i+1, testCase.PathID)
		assert.EqualValues(t, outcomes[i], testCase.Outcome)
		assert.NotEmpty(t, testCase.Condition)
		require.Len(t, testCase.Inputs, 3)
		for _, input := range testCase.Inputs {
			assert.Greater(t, input.Value.Int, int64(0), "path #%d input %v", testCase.PathID, input.Name)
		}

		a, b, c := testCase.Inputs[0].Value.Int, testCase.Inputs[1].Value.Int, testCase.Inputs[2].Value.Int
		if a != b && b != c && a != c {
			distinct++
			assert.EqualValues(t, `"scalene"`, testCase.Outcome)
		}
	}
	assert.EqualValues(t, 1, distinct)

	// Both the branch tree and the interpreted source agree with every test case
	require.NotNil(t, results.Verification)
	assert.True(t, results.Verification.Passed(), "%v", results.Verification.Mismatches)
	assert.EqualValues(t, []string{replay.TreeReplayerName, replay.GoReplayerName}, results.Verification.Replayers)
	assert.NotEqual(t, uuid.Nil, results.RunID)
}

// TestGenerateDeadPath verifies that a path with a contradictory condition is reported as dead while its siblings
// still yield test cases.
func TestGenerateDeadPath(t *testing.T) {
	results := runGenerator(t, newTestConfig("Sign"))

	require.Len(t, results.Paths, 3)
	assert.EqualValues(t, PathUnsatisfiable, results.Paths[0].Status)
	assert.EqualValues(t, []DeadPath{{PathID: 1, Outcome: `"unreachable"`, Condition: "(x > 0) && (x < 0)"}}, results.DeadPaths)
	require.Len(t, results.TestCases, 2)
	assert.EqualValues(t, 2, results.TestCases[0].PathID)
	assert.Greater(t, results.TestCases[0].Inputs[0].Value.Int, int64(0))
	assert.EqualValues(t, 3, results.TestCases[1].PathID)
	assert.LessOrEqual(t, results.TestCases[1].Inputs[0].Value.Int, int64(0))
	assert.Nil(t, results.TestCaseForPath(1))
}

// TestGenerateFixedWidthOverflow verifies that arithmetic over fixed-width parameters overflows the way the target
// does, so test cases which rely on wraparound reach their outcome.
func TestGenerateFixedWidthOverflow(t *testing.T) {
	results := runGenerator(t, newTestConfig("Overflow"))
	require.Len(t, results.TestCases, 3)
	assert.Empty(t, results.DeadPaths)
	for _, testCase := range results.TestCases {
		require.Len(t, testCase.Inputs, 2)
		sum := int8(testCase.Inputs[0].Value.Int) + int8(testCase.Inputs[1].Value.Int)
		switch testCase.PathID {
		case 1:
			assert.Greater(t, sum, int8(100), "%v", testCase.Inputs)
		case 2:
			assert.Less(t, sum, int8(-100), "%v", testCase.Inputs)
		default:
			assert.True(t, sum >= -100 && sum <= 100, "%v", testCase.Inputs)
		}
	}
	require.NotNil(t, results.Verification)
	assert.True(t, results.Verification.Passed(), "%v", results.Verification.Mismatches)

	// The first branch is only taken by the value which wraps below zero
	results = runGenerator(t, newTestConfig("Decrement"))
	assert.Empty(t, results.DeadPaths)
	require.Len(t, results.TestCases, 2)
	assert.EqualValues(t, `"wrapped"`, results.TestCases[0].Outcome)
	assert.EqualValues(t, expr.IntValue(0), results.TestCases[0].Inputs[0].Value)
	require.NotNil(t, results.Verification)
	assert.True(t, results.Verification.Passed(), "%v", results.Verification.Mismatches)
}

// TestGenerateUnsupported verifies that a target with a loop aborts the run before any path is enumerated.
func TestGenerateUnsupported(t *testing.T) {
	generator, err := NewGenerator(newTestConfig("Countdown"))
	require.NoError(t, err)
	defer generator.Close()

	started := false
	generator.Events.GenerationStarting.Subscribe(func(event GenerationStartingEvent) error {
		started = true
		return nil
	})
	var finished *GenerationFinishedEvent
	generator.Events.GenerationFinished.Subscribe(func(event GenerationFinishedEvent) error {
		finished = &event
		return nil
	})

	results, err := generator.Run(context.Background())
	assert.Nil(t, results)
	var unsupported *extraction.UnsupportedConstructError
	require.ErrorAs(t, err, &unsupported)
	assert.EqualValues(t, "for statement", unsupported.Kind)
	assert.EqualValues(t, "Countdown", unsupported.Function)
	assert.False(t, started)
	require.NotNil(t, finished)
	assert.Same(t, generator, finished.Generator)
	assert.Error(t, finished.Err)
}

// TestGenerateIdempotent verifies that repeated runs with a deterministic oracle produce the same test cases.
func TestGenerateIdempotent(t *testing.T) {
	cfg := newTestConfig("Triangle", "a > 0", "b > 0", "c > 0")
	first := runGenerator(t, cfg)
	second := runGenerator(t, cfg)
	assert.Empty(t, cmp.Diff(first.TestCases, second.TestCases))
	assert.NotEqual(t, first.RunID, second.RunID)
}

// TestGenerateEvents verifies the events published during a run.
func TestGenerateEvents(t *testing.T) {
	generator, err := NewGenerator(newTestConfig("Sign"))
	require.NoError(t, err)
	defer generator.Close()

	var starting GenerationStartingEvent
	generator.Events.GenerationStarting.Subscribe(func(event GenerationStartingEvent) error {
		starting = event
		return nil
	})
	solved := make(map[int]PathStatus)
	generator.Events.PathSolved.Subscribe(func(event PathSolvedEvent) error {
		solved[event.Result.Path.ID] = event.Result.Status
		return nil
	})

	results, err := generator.Run(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, "Sign", starting.Function)
	assert.EqualValues(t, 3, starting.Paths)
	assert.EqualValues(t, map[int]PathStatus{1: PathUnsatisfiable, 2: PathSatisfiable, 3: PathSatisfiable}, solved)
	assert.Len(t, results.TestCases, 2)
}

// TestGeneratePython verifies the pipeline on a Python target, including values returned by the target and the
// implicit return at the end of the function.
func TestGeneratePython(t *testing.T) {
	cfg := newTestConfig("window", "low < high")
	cfg.Target.File = filepath.Join("testdata", "targets.py")
	results := runGenerator(t, cfg)

	require.Len(t, results.TestCases, 2)
	inRange := results.TestCases[0]
	assert.EqualValues(t, "x - low", inRange.Outcome)
	x, low, high := inRange.Inputs[0].Value.Int, inRange.Inputs[1].Value.Int, inRange.Inputs[2].Value.Int
	assert.True(t, low <= x && x <= high)
	require.NotNil(t, inRange.Expected)
	assert.EqualValues(t, x-low, inRange.Expected.Int)
	assert.EqualValues(t, "None", results.TestCases[1].Outcome)

	require.NotNil(t, results.Verification)
	assert.True(t, results.Verification.Passed())
	assert.EqualValues(t, []string{replay.TreeReplayerName}, results.Verification.Replayers)
}

// TestGenerateWithCache verifies that a second run is answered from the persistent solver cache.
func TestGenerateWithCache(t *testing.T) {
	cfg := newTestConfig("Triangle", "a > 0", "b > 0", "c > 0")
	cfg.Solver.CacheDirectory = t.TempDir()
	cfg.Generation.Verify = false

	for run := 0; run < 2; run++ {
		generator, err := NewGenerator(cfg)
		require.NoError(t, err)
		results, err := generator.Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, results.TestCases, 4)
		assert.Nil(t, results.Verification)

		hits, misses := generator.CacheStats()
		if run == 0 {
			assert.EqualValues(t, 0, hits)
			assert.EqualValues(t, 4, misses)
		} else {
			assert.EqualValues(t, 4, hits)
			assert.EqualValues(t, 0, misses)
		}
		require.NoError(t, generator.Close())
	}
}

// TestGeneratorErrors verifies the errors raised for invalid configurations and targets.
func TestGeneratorErrors(t *testing.T) {
	cfg := newTestConfig("Triangle")
	cfg.Generation.Workers = 0
	_, err := NewGenerator(cfg)
	assert.Error(t, err)

	// Create the list of test cases
	testCases := []struct {
		name   string
		config config.ProjectConfig
	}{
		{name: "malformed constraint", config: newTestConfig("Triangle", "a >")},
		{name: "non-boolean constraint", config: newTestConfig("Triangle", "a + 1")},
		{name: "unknown parameter", config: newTestConfig("Triangle", "d > 0")},
		{name: "missing function", config: newTestConfig("Missing")},
		{name: "missing file", config: func() config.ProjectConfig {
			cfg := newTestConfig("Triangle")
			cfg.Target.File = filepath.Join("testdata", "missing.go")
			return cfg
		}()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			generator, err := NewGenerator(tc.config)
			require.NoError(t, err)
			defer generator.Close()
			_, err = generator.Run(context.Background())
			assert.Error(t, err)
		})
	}
}

package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/crytic/symgen/symbolic/expr"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingOracle answers every query with a fixed result and counts its calls.
type countingOracle struct {
	calls  atomic.Int64
	result *types.OracleResult
	err    error
}

func (c *countingOracle) Name() string {
	return "counting"
}

func (c *countingOracle) Solve(ctx context.Context, query *types.Query) (*types.OracleResult, error) {
	c.calls.Add(1)
	return c.result, c.err
}

func newQuery(bound int64) *types.Query {
	x := expr.NewVar("x", expr.SortInt)
	return &types.Query{Vars: []*expr.Var{x}, Formula: expr.NewCompare(expr.OpGt, x, expr.NewInt(bound))}
}

// TestMemoryCache verifies that decided queries are answered once, and that failures are never stored.
func TestMemoryCache(t *testing.T) {
	inner := &countingOracle{result: &types.OracleResult{Status: types.OracleSat, Model: expr.Assignment{"x": expr.IntValue(1)}}}
	oracle, err := NewOracle(inner, "", "16")
	require.NoError(t, err)
	defer oracle.Close()

	for i := 0; i < 3; i++ {
		result, err := oracle.Solve(context.Background(), newQuery(0))
		require.NoError(t, err)
		assert.EqualValues(t, types.OracleSat, result.Status)
	}
	_, err = oracle.Solve(context.Background(), newQuery(1))
	require.NoError(t, err)
	assert.EqualValues(t, 2, inner.calls.Load())

	hits, misses := oracle.Stats()
	assert.EqualValues(t, 2, hits)
	assert.EqualValues(t, 2, misses)

	// Unknown verdicts and errors are passed through every time
	inner.result = &types.OracleResult{Status: types.OracleUnknown}
	_, err = oracle.Solve(context.Background(), newQuery(2))
	require.NoError(t, err)
	_, err = oracle.Solve(context.Background(), newQuery(2))
	require.NoError(t, err)
	inner.result, inner.err = nil, errors.New("solver crashed")
	_, err = oracle.Solve(context.Background(), newQuery(3))
	assert.Error(t, err)
	_, err = oracle.Solve(context.Background(), newQuery(3))
	assert.Error(t, err)
	assert.EqualValues(t, 6, inner.calls.Load())
}

// TestPersistentCache verifies that results survive reopening the cache, and that the salt separates configurations.
func TestPersistentCache(t *testing.T) {
	directory := t.TempDir()
	inner := &countingOracle{result: &types.OracleResult{Status: types.OracleSat, Model: expr.Assignment{"x": expr.IntValue(-3), "ok": expr.BoolValue(true)}}}

	oracle, err := NewOracleForWidth(inner, directory, 16)
	require.NoError(t, err)
	for i := int64(0); i < 40; i++ {
		_, err = oracle.Solve(context.Background(), newQuery(i))
		require.NoError(t, err)
	}
	require.NoError(t, oracle.Close())
	assert.EqualValues(t, 40, inner.calls.Load())

	// Every result is read back from disk, including those flushed on close
	oracle, err = NewOracleForWidth(inner, directory, 16)
	require.NoError(t, err)
	for i := int64(0); i < 40; i++ {
		result, err := oracle.Solve(context.Background(), newQuery(i))
		require.NoError(t, err)
		assert.EqualValues(t, expr.Assignment{"x": expr.IntValue(-3), "ok": expr.BoolValue(true)}, result.Model)
	}
	require.NoError(t, oracle.Close())
	assert.EqualValues(t, 40, inner.calls.Load())

	// A different integer width misses
	oracle, err = NewOracleForWidth(inner, directory, 8)
	require.NoError(t, err)
	_, err = oracle.Solve(context.Background(), newQuery(0))
	require.NoError(t, err)
	require.NoError(t, oracle.Close())
	assert.EqualValues(t, 41, inner.calls.Load())
}

// TestPersistentCacheRace tests for race conditions between concurrent lookups and writes.
func TestPersistentCacheRace(t *testing.T) {
	inner := &countingOracle{result: &types.OracleResult{Status: types.OracleUnsat}}
	oracle, err := NewOracle(inner, t.TempDir(), "race")
	require.NoError(t, err)

	workers := 8
	queries := 100
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < queries; i++ {
				result, err := oracle.Solve(context.Background(), newQuery(int64(i)))
				assert.NoError(t, err)
				assert.EqualValues(t, types.OracleUnsat, result.Status, fmt.Sprintf("query %d", i))
			}
		}()
	}
	wg.Wait()
	require.NoError(t, oracle.Close())

	hits, misses := oracle.Stats()
	assert.EqualValues(t, workers*queries, hits+misses)
	assert.GreaterOrEqual(t, misses, uint64(queries))
}

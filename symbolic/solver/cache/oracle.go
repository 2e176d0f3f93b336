// Package cache provides an oracle wrapper which memoizes decided queries, in memory and optionally on disk across
// runs.
package cache

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/crytic/symgen/logging"
	"github.com/crytic/symgen/symbolic/types"
	"github.com/crytic/symgen/utils"
	"github.com/pkg/errors"
)

// Oracle is a types.Oracle which answers queries from its store when it can, and from the wrapped oracle otherwise.
// Only sat and unsat verdicts are stored, since errors and unknown verdicts may not recur.
type Oracle struct {
	// inner is the wrapped oracle.
	inner types.Oracle

	// salt distinguishes the keys of oracles configured differently, such as with another integer width.
	salt string

	// store holds the decided queries.
	store resultStore

	// hits and misses count lookups.
	hits   atomic.Uint64
	misses atomic.Uint64

	// logger describes the cache's logger.
	logger *logging.Logger
}

// NewOracle wraps inner in a cache. If directory is empty, results are only kept in memory. The salt must describe any
// configuration of inner which changes its answers, so persisted results are never reused across configurations.
func NewOracle(inner types.Oracle, directory string, salt string) (*Oracle, error) {
	var store resultStore = newMemoryStore()
	if directory != "" {
		persistent, err := newPersistentStore(directory)
		if err != nil {
			return nil, err
		}
		store = persistent
	}
	return &Oracle{
		inner:  inner,
		salt:   salt,
		store:  store,
		logger: logging.GlobalLogger.NewSubLogger("service", logging.SOLVER_SERVICE),
	}, nil
}

// NewOracleForWidth wraps inner in a cache whose keys account for the integer width of the query variables.
func NewOracleForWidth(inner types.Oracle, directory string, intWidth int) (*Oracle, error) {
	return NewOracle(inner, directory, strconv.Itoa(intWidth))
}

// Name returns the name of the wrapped backend.
func (o *Oracle) Name() string {
	return o.inner.Name()
}

// Inner returns the wrapped oracle.
func (o *Oracle) Inner() types.Oracle {
	return o.inner
}

// key returns the store key of a query.
func (o *Oracle) key(query *types.Query) string {
	return utils.HashParts(o.inner.Name(), o.salt, query.String())
}

// Solve returns the stored result of the query, or decides it with the wrapped oracle and stores the verdict.
func (o *Oracle) Solve(ctx context.Context, query *types.Query) (*types.OracleResult, error) {
	key := o.key(query)
	result, err := o.store.get(key)
	if err == nil {
		o.hits.Add(1)
		return result, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		// A broken cache must not prevent solving
		o.logger.Warn("Could not read from the solver cache", err)
	}
	o.misses.Add(1)

	result, err = o.inner.Solve(ctx, query)
	if err != nil {
		return nil, err
	}
	if result.Status == types.OracleSat || result.Status == types.OracleUnsat {
		if err := o.store.put(key, result); err != nil {
			o.logger.Warn("Could not write to the solver cache", err)
		}
	}
	return result, nil
}

// Stats returns the number of lookups answered from the store, and the number passed to the wrapped oracle.
func (o *Oracle) Stats() (hits uint64, misses uint64) {
	return o.hits.Load(), o.misses.Load()
}

// Close flushes pending writes and releases the store.
func (o *Oracle) Close() error {
	return o.store.close()
}

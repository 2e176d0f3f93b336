package cache

import (
	"sync"

	"github.com/crytic/symgen/symbolic/types"
	"github.com/pkg/errors"
)

// ErrCacheMiss is returned when a key is not present in a store.
var ErrCacheMiss = errors.New("not present in cache")

// resultStore describes a key-value store of oracle results.
type resultStore interface {
	// get returns the result stored under key, or ErrCacheMiss.
	get(key string) (*types.OracleResult, error)

	// put stores a result under key.
	put(key string, result *types.OracleResult) error

	// close releases the resources held by the store.
	close() error
}

// memoryStore is a thread-safe resultStore which lives for the duration of the process.
type memoryStore struct {
	mutex   sync.RWMutex
	results map[string]*types.OracleResult
}

func newMemoryStore() *memoryStore {
	return &memoryStore{results: make(map[string]*types.OracleResult)}
}

func (m *memoryStore) get(key string) (*types.OracleResult, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if result, ok := m.results[key]; ok {
		return result, nil
	}
	return nil, ErrCacheMiss
}

func (m *memoryStore) put(key string, result *types.OracleResult) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.results[key] = result
	return nil
}

func (m *memoryStore) close() error {
	return nil
}

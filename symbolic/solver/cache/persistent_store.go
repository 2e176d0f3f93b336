package cache

import (
	"encoding/json"
	"path/filepath"
	"sync"
	"time"

	"github.com/crytic/symgen/symbolic/types"
	"github.com/crytic/symgen/utils"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

// databaseFileName is the name of the database file within the cache directory.
const databaseFileName = "solver-cache.db"

// bucketName is the bbolt bucket holding oracle results.
var bucketName = []byte("results")

// persistentStore is a thread-safe resultStore backed by an in-memory store and a bbolt database. Writes are batched
// and flushed to disk once enough are pending, and on close.
type persistentStore struct {
	memory *memoryStore
	db     *bbolt.DB

	pendingWriteMutex sync.Mutex
	pendingWrites     []pendingWrite
	flushThreshold    int
}

// pendingWrite is a serialized result which has not been flushed to disk yet.
type pendingWrite struct {
	key   []byte
	value []byte
}

// newPersistentStore opens, or creates, the database in the provided directory.
func newPersistentStore(directory string) (*persistentStore, error) {
	if err := utils.MakeDirectory(directory); err != nil {
		return nil, errors.Wrap(err, "could not create the solver cache directory")
	}
	db, err := bbolt.Open(filepath.Join(directory, databaseFileName), 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrap(err, "could not open the solver cache")
	}

	// Create the bucket if it doesn't exist
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, errors.WithStack(err)
	}

	return &persistentStore{
		memory:         newMemoryStore(),
		db:             db,
		pendingWrites:  make([]pendingWrite, 0),
		flushThreshold: 25,
	}, nil
}

func (p *persistentStore) get(key string) (*types.OracleResult, error) {
	result, err := p.memory.get(key)
	if err == nil || !errors.Is(err, ErrCacheMiss) {
		return result, err
	}

	// Check the database
	var data []byte
	err = p.db.View(func(tx *bbolt.Tx) error {
		if stored := tx.Bucket(bucketName).Get([]byte(key)); stored != nil {
			data = append([]byte(nil), stored...)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not read from the solver cache")
	}
	if data == nil {
		return nil, ErrCacheMiss
	}

	result = &types.OracleResult{}
	if err = json.Unmarshal(data, result); err != nil {
		return nil, errors.Wrap(err, "could not decode a solver cache entry")
	}
	return result, p.memory.put(key, result)
}

func (p *persistentStore) put(key string, result *types.OracleResult) error {
	if err := p.memory.put(key, result); err != nil {
		return err
	}
	serialized, err := json.Marshal(result)
	if err != nil {
		return errors.WithStack(err)
	}

	p.pendingWriteMutex.Lock()
	defer p.pendingWriteMutex.Unlock()
	p.pendingWrites = append(p.pendingWrites, pendingWrite{key: []byte(key), value: serialized})
	if len(p.pendingWrites) >= p.flushThreshold {
		return p.flushWrites()
	}
	return nil
}

// flushWrites writes every pending write to the database. The caller must hold pendingWriteMutex.
func (p *persistentStore) flushWrites() error {
	if len(p.pendingWrites) == 0 {
		return nil
	}
	err := p.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		for _, pw := range p.pendingWrites {
			if err := bucket.Put(pw.key, pw.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "could not write to the solver cache")
	}
	p.pendingWrites = p.pendingWrites[:0]
	return nil
}

func (p *persistentStore) close() error {
	p.pendingWriteMutex.Lock()
	err := p.flushWrites()
	p.pendingWriteMutex.Unlock()
	if err != nil {
		_ = p.db.Close()
		return err
	}
	return errors.WithStack(p.db.Close())
}

package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/poiesic/scholarmatch/core"
	"github.com/poiesic/scholarmatch/storage"
)

// vectorCache implements storage.VectorCache on a Backend.
type vectorCache struct {
	backend     *Backend
	ownsBackend bool
	logger      *slog.Logger
}

var _ storage.VectorCache = (*vectorCache)(nil)

// NewVectorCache creates a cache over an existing backend.
// Closing the cache does not close the backend.
func NewVectorCache(backend *Backend) (storage.VectorCache, error) {
	return newVectorCache(backend, false)
}

// OpenVectorCache opens (or creates) a persistent cache in dir.
// Closing the cache closes the underlying database.
func OpenVectorCache(dir string) (storage.VectorCache, error) {
	backend, err := OpenBackend(dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector cache: %w", err)
	}
	return newVectorCache(backend, true)
}

func newVectorCache(backend *Backend, owns bool) (*vectorCache, error) {
	if backend == nil {
		return nil, errors.New("backend cannot be nil")
	}
	return &vectorCache{
		backend:     backend,
		ownsBackend: owns,
		logger:      slog.Default().With("component", "vector-cache"),
	}, nil
}

func (c *vectorCache) checkOpen() error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return nil
}

// Get implements storage.VectorCache.
func (c *vectorCache) Get(ctx context.Context, key core.ID) ([]float32, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	var vector []float32
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeVectorKey(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			vector, err = storage.UnmarshalVector(val)
			return err
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return vector, nil
}

// GetMany implements storage.VectorCache.
func (c *vectorCache) GetMany(ctx context.Context, keys []core.ID) (map[core.ID][]float32, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	found := make(map[core.ID][]float32, len(keys))
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := tx.Get(makeVectorKey(key))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				vector, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				found[key] = vector
				return nil
			})
			if err != nil {
				// A corrupt entry is treated as a miss and rewritten later.
				c.logger.Warn("discarding unreadable cache entry", "key", key, "error", err)
				delete(found, key)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return found, nil
}

// PutMany implements storage.VectorCache.
func (c *vectorCache) PutMany(ctx context.Context, vectors map[core.ID][]float32) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	if len(vectors) == 0 {
		return nil
	}
	return c.backend.Update(func(wb *badger.WriteBatch) error {
		for key, vector := range vectors {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := wb.Set(makeVectorKey(key), storage.MarshalVector(vector)); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count implements storage.VectorCache.
func (c *vectorCache) Count(ctx context.Context) (int, error) {
	if err := c.checkOpen(); err != nil {
		return 0, err
	}
	count := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(vectorPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Close implements storage.VectorCache.
func (c *vectorCache) Close() error {
	if c.ownsBackend && !c.backend.IsClosed() {
		return c.backend.Close()
	}
	return nil
}

package storage

import (
	"context"

	"github.com/poiesic/scholarmatch/core"
)

// VectorCache stores embedding vectors keyed by content hash.
// Implementations must be thread-safe and support concurrent access.
type VectorCache interface {
	// Get returns the vector stored under key, or ErrNotFound.
	Get(ctx context.Context, key core.ID) ([]float32, error)

	// GetMany returns the vectors found for keys. Missing keys are absent
	// from the result and are not an error.
	GetMany(ctx context.Context, keys []core.ID) (map[core.ID][]float32, error)

	// PutMany stores vectors, replacing existing entries.
	PutMany(ctx context.Context, vectors map[core.ID][]float32) error

	// Count returns the number of cached vectors.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the cache.
	Close() error
}

// CacheKey derives the cache key for text embedded with model.
func CacheKey(model, text string) core.ID {
	return core.IDFromContent(model + "\x00" + text)
}

package index

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/poiesic/scholarmatch/ai"
	"github.com/poiesic/scholarmatch/core"
	"github.com/poiesic/scholarmatch/storage"
)

const (
	// DefaultBatchSize is the number of passages sent per embedding call.
	DefaultBatchSize = 64
	// DefaultPoolSize is the number of embedding calls in flight.
	DefaultPoolSize = 1
)

// Index pairs every passage with its unit-length embedding.
type Index struct {
	embedder ai.Embedder
	passages []core.Passage
	vectors  [][]float32
	logger   *slog.Logger
}

type buildConfig struct {
	batchSize  int
	poolSize   int
	cache      storage.VectorCache
	cacheModel string
	logger     *slog.Logger
}

// Option configures Build.
type Option func(*buildConfig) error

// WithBatchSize sets how many passages are embedded per backend call.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(c *buildConfig) error {
		if size < 1 {
			return fmt.Errorf("batch size must be greater than 0, got %d", size)
		}
		c.batchSize = size
		return nil
	}
}

// WithPoolSize sets how many batches are embedded concurrently.
// Default is DefaultPoolSize.
func WithPoolSize(size int) Option {
	return func(c *buildConfig) error {
		if size < 1 {
			size = 1
		}
		c.poolSize = size
		return nil
	}
}

// WithCache reuses vectors stored under model in cache and stores new ones.
// model must identify the embedding model, since vectors from different
// models are not comparable.
func WithCache(cache storage.VectorCache, model string) Option {
	return func(c *buildConfig) error {
		c.cache = cache
		c.cacheModel = model
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *buildConfig) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// Build embeds passages and returns a ready Index.
// Any embedding failure aborts the build; no partial index is returned.
func Build(ctx context.Context, embedder ai.Embedder, passages []core.Passage, opts ...Option) (*Index, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if len(passages) == 0 {
		return nil, ErrNoPassages
	}

	cfg := &buildConfig{
		batchSize: DefaultBatchSize,
		poolSize:  DefaultPoolSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	logger := cfg.logger.With("component", "index")
	start := time.Now()

	vectors := make([][]float32, len(passages))
	var keys []core.ID
	if cfg.cache != nil {
		keys = make([]core.ID, len(passages))
		for i, p := range passages {
			keys[i] = storage.CacheKey(cfg.cacheModel, p.Text)
		}
		hits, err := cfg.cache.GetMany(ctx, keys)
		if err != nil {
			logger.Warn("vector cache unavailable, embedding everything", "error", err)
		}
		for i, key := range keys {
			if v, ok := hits[key]; ok {
				vectors[i] = v
			}
		}
	}

	var missing []int
	for i := range passages {
		if vectors[i] == nil {
			missing = append(missing, i)
		}
	}
	logger.Info("building index",
		"passages", len(passages),
		"cached", len(passages)-len(missing),
		"to_embed", len(missing))

	if err := embedMissing(ctx, embedder, passages, missing, vectors, cfg, logger); err != nil {
		return nil, err
	}

	dims := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dims {
			return nil, fmt.Errorf("%w: passage %d has %d dimensions, expected %d", ErrEmbeddingMismatch, i, len(v), dims)
		}
	}

	if cfg.cache != nil && len(missing) > 0 {
		fresh := make(map[core.ID][]float32, len(missing))
		for _, i := range missing {
			fresh[keys[i]] = vectors[i]
		}
		if err := cfg.cache.PutMany(ctx, fresh); err != nil {
			logger.Warn("failed to update vector cache", "error", err)
		}
	}

	logger.Info("index built", "passages", len(passages), "dimensions", dims, "duration", time.Since(start))
	return &Index{
		embedder: embedder,
		passages: passages,
		vectors:  vectors,
		logger:   logger,
	}, nil
}

// embedMissing embeds the passages at the given positions in batches and
// writes normalised vectors into place. Each batch owns distinct positions,
// so results land in passage order regardless of completion order.
func embedMissing(ctx context.Context, embedder ai.Embedder, passages []core.Passage, missing []int,
	vectors [][]float32, cfg *buildConfig, logger *slog.Logger) error {
	if len(missing) == 0 {
		return nil
	}

	pool, err := ants.NewPool(cfg.poolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for start := 0; start < len(missing); start += cfg.batchSize {
		batch := missing[start:min(start+cfg.batchSize, len(missing))]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}

			texts := make([]string, len(batch))
			for j, idx := range batch {
				texts[j] = passages[idx].Text
			}
			embedded, err := embedder.EmbedTexts(ctx, texts)
			if err != nil {
				fail(fmt.Errorf("failed to embed passages: %w", err))
				return
			}
			if len(embedded) != len(batch) {
				fail(fmt.Errorf("%w: got %d vectors for %d passages", ErrEmbeddingMismatch, len(embedded), len(batch)))
				return
			}
			for j, idx := range batch {
				vectors[idx] = NormalizeVector(embedded[j])
			}
			logger.Debug("embedded batch", "size", len(batch))
		})
		if submitErr != nil {
			wg.Done()
			fail(submitErr)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return parent.Err()
}

// Query returns the k passages most similar to text, most similar first.
// Ties keep passage order. k larger than the index returns every passage.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]core.ScoredPassage, error) {
	if k <= 0 {
		return nil, nil
	}

	vector, err := ix.embedder.EmbedText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	vector = NormalizeVector(vector)

	results := make([]core.ScoredPassage, len(ix.passages))
	for i, p := range ix.passages {
		results[i] = core.ScoredPassage{Passage: p, Score: dotProduct(vector, ix.vectors[i])}
	}

	slices.SortStableFunc(results, func(a, b core.ScoredPassage) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > k {
		results = results[:k]
	}

	ix.logger.Debug("query", "k", k, "results", len(results))
	return results, nil
}

// Len returns the number of indexed passages.
func (ix *Index) Len() int {
	return len(ix.passages)
}

// Passages returns the indexed passages in order.
func (ix *Index) Passages() []core.Passage {
	return ix.passages
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package scholarmatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/scholarmatch/ai"
	"github.com/poiesic/scholarmatch/ai/openai"
	"github.com/poiesic/scholarmatch/core"
	"github.com/poiesic/scholarmatch/index"
	"github.com/poiesic/scholarmatch/profile"
	"github.com/poiesic/scholarmatch/roster"
	"github.com/poiesic/scholarmatch/search"
	"github.com/poiesic/scholarmatch/snapshot"
	"github.com/poiesic/scholarmatch/storage"
	"github.com/poiesic/scholarmatch/storage/badger"
)

// Engine holds everything built at startup: profiles, the passage index,
// the searcher and the relevance filter. It is built once and shared by
// every query.
type Engine struct {
	roster        *roster.Roster
	store         *profile.Store
	index         *index.Index
	searcher      *search.Searcher
	filter        *search.Filter
	provider      ai.AIProvider
	ownsProvider  bool
	cache         storage.VectorCache
	minQueryWords int
	logger        *slog.Logger
}

// Option configures an Engine.
type Option func(*engineOptions) error

type engineOptions struct {
	provider      ai.AIProvider
	aiConfig      *ai.Config
	cacheDir      string
	joinPolicy    profile.JoinPolicy
	minQueryWords int
	monitor       search.SearchMonitor
	builderOpts   []profile.Option
	indexOpts     []index.Option
	searchOpts    []search.Option
	logger        *slog.Logger
}

// WithProvider supplies the AI backend. The caller keeps ownership and
// Close does not close it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *engineOptions) error {
		o.provider = provider
		return nil
	}
}

// WithAIConfig sets the configuration used to open an OpenAI-compatible
// provider when none is supplied with WithProvider. Its embedding model
// also namespaces the vector cache.
// Default is ai.DefaultConfig().
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *engineOptions) error {
		if cfg == nil {
			return errors.New("ai config cannot be nil")
		}
		o.aiConfig = cfg
		return nil
	}
}

// WithCacheDir enables the on-disk embedding cache in dir.
func WithCacheDir(dir string) Option {
	return func(o *engineOptions) error {
		o.cacheDir = dir
		return nil
	}
}

// WithJoinPolicy sets how roster rows find their merged record.
// Default is profile.DefaultJoinPolicy().
func WithJoinPolicy(policy profile.JoinPolicy) Option {
	return func(o *engineOptions) error {
		o.joinPolicy = policy
		return nil
	}
}

// WithMinQueryWords sets the query word-count gate used by Ask.
// Default is core.DefaultMinQueryWords.
func WithMinQueryWords(n int) Option {
	return func(o *engineOptions) error {
		if n < 0 {
			return fmt.Errorf("minimum query words must not be negative, got %d", n)
		}
		o.minQueryWords = n
		return nil
	}
}

// WithMonitor sets a monitor notified by both the searcher and the filter.
func WithMonitor(monitor search.SearchMonitor) Option {
	return func(o *engineOptions) error {
		o.monitor = monitor
		return nil
	}
}

// WithBuilderOptions passes options through to the profile builder.
func WithBuilderOptions(opts ...profile.Option) Option {
	return func(o *engineOptions) error {
		o.builderOpts = append(o.builderOpts, opts...)
		return nil
	}
}

// WithIndexOptions passes options through to the index build.
func WithIndexOptions(opts ...index.Option) Option {
	return func(o *engineOptions) error {
		o.indexOpts = append(o.indexOpts, opts...)
		return nil
	}
}

// WithSearchOptions passes options through to the searcher.
func WithSearchOptions(opts ...search.Option) Option {
	return func(o *engineOptions) error {
		o.searchOpts = append(o.searchOpts, opts...)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *engineOptions) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewEngine loads the merged snapshot and the roster, builds profiles and
// the passage index, and prepares the searcher and filter. Any failure is
// fatal; no partially built engine is returned.
func NewEngine(ctx context.Context, snapshotPath, rosterPath string, opts ...Option) (*Engine, error) {
	options := &engineOptions{
		aiConfig:      ai.DefaultConfig(),
		minQueryWords: core.DefaultMinQueryWords,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(options); err != nil {
			return nil, err
		}
	}
	logger := options.logger.With("component", "engine")

	records, err := snapshot.Load(snapshotPath)
	if err != nil {
		return nil, err
	}
	people, err := roster.Load(rosterPath)
	if err != nil {
		return nil, err
	}
	logger.Info("inputs loaded", "records", len(records), "people", people.Len())

	builderOpts := []profile.Option{profile.WithLogger(options.logger)}
	if options.joinPolicy != nil {
		builderOpts = append(builderOpts, profile.WithJoinPolicy(options.joinPolicy))
	}
	builder, err := profile.NewBuilder(append(builderOpts, options.builderOpts...)...)
	if err != nil {
		return nil, err
	}
	store, err := builder.Build(people.People, records)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		roster:        people,
		store:         store,
		provider:      options.provider,
		minQueryWords: options.minQueryWords,
		logger:        logger,
	}
	if e.provider == nil {
		provider, err := openai.NewProvider(options.aiConfig)
		if err != nil {
			return nil, err
		}
		e.provider = provider
		e.ownsProvider = true
	}

	indexOpts := []index.Option{index.WithLogger(options.logger)}
	if options.aiConfig.EmbeddingBatchSize > 0 {
		indexOpts = append(indexOpts, index.WithBatchSize(options.aiConfig.EmbeddingBatchSize))
	}
	if options.cacheDir != "" {
		cache, err := badger.OpenVectorCache(options.cacheDir)
		if err != nil {
			e.Close()
			return nil, err
		}
		e.cache = cache
		indexOpts = append(indexOpts, index.WithCache(cache, options.aiConfig.EmbeddingModel))
	}

	e.index, err = index.Build(ctx, e.provider.Embedder(), store.Passages, append(indexOpts, options.indexOpts...)...)
	if err != nil {
		e.Close()
		return nil, err
	}

	searchOpts := []search.Option{search.WithLogger(options.logger)}
	filterOpts := []search.FilterOption{search.WithFilterLogger(options.logger)}
	if options.monitor != nil {
		searchOpts = append(searchOpts, search.WithMonitor(options.monitor))
		filterOpts = append(filterOpts, search.WithFilterMonitor(options.monitor))
	}
	if e.searcher, err = search.NewSearcher(e.index, e.provider, append(searchOpts, options.searchOpts...)...); err != nil {
		e.Close()
		return nil, err
	}
	if e.filter, err = search.NewFilter(e.provider, filterOpts...); err != nil {
		e.Close()
		return nil, err
	}

	logger.Info("engine ready", "profiles", len(store.Profiles), "passages", len(store.Passages))
	return e, nil
}

// Ask validates query, searches and filters the report.
// Validation failures wrap core.ErrEmptyQuery or core.ErrQueryTooShort and
// leave the engine usable.
func (e *Engine) Ask(ctx context.Context, query string) (*core.Report, error) {
	if err := core.ValidateQuery(query, e.minQueryWords); err != nil {
		return nil, err
	}
	report, err := e.searcher.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return e.filter.Apply(ctx, query, report)
}

// Searcher returns the shared searcher.
func (e *Engine) Searcher() *search.Searcher {
	return e.searcher
}

// Filter returns the shared relevance filter.
func (e *Engine) Filter() *search.Filter {
	return e.filter
}

// Profiles returns the profiles the index was built from.
func (e *Engine) Profiles() []core.Profile {
	return e.store.Profiles
}

// Passages returns every indexed passage.
func (e *Engine) Passages() []core.Passage {
	return e.store.Passages
}

// Roster returns the loaded roster.
func (e *Engine) Roster() *roster.Roster {
	return e.roster
}

// Close releases the vector cache and any provider the engine opened.
func (e *Engine) Close() error {
	var errs []error
	if e.cache != nil {
		if err := e.cache.Close(); err != nil {
			e.logger.Error("error closing vector cache", "err", err)
			errs = append(errs, err)
		}
	}
	if e.ownsProvider && e.provider != nil {
		if err := e.provider.Close(); err != nil {
			e.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

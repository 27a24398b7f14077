// Package config loads pipeline defaults from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/poiesic/scholarmatch/ai"
	"github.com/poiesic/scholarmatch/core"
	"github.com/poiesic/scholarmatch/identity"
	"github.com/poiesic/scholarmatch/index"
	"github.com/poiesic/scholarmatch/profile"
	"github.com/poiesic/scholarmatch/scrape"
	"github.com/poiesic/scholarmatch/search"
)

// AIConfig selects the OpenAI-compatible backend.
type AIConfig struct {
	Host               string `yaml:"host"`
	EmbeddingModel     string `yaml:"embedding_model"`
	ChatModel          string `yaml:"chat_model"`
	APIKeyEnv          string `yaml:"api_key_env"`
	EmbeddingBatchSize int    `yaml:"embedding_batch_size"`
}

// IdentityConfig selects how names from different sources are matched.
type IdentityConfig struct {
	KeyStrategy string `yaml:"key_strategy"`
	JoinPolicy  string `yaml:"join_policy"`
}

// IndexConfig controls chunking and embedding.
type IndexConfig struct {
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	PoolSize     int    `yaml:"pool_size"`
	CacheDir     string `yaml:"cache_dir"`
}

// SearchConfig controls retrieval and reporting.
type SearchConfig struct {
	TopK          int `yaml:"top_k"`
	MaxPeople     int `yaml:"max_people"`
	SnippetLimit  int `yaml:"snippet_limit"`
	MinQueryWords int `yaml:"min_query_words"`
}

// ScrapeConfig controls the page fetcher.
type ScrapeConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	MaxAttempts       int     `yaml:"max_attempts"`
	UserAgent         string  `yaml:"user_agent"`
}

// AppConfig is the root configuration structure.
type AppConfig struct {
	AI       AIConfig       `yaml:"ai"`
	Identity IdentityConfig `yaml:"identity"`
	Index    IndexConfig    `yaml:"index"`
	Search   SearchConfig   `yaml:"search"`
	Scrape   ScrapeConfig   `yaml:"scrape"`
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	aiDefaults := ai.DefaultConfig()
	return &AppConfig{
		AI: AIConfig{
			Host:               aiDefaults.ChatHost,
			EmbeddingModel:     aiDefaults.EmbeddingModel,
			ChatModel:          aiDefaults.ChatModel,
			APIKeyEnv:          ai.APIKeyEnv,
			EmbeddingBatchSize: aiDefaults.EmbeddingBatchSize,
		},
		Identity: IdentityConfig{
			KeyStrategy: identity.StrategyFirstTwoTokens,
			JoinPolicy:  profile.JoinDefault,
		},
		Index: IndexConfig{
			ChunkSize:    profile.DefaultChunkSize,
			ChunkOverlap: profile.DefaultChunkOverlap,
			PoolSize:     index.DefaultPoolSize,
		},
		Search: SearchConfig{
			TopK:          search.DefaultTopK,
			MaxPeople:     search.DefaultMaxPeople,
			SnippetLimit:  search.DefaultSnippetLimit,
			MinQueryWords: core.DefaultMinQueryWords,
		},
		Scrape: ScrapeConfig{
			RequestsPerSecond: scrape.DefaultRequestsPerSecond,
			TimeoutSecs:       int(scrape.DefaultTimeout / time.Second),
			MaxAttempts:       scrape.DefaultMaxAttempts,
		},
	}
}

// Load reads the config at path on top of the defaults. Fields absent from
// the file keep their default values. An empty path or a missing file
// yields the defaults.
func Load(path string) (*AppConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks that every value is usable.
func (c *AppConfig) Validate() error {
	if _, err := identity.StrategyByName(c.Identity.KeyStrategy); err != nil {
		return err
	}
	if _, err := profile.JoinPolicyByName(c.Identity.JoinPolicy, identity.FirstTwoTokens{}); err != nil {
		return err
	}
	if c.Index.ChunkSize < 1 {
		return fmt.Errorf("index.chunk_size must be greater than 0, got %d", c.Index.ChunkSize)
	}
	if c.Index.ChunkOverlap < 0 || c.Index.ChunkOverlap >= c.Index.ChunkSize {
		return fmt.Errorf("index.chunk_overlap must be in [0, chunk_size), got %d", c.Index.ChunkOverlap)
	}
	if c.Index.PoolSize < 1 {
		return fmt.Errorf("index.pool_size must be greater than 0, got %d", c.Index.PoolSize)
	}
	if c.Search.TopK < 1 || c.Search.MaxPeople < 1 || c.Search.SnippetLimit < 1 {
		return errors.New("search.top_k, search.max_people and search.snippet_limit must be greater than 0")
	}
	if c.Search.MinQueryWords < 0 {
		return fmt.Errorf("search.min_query_words must not be negative, got %d", c.Search.MinQueryWords)
	}
	if c.Scrape.RequestsPerSecond <= 0 {
		return fmt.Errorf("scrape.requests_per_second must be positive, got %g", c.Scrape.RequestsPerSecond)
	}
	if c.Scrape.TimeoutSecs < 1 {
		return fmt.Errorf("scrape.timeout_secs must be greater than 0, got %d", c.Scrape.TimeoutSecs)
	}
	if c.Scrape.MaxAttempts < 1 {
		return fmt.Errorf("scrape.max_attempts must be greater than 0, got %d", c.Scrape.MaxAttempts)
	}
	return nil
}

// KeyStrategy resolves the configured name normalizer.
func (c *AppConfig) KeyStrategy() (identity.KeyStrategy, error) {
	return identity.StrategyByName(c.Identity.KeyStrategy)
}

// JoinPolicy resolves the configured join policy using the configured
// key strategy.
func (c *AppConfig) JoinPolicy() (profile.JoinPolicy, error) {
	strategy, err := c.KeyStrategy()
	if err != nil {
		return nil, err
	}
	return profile.JoinPolicyByName(c.Identity.JoinPolicy, strategy)
}

// AIOptions converts the AI section into ai.Config options. The API key
// is read from the configured environment variable.
func (c *AppConfig) AIOptions() []ai.ConfigOption {
	opts := []ai.ConfigOption{}
	if c.AI.Host != "" {
		opts = append(opts, ai.WithHost(c.AI.Host))
	}
	if c.AI.EmbeddingModel != "" {
		opts = append(opts, ai.WithEmbeddingModel(c.AI.EmbeddingModel))
	}
	if c.AI.ChatModel != "" {
		opts = append(opts, ai.WithChatModel(c.AI.ChatModel))
	}
	if c.AI.EmbeddingBatchSize > 0 {
		opts = append(opts, ai.WithEmbeddingBatchSize(c.AI.EmbeddingBatchSize))
	}
	if c.AI.APIKeyEnv != "" {
		if key := os.Getenv(c.AI.APIKeyEnv); key != "" {
			opts = append(opts, ai.WithAPIKey(key))
		}
	}
	return opts
}

// FetcherOptions converts the scrape section into fetcher options.
func (c *AppConfig) FetcherOptions() []scrape.FetcherOption {
	opts := []scrape.FetcherOption{
		scrape.WithRateLimit(rate.Limit(c.Scrape.RequestsPerSecond), 1),
		scrape.WithTimeout(time.Duration(c.Scrape.TimeoutSecs) * time.Second),
		scrape.WithRetry(c.Scrape.MaxAttempts, scrape.DefaultBaseDelay),
	}
	if c.Scrape.UserAgent != "" {
		opts = append(opts, scrape.WithUserAgent(c.Scrape.UserAgent))
	}
	return opts
}

// SearchOptions converts the search section into searcher options.
func (c *AppConfig) SearchOptions() []search.Option {
	return []search.Option{
		search.WithTopK(c.Search.TopK),
		search.WithMaxPeople(c.Search.MaxPeople),
		search.WithSnippetLimit(c.Search.SnippetLimit),
	}
}

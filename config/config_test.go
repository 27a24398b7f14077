package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/scholarmatch/ai"
	"github.com/poiesic/scholarmatch/identity"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://api.openai.com/v1", cfg.AI.Host)
	assert.Equal(t, identity.StrategyFirstTwoTokens, cfg.Identity.KeyStrategy)
	assert.Equal(t, 1000, cfg.Index.ChunkSize)
	assert.Equal(t, 200, cfg.Index.ChunkOverlap)
	assert.Equal(t, 10, cfg.Search.TopK)
	assert.Equal(t, 10, cfg.Search.MaxPeople)
	assert.Equal(t, 8290, cfg.Search.SnippetLimit)
	assert.Equal(t, 20, cfg.Search.MinQueryWords)
	assert.Equal(t, 2.0, cfg.Scrape.RequestsPerSecond)
	assert.Equal(t, 10, cfg.Scrape.TimeoutSecs)
	assert.Equal(t, 4, cfg.Scrape.MaxAttempts)
}

func TestLoad(t *testing.T) {
	t.Run("empty path yields defaults", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("partial file keeps other defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		data := "identity:\n  key_strategy: skip-initials\nsearch:\n  max_people: 5\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, identity.StrategySkipInitials, cfg.Identity.KeyStrategy)
		assert.Equal(t, 5, cfg.Search.MaxPeople)
		assert.Equal(t, 10, cfg.Search.TopK)
		assert.Equal(t, 1000, cfg.Index.ChunkSize)

		strategy, err := cfg.KeyStrategy()
		require.NoError(t, err)
		assert.Equal(t, "Jane Doe", strategy.DeriveKey("Jane A. Doe"))
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("search: [unclosed"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("invalid values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("identity:\n  key_strategy: soundex\n"), 0o644))
		_, err := Load(path)
		assert.ErrorIs(t, err, identity.ErrUnknownStrategy)
	})
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Index.CacheDir = "/var/cache/scholarmatch"
	cfg.Scrape.UserAgent = "scholarmatch-test"

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*AppConfig){
		"overlap not below size": func(c *AppConfig) { c.Index.ChunkOverlap = c.Index.ChunkSize },
		"zero pool":              func(c *AppConfig) { c.Index.PoolSize = 0 },
		"zero top-k":             func(c *AppConfig) { c.Search.TopK = 0 },
		"zero rate":              func(c *AppConfig) { c.Scrape.RequestsPerSecond = 0 },
		"zero attempts":          func(c *AppConfig) { c.Scrape.MaxAttempts = 0 },
		"unknown join policy":    func(c *AppConfig) { c.Identity.JoinPolicy = "fuzzy" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestAIOptions(t *testing.T) {
	t.Setenv("SCHOLARMATCH_TEST_KEY", "sk-test")

	cfg := Default()
	cfg.AI.Host = "http://localhost:11434"
	cfg.AI.ChatModel = "qwen2.5:3b"
	cfg.AI.APIKeyEnv = "SCHOLARMATCH_TEST_KEY"

	aiCfg := ai.NewConfig(cfg.AIOptions()...)
	require.NoError(t, aiCfg.Validate())
	assert.Equal(t, "http://localhost:11434/v1", aiCfg.ChatHost)
	assert.Equal(t, "qwen2.5:3b", aiCfg.ChatModel)
	assert.Equal(t, "sk-test", aiCfg.APIKey)
}

func TestFetcherAndSearchOptions(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.FetcherOptions(), 3)
	cfg.Scrape.UserAgent = "bot"
	assert.Len(t, cfg.FetcherOptions(), 4)
	assert.Len(t, cfg.SearchOptions(), 3)

	policy, err := cfg.JoinPolicy()
	require.NoError(t, err)
	assert.NotNil(t, policy)
}

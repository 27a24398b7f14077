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


package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/poiesic/scholarmatch/ai"
	"github.com/poiesic/scholarmatch/ai/openai"
	"github.com/poiesic/scholarmatch/config"
)

// newProvider opens the AI backend for the ask command.
var newProvider = func(cfg *ai.Config) (ai.AIProvider, error) {
	return openai.NewProvider(cfg)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "scholarmatch",
		Usage: "Match research queries to faculty profiles built from scraped sources",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file",
				EnvVars: []string{"SCHOLARMATCH_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file (default: ./.env when present)",
			},
			&cli.StringFlag{
				Name:  "api-host",
				Usage: "OpenAI-compatible API host URL",
			},
			&cli.StringFlag{
				Name:    "api-key",
				Usage:   "API key for the AI backend",
				EnvVars: []string{ai.APIKeyEnv},
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Embedding model name",
			},
			&cli.StringFlag{
				Name:  "chat-model",
				Usage: "Chat model name used for explanations and filtering",
			},
		},
		Before: before,
		Commands: []*cli.Command{
			{
				Name:   "extract-cvs",
				Usage:  "Extract the text of every PDF in a directory into a snapshot",
				Action: extractCVsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "dir",
						Aliases:  []string{"d"},
						Usage:    "Directory containing CV PDFs",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output snapshot path",
						Value:   "pdf_texts.json",
					},
				},
			},
			{
				Name:   "scrape-web",
				Usage:  "Fetch every roster person's web pages into a snapshot",
				Action: scrapeWebCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "roster",
						Aliases:  []string{"r"},
						Usage:    "Roster CSV path",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output snapshot path",
						Value:   "webpages.json",
					},
					&cli.StringFlag{
						Name:  "failures",
						Usage: "Where to write URLs that could not be fetched",
						Value: "bad_urls.log",
					},
				},
			},
			{
				Name:   "scrape-scholar",
				Usage:  "Scrape publication profiles linked from the roster into a snapshot",
				Action: scrapeScholarCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "roster",
						Aliases:  []string{"r"},
						Usage:    "Roster CSV path",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output snapshot path",
						Value:   "all_scholars.json",
					},
					&cli.StringFlag{
						Name:  "failures",
						Usage: "Where to write profiles that could not be scraped",
						Value: "bad_scholar_urls.log",
					},
				},
			},
			{
				Name:   "merge",
				Usage:  "Merge source snapshots into one record per person",
				Action: mergeCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "base",
						Aliases:  []string{"b"},
						Usage:    "Base snapshot; its spellings become the names of record",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Additional snapshot as label=path, in merge order (repeatable)",
					},
					&cli.StringFlag{
						Name:     "out",
						Aliases:  []string{"o"},
						Usage:    "Output snapshot path",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "key-strategy",
						Usage: "Name normalizer (first-two-tokens, full-name, skip-initials); overrides the config file",
					},
				},
			},
			{
				Name:   "ask",
				Usage:  "Answer research queries against the merged snapshot",
				Action: askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "snapshot",
						Usage:    "Merged snapshot path",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "roster",
						Aliases:  []string{"r"},
						Usage:    "Roster CSV path",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "cache-dir",
						Usage: "Directory for the embedding cache (overrides the config file)",
					},
					&cli.StringFlag{
						Name:    "query",
						Aliases: []string{"q"},
						Usage:   "Answer a single query instead of reading queries from stdin",
					},
				},
			},
		},
	}
}

// before installs the logger and loads the .env file.
func before(c *cli.Context) error {
	if err := setupLogger(c); err != nil {
		return err
	}
	return loadEnv(c.String("env-file"))
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// loadEnv loads path into the environment without overriding variables
// already set. With no path, ./.env is loaded if it exists.
func loadEnv(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// loadConfig reads the config file and applies the global AI flags on top.
func loadConfig(c *cli.Context) (*config.AppConfig, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	if host := c.String("api-host"); host != "" {
		cfg.AI.Host = host
	}
	if model := c.String("embedding-model"); model != "" {
		cfg.AI.EmbeddingModel = model
	}
	if model := c.String("chat-model"); model != "" {
		cfg.AI.ChatModel = model
	}
	return cfg, nil
}

// aiConfig builds the backend configuration. The --api-key flag wins over
// the environment variable named in the config file.
func aiConfig(c *cli.Context, cfg *config.AppConfig) *ai.Config {
	opts := cfg.AIOptions()
	if key := c.String("api-key"); key != "" {
		opts = append(opts, ai.WithAPIKey(key))
	}
	return ai.NewConfig(opts...)
}

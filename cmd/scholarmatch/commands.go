package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/scholarmatch"
	"github.com/poiesic/scholarmatch/ai"
	"github.com/poiesic/scholarmatch/core"
	"github.com/poiesic/scholarmatch/identity"
	"github.com/poiesic/scholarmatch/index"
	"github.com/poiesic/scholarmatch/pdftext"
	"github.com/poiesic/scholarmatch/profile"
	"github.com/poiesic/scholarmatch/roster"
	"github.com/poiesic/scholarmatch/scrape"
	"github.com/poiesic/scholarmatch/search"
	"github.com/poiesic/scholarmatch/snapshot"
)

// commandContext is canceled on interrupt.
func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt)
}

func extractCVsCommand(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()

	extractor := pdftext.NewExtractor(pdftext.WithLogger(slog.Default()))
	records, failures, err := extractor.ExtractDir(ctx, c.String("dir"))
	if err != nil {
		return err
	}
	if err := snapshot.Save(c.String("out"), records); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "Extracted %d CVs to %s\n", len(records), c.String("out"))
	for _, f := range failures {
		fmt.Fprintf(c.App.Writer, "  failed: %s: %v\n", f.File, f.Err)
	}
	return nil
}

func newFetcher(c *cli.Context) (*scrape.Fetcher, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	opts := append(cfg.FetcherOptions(), scrape.WithFetcherLogger(slog.Default()))
	return scrape.NewFetcher(opts...)
}

func saveFailures(c *cli.Context, failures *scrape.FailureLog) error {
	if failures.Len() == 0 {
		return nil
	}
	if err := failures.Save(c.String("failures")); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%d URLs failed; see %s\n", failures.Len(), c.String("failures"))
	return nil
}

func scrapeWebCommand(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()

	people, err := roster.Load(c.String("roster"))
	if err != nil {
		return err
	}
	fetcher, err := newFetcher(c)
	if err != nil {
		return err
	}

	var failures scrape.FailureLog
	records, err := scrape.WebBatch(ctx, fetcher, people.People, &failures, c.App.ErrWriter)
	if err != nil {
		return err
	}
	if err := snapshot.Save(c.String("out"), records); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Saved web pages for %d people to %s\n", len(records), c.String("out"))
	return saveFailures(c, &failures)
}

func scrapeScholarCommand(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()

	people, err := roster.Load(c.String("roster"))
	if err != nil {
		return err
	}
	fetcher, err := newFetcher(c)
	if err != nil {
		return err
	}

	var failures scrape.FailureLog
	scraper := scrape.NewScholarScraper(fetcher, slog.Default())
	records, err := scrape.ScholarBatch(ctx, scraper, people.People, &failures, c.App.ErrWriter)
	if err != nil {
		return err
	}
	if err := snapshot.Save(c.String("out"), records); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Saved %d publication profiles to %s\n", len(records), c.String("out"))
	return saveFailures(c, &failures)
}

// parseSourceFlag splits "label=path". A bare path is labelled with its
// file name.
func parseSourceFlag(value string) (label, path string) {
	if label, path, ok := strings.Cut(value, "="); ok && label != "" {
		return label, path
	}
	return filepath.Base(value), value
}

func mergeCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	strategyName := cfg.Identity.KeyStrategy
	if c.IsSet("key-strategy") {
		strategyName = c.String("key-strategy")
	}
	strategy, err := identity.StrategyByName(strategyName)
	if err != nil {
		return err
	}

	base, err := snapshot.LoadSource("base", c.String("base"))
	if err != nil {
		return err
	}
	var sources []identity.Source
	for _, value := range c.StringSlice("source") {
		label, path := parseSourceFlag(value)
		src, err := snapshot.LoadSource(label, path)
		if err != nil {
			return err
		}
		sources = append(sources, src)
	}

	acc, err := identity.Merge(strategy, base, sources...)
	if err != nil {
		return err
	}
	if err := snapshot.Save(c.String("out"), acc.Records()); err != nil {
		return err
	}

	for _, count := range acc.Counts() {
		fmt.Fprintf(c.App.Writer, "%-12s %5d entries, %5d appended, %5d new\n",
			count.Label, count.Entries, count.Appended, count.Created)
	}
	fmt.Fprintf(c.App.Writer, "Merged %d people into %s\n", acc.Len(), c.String("out"))
	return nil
}

// newEngine builds the engine and the provider it runs on. The caller
// closes both.
func newEngine(ctx context.Context, c *cli.Context) (*scholarmatch.Engine, ai.AIProvider, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	join, err := cfg.JoinPolicy()
	if err != nil {
		return nil, nil, err
	}

	aiCfg := aiConfig(c, cfg)
	provider, err := newProvider(aiCfg)
	if err != nil {
		return nil, nil, err
	}

	cacheDir := cfg.Index.CacheDir
	if c.IsSet("cache-dir") {
		cacheDir = c.String("cache-dir")
	}

	engine, err := scholarmatch.NewEngine(ctx, c.String("snapshot"), c.String("roster"),
		scholarmatch.WithProvider(provider),
		scholarmatch.WithAIConfig(aiCfg),
		scholarmatch.WithCacheDir(cacheDir),
		scholarmatch.WithJoinPolicy(join),
		scholarmatch.WithMinQueryWords(cfg.Search.MinQueryWords),
		scholarmatch.WithMonitor(search.NewLogMonitor(slog.Default())),
		scholarmatch.WithBuilderOptions(
			profile.WithChunkSize(cfg.Index.ChunkSize),
			profile.WithChunkOverlap(cfg.Index.ChunkOverlap),
		),
		scholarmatch.WithIndexOptions(index.WithPoolSize(cfg.Index.PoolSize)),
		scholarmatch.WithSearchOptions(cfg.SearchOptions()...),
	)
	if err != nil {
		provider.Close()
		return nil, nil, err
	}
	return engine, provider, nil
}

// isQueryWarning reports whether err is a user-correctable query problem.
func isQueryWarning(err error) bool {
	return errors.Is(err, core.ErrEmptyQuery) || errors.Is(err, core.ErrQueryTooShort)
}

func askCommand(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()

	engine, provider, err := newEngine(ctx, c)
	if err != nil {
		return err
	}
	defer provider.Close()
	defer engine.Close()

	if c.IsSet("query") {
		report, err := engine.Ask(ctx, c.String("query"))
		if isQueryWarning(err) {
			fmt.Fprintf(c.App.Writer, "Warning: %v\n", err)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprint(c.App.Writer, report.Render())
		return nil
	}

	scanner := bufio.NewScanner(c.App.Reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(c.App.Writer, "Enter your research query (or 'exit' to quit): ")
		if !scanner.Scan() {
			fmt.Fprintln(c.App.Writer)
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "exit" || query == "quit" {
			return nil
		}

		report, err := engine.Ask(ctx, query)
		switch {
		case isQueryWarning(err):
			fmt.Fprintf(c.App.Writer, "Warning: %v\n", err)
			continue
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("query failed", "err", err)
			fmt.Fprintf(c.App.Writer, "Error: %v\n", err)
			continue
		}
		fmt.Fprint(c.App.Writer, report.Render())
	}
}

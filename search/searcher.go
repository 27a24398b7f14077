package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/poiesic/scholarmatch/ai"
	"github.com/poiesic/scholarmatch/core"
)

const (
	// DefaultTopK is the number of passages retrieved per query.
	DefaultTopK = 10
	// DefaultMaxPeople caps the number of distinct people in a report.
	DefaultMaxPeople = 10
	// DefaultSnippetLimit is the number of passage runes shown to the generator.
	DefaultSnippetLimit = 8290
)

// Retriever returns the passages most similar to a query, most similar first.
// *index.Index implements Retriever.
type Retriever interface {
	Query(ctx context.Context, text string, k int) ([]core.ScoredPassage, error)
}

// Searcher retrieves, deduplicates and explains matches for a query.
// A Searcher holds no per-request state and is safe for concurrent use.
type Searcher struct {
	retriever    Retriever
	generator    ai.Generator
	prompt       prompts.PromptTemplate
	topK         int
	maxPeople    int
	snippetLimit int
	monitor      SearchMonitor
	logger       *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithTopK sets how many passages are retrieved before deduplication.
// Default is DefaultTopK.
func WithTopK(k int) Option {
	return func(s *Searcher) error {
		if k < 1 {
			return fmt.Errorf("top-k must be greater than 0, got %d", k)
		}
		s.topK = k
		return nil
	}
}

// WithMaxPeople sets how many distinct people a report may contain.
// Default is DefaultMaxPeople.
func WithMaxPeople(n int) Option {
	return func(s *Searcher) error {
		if n < 1 {
			return fmt.Errorf("max people must be greater than 0, got %d", n)
		}
		s.maxPeople = n
		return nil
	}
}

// WithSnippetLimit sets how many runes of a passage are shown to the generator.
// Default is DefaultSnippetLimit.
func WithSnippetLimit(limit int) Option {
	return func(s *Searcher) error {
		if limit < 1 {
			return fmt.Errorf("snippet limit must be greater than 0, got %d", limit)
		}
		s.snippetLimit = limit
		return nil
	}
}

// WithMonitor sets the monitor notified at every stage of Search.
func WithMonitor(monitor SearchMonitor) Option {
	return func(s *Searcher) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		s.monitor = monitor
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(retriever Retriever, provider ai.AIProvider, opts ...Option) (*Searcher, error) {
	if retriever == nil {
		return nil, ErrRetrieverRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	s := &Searcher{
		retriever:    retriever,
		generator:    provider.Generator(),
		prompt:       newSummaryPrompt(),
		topK:         DefaultTopK,
		maxPeople:    DefaultMaxPeople,
		snippetLimit: DefaultSnippetLimit,
		monitor:      &noopMonitor{},
		logger:       slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "searcher")

	return s, nil
}

// Search returns one explained entry per matching person, in similarity order.
//
// The query is not length-checked here; callers enforce their own gate. A
// generation failure for any entry fails the whole search.
func (s *Searcher) Search(ctx context.Context, query string) (*core.Report, error) {
	if strings.TrimSpace(query) == "" {
		return nil, core.ErrEmptyQuery
	}
	s.monitor.Start(query)

	results, err := s.retriever.Query(ctx, query, s.topK)
	if err != nil {
		s.logger.Error("error retrieving passages", "err", err)
		return nil, err
	}
	s.monitor.AfterRetrieval(results)

	selected := DedupeByPerson(results, s.maxPeople)
	s.monitor.AfterDedup(selected)

	report := &core.Report{Query: query, Entries: make([]core.ReportEntry, 0, len(selected))}
	for i, hit := range selected {
		explanation, err := s.explain(ctx, query, hit.Passage)
		if err != nil {
			s.logger.Error("error explaining match", "name", hit.Passage.Metadata.Name, "err", err)
			return nil, fmt.Errorf("failed to explain match for %s: %w", hit.Passage.Metadata.Name, err)
		}
		entry := core.ReportEntry{
			Rank:        i + 1,
			Metadata:    hit.Passage.Metadata,
			Explanation: explanation,
			Score:       hit.Score,
		}
		s.monitor.Explained(entry)
		report.Entries = append(report.Entries, entry)
	}

	s.logger.Info("search complete", "retrieved", len(results), "people", len(report.Entries))
	s.monitor.Finish(report)
	return report, nil
}

// explain asks the generator why passage matched query.
func (s *Searcher) explain(ctx context.Context, query string, passage core.Passage) (string, error) {
	prompt, err := s.prompt.Format(map[string]any{
		"query":   query,
		"name":    passage.Metadata.Name,
		"snippet": TruncateRunes(passage.Text, s.snippetLimit),
	})
	if err != nil {
		return "", fmt.Errorf("failed to build summary prompt: %w", err)
	}
	return s.generator.Generate(ctx, prompt)
}

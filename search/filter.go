package search

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/poiesic/scholarmatch/ai"
	"github.com/poiesic/scholarmatch/core"
)

// Filter makes a second generation pass that keeps only the report entries
// whose researchers meaningfully align with the query.
// A Filter is safe for concurrent use.
type Filter struct {
	generator ai.Generator
	prompt    prompts.PromptTemplate
	monitor   SearchMonitor
	logger    *slog.Logger
}

// FilterOption configures a Filter.
type FilterOption func(*Filter) error

// WithFilterLogger sets a custom logger.
// Default is slog.Default().
func WithFilterLogger(logger *slog.Logger) FilterOption {
	return func(f *Filter) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// WithFilterMonitor sets the monitor notified after filtering.
func WithFilterMonitor(monitor SearchMonitor) FilterOption {
	return func(f *Filter) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		f.monitor = monitor
		return nil
	}
}

// NewFilter creates a relevance filter.
func NewFilter(provider ai.AIProvider, opts ...FilterOption) (*Filter, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	f := &Filter{
		generator: provider.Generator(),
		prompt:    newFilterPrompt(),
		monitor:   &noopMonitor{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	f.logger = f.logger.With("component", "relevance-filter")
	return f, nil
}

// Apply returns the subset of report the model chose to keep.
//
// Kept entries are copied verbatim, including their rank, in input order.
// Result numbers the report does not contain are ignored and repeated numbers
// count once. An unreadable answer fails the request.
func (f *Filter) Apply(ctx context.Context, query string, report *core.Report) (*core.Report, error) {
	out := &core.Report{Query: report.Query, Entries: []core.ReportEntry{}}
	if len(report.Entries) == 0 {
		return out, nil
	}

	var portfolios strings.Builder
	for _, entry := range report.Entries {
		portfolios.WriteString(entry.Render())
		portfolios.WriteString("\n")
	}
	prompt, err := f.prompt.Format(map[string]any{
		"query":      query,
		"portfolios": portfolios.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build filter prompt: %w", err)
	}

	response, err := f.generator.Generate(ctx, prompt)
	if err != nil {
		f.logger.Error("error generating filter decision", "err", err)
		return nil, err
	}

	keep, err := ParseKeepList(response)
	if err != nil {
		f.logger.Error("error parsing filter decision", "response", response, "err", err)
		return nil, err
	}

	var kept, dropped []int
	for _, entry := range report.Entries {
		if _, ok := keep[entry.Rank]; ok {
			out.Entries = append(out.Entries, entry)
			kept = append(kept, entry.Rank)
		} else {
			dropped = append(dropped, entry.Rank)
		}
	}
	f.monitor.AfterFilter(kept, dropped)
	f.logger.Info("relevance filter applied", "kept", len(kept), "dropped", len(dropped))
	return out, nil
}

// ParseKeepList reads the set of result numbers from a filter answer.
// It accepts {"keep": [...]} or a bare array, optionally inside a code fence
// or surrounded by prose.
func ParseKeepList(response string) (map[int]struct{}, error) {
	body := stripCodeFence(strings.TrimSpace(response))

	var numbers []int
	if start := strings.Index(body, "{"); start >= 0 {
		end := strings.LastIndex(body, "}")
		if end < start {
			return nil, fmt.Errorf("%w: unterminated object", ErrUnparseableResponse)
		}
		var decision struct {
			Keep *[]int `json:"keep"`
		}
		if err := json.Unmarshal([]byte(repairJSON(body[start:end+1])), &decision); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnparseableResponse, err)
		}
		if decision.Keep == nil {
			return nil, fmt.Errorf("%w: missing keep list", ErrUnparseableResponse)
		}
		numbers = *decision.Keep
	} else if start := strings.Index(body, "["); start >= 0 {
		end := strings.LastIndex(body, "]")
		if end < start {
			return nil, fmt.Errorf("%w: unterminated array", ErrUnparseableResponse)
		}
		if err := json.Unmarshal([]byte(body[start:end+1]), &numbers); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrUnparseableResponse, err)
		}
	} else {
		return nil, fmt.Errorf("%w: no JSON found", ErrUnparseableResponse)
	}

	keep := make(map[int]struct{}, len(numbers))
	for _, n := range numbers {
		keep[n] = struct{}{}
	}
	return keep, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

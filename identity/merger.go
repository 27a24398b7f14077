package identity

import (
	"log/slog"
	"strings"

	"github.com/poiesic/scholarmatch/core"
)

// Source is one ordered, labelled collection of per-person text.
type Source struct {
	Label   string
	Records []core.PersonRecord
}

// SourceCount summarises how a source was folded into the accumulator.
type SourceCount struct {
	Label    string
	Entries  int // records processed
	Appended int // records appended to an existing person
	Created  int // records that introduced a new person
}

// Accumulator holds the canonical person records built so far.
// Each call to Merge folds one source in and returns the accumulator, so the
// merge state is always explicit and never global.
// An Accumulator is not safe for concurrent use.
type Accumulator struct {
	strategy KeyStrategy
	records  []core.PersonRecord
	byName   map[string]int    // canonical name -> index into records
	byKey    map[string]string // match key -> canonical name
	counts   []SourceCount
	logger   *slog.Logger
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Accumulator) {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
	}
}

// NewAccumulator creates an empty accumulator using strategy for identity comparison.
func NewAccumulator(strategy KeyStrategy, opts ...Option) (*Accumulator, error) {
	if strategy == nil {
		return nil, ErrStrategyRequired
	}
	a := &Accumulator{
		strategy: strategy,
		byName:   make(map[string]int),
		byKey:    make(map[string]string),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "identity-merger")
	return a, nil
}

// Merge seeds an accumulator with base and folds in each additional source in order.
// The base source owns the canonical spelling of every person it contains.
func Merge(strategy KeyStrategy, base Source, additional ...Source) (*Accumulator, error) {
	acc, err := NewAccumulator(strategy)
	if err != nil {
		return nil, err
	}
	acc = acc.Merge(base)
	for _, src := range additional {
		acc = acc.Merge(src)
	}
	return acc, nil
}

// Merge folds every record of src into the accumulator, in source order.
//
// A record whose key is already known is appended to that person's text,
// separated by a blank line and trimmed. A record with a novel key becomes a
// new person under its own name. No record is ever dropped; empty text is kept
// as an empty string.
func (a *Accumulator) Merge(src Source) *Accumulator {
	count := SourceCount{Label: src.Label, Entries: len(src.Records)}

	for _, rec := range src.Records {
		key := a.strategy.DeriveKey(rec.Name)

		canonical, known := a.byKey[key]
		if !known {
			// A custom strategy may give an existing name a new key. Keep the
			// output a flat mapping by folding it into the existing entry.
			if _, exists := a.byName[rec.Name]; exists {
				canonical, known = rec.Name, true
				a.byKey[key] = rec.Name
			}
		}

		if known {
			idx := a.byName[canonical]
			a.records[idx].Text = strings.TrimSpace(a.records[idx].Text + "\n\n" + rec.Text)
			count.Appended++
			continue
		}

		a.byName[rec.Name] = len(a.records)
		a.byKey[key] = rec.Name
		a.records = append(a.records, core.PersonRecord{
			Name: rec.Name,
			Text: strings.TrimSpace(rec.Text),
		})
		count.Created++
	}

	a.counts = append(a.counts, count)
	a.logger.Info("merged source",
		"source", src.Label,
		"entries", count.Entries,
		"appended", count.Appended,
		"created", count.Created)

	return a
}

// Records returns the canonical person records in creation order.
func (a *Accumulator) Records() []core.PersonRecord {
	return append([]core.PersonRecord(nil), a.records...)
}

// Len returns the number of distinct people.
func (a *Accumulator) Len() int {
	return len(a.records)
}

// Counts returns per-source statistics in processing order.
func (a *Accumulator) Counts() []SourceCount {
	return append([]SourceCount(nil), a.counts...)
}

// CanonicalName returns the name of record that name resolves to.
func (a *Accumulator) CanonicalName(name string) (string, bool) {
	canonical, ok := a.byKey[a.strategy.DeriveKey(name)]
	return canonical, ok
}

// Text returns the merged text stored under a canonical name.
func (a *Accumulator) Text(canonical string) (string, bool) {
	idx, ok := a.byName[canonical]
	if !ok {
		return "", false
	}
	return a.records[idx].Text, true
}

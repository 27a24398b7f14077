package profile

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/poiesic/scholarmatch/core"
	"github.com/poiesic/scholarmatch/roster"
)

const (
	// DefaultChunkSize is the maximum passage length in runes.
	DefaultChunkSize = 1000
	// DefaultChunkOverlap is the maximum overlap between consecutive passages in runes.
	DefaultChunkOverlap = 200
)

// Builder turns merged records and roster rows into profiles and passages.
type Builder struct {
	policy       JoinPolicy
	chunkSize    int
	chunkOverlap int
	splitter     textsplitter.TextSplitter
	logger       *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithJoinPolicy sets how roster rows find their merged text.
// Default is DefaultJoinPolicy().
func WithJoinPolicy(policy JoinPolicy) Option {
	return func(b *Builder) error {
		if policy != nil {
			b.policy = policy
		}
		return nil
	}
}

// WithChunkSize sets the maximum passage length in runes.
func WithChunkSize(size int) Option {
	return func(b *Builder) error {
		b.chunkSize = size
		return nil
	}
}

// WithChunkOverlap sets the overlap between consecutive passages in runes.
func WithChunkOverlap(overlap int) Option {
	return func(b *Builder) error {
		b.chunkOverlap = overlap
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger != nil {
			b.logger = logger
		}
		return nil
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) (*Builder, error) {
	b := &Builder{
		policy:       DefaultJoinPolicy(),
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	if b.chunkSize <= 0 || b.chunkOverlap < 0 || b.chunkOverlap >= b.chunkSize {
		return nil, fmt.Errorf("%w: size %d overlap %d", ErrInvalidChunking, b.chunkSize, b.chunkOverlap)
	}

	b.splitter = textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(b.chunkSize),
		textsplitter.WithChunkOverlap(b.chunkOverlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		textsplitter.WithLenFunc(utf8.RuneCountInString),
	)
	b.logger = b.logger.With("component", "profile-builder")
	return b, nil
}

// Profiles joins every roster row to its merged text, in roster order.
// Rows whose text is missing or blank are dropped.
func (b *Builder) Profiles(people []roster.Person, records []core.PersonRecord) []core.Profile {
	corpus := NewCorpus(records)
	profiles := make([]core.Profile, 0, len(people))
	unmatched := 0
	for _, p := range people {
		text, ok := b.policy.Join(p, corpus)
		if !ok {
			unmatched++
			continue
		}
		profile := core.Profile{Metadata: p.Metadata(), Text: text}
		if err := core.ValidateProfile(&profile); err != nil {
			b.logger.Debug("dropping profile", "name", p.Name, "error", err)
			continue
		}
		profiles = append(profiles, profile)
	}
	b.logger.Info("joined profiles",
		"roster", len(people),
		"records", len(records),
		"profiles", len(profiles),
		"unmatched", unmatched)
	return profiles
}

// Chunk splits text into passages of at most the configured size.
func (b *Builder) Chunk(text string) ([]string, error) {
	chunks, err := b.splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}
	out := chunks[:0]
	for _, c := range chunks {
		if strings.TrimSpace(c) != "" {
			out = append(out, c)
		}
	}
	return out, nil
}

// Passages chunks every profile. Passages are ordered by profile, then by
// position within the profile, and carry the profile metadata unchanged.
func (b *Builder) Passages(profiles []core.Profile) ([]core.Passage, error) {
	var passages []core.Passage
	for _, profile := range profiles {
		chunks, err := b.Chunk(profile.Text)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", profile.Metadata.Name, err)
		}
		for _, chunk := range chunks {
			passages = append(passages, core.NewPassage(chunk, profile.Metadata))
		}
	}
	return passages, nil
}

// Store is the output of a build.
type Store struct {
	Profiles []core.Profile
	Passages []core.Passage
}

// Build joins, filters and chunks in one step.
func (b *Builder) Build(people []roster.Person, records []core.PersonRecord) (*Store, error) {
	profiles := b.Profiles(people, records)
	if len(profiles) == 0 {
		return nil, ErrNoProfiles
	}
	passages, err := b.Passages(profiles)
	if err != nil {
		return nil, err
	}
	b.logger.Info("chunked profiles", "profiles", len(profiles), "passages", len(passages))
	return &Store{Profiles: profiles, Passages: passages}, nil
}

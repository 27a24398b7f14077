package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/scholarmatch/ai/mock"
	"github.com/poiesic/scholarmatch/core"
	"github.com/poiesic/scholarmatch/index"
)

// stubRetriever returns canned results and records the requested k.
type stubRetriever struct {
	results []core.ScoredPassage
	err     error
	gotK    int
	calls   int
}

func (r *stubRetriever) Query(_ context.Context, _ string, k int) ([]core.ScoredPassage, error) {
	r.calls++
	r.gotK = k
	if r.err != nil {
		return nil, r.err
	}
	if len(r.results) > k {
		return r.results[:k], nil
	}
	return r.results, nil
}

func scored(name, text string, score float32) core.ScoredPassage {
	return core.ScoredPassage{
		Passage: core.NewPassage(text, core.Metadata{Name: name, Email: strings.ToLower(name) + "@example.edu"}),
		Score:   score,
	}
}

// recordingMonitor captures callbacks for assertions.
type recordingMonitor struct {
	noopMonitor
	started   string
	retrieved int
	selected  int
	explained []string
	finished  *core.Report
}

func (m *recordingMonitor) Start(q string)                        { m.started = q }
func (m *recordingMonitor) AfterRetrieval(r []core.ScoredPassage) { m.retrieved = len(r) }
func (m *recordingMonitor) AfterDedup(s []core.ScoredPassage)     { m.selected = len(s) }
func (m *recordingMonitor) Explained(e core.ReportEntry) {
	m.explained = append(m.explained, e.Metadata.Name)
}
func (m *recordingMonitor) Finish(r *core.Report) { m.finished = r }

func TestNewSearcher(t *testing.T) {
	provider := mock.NewMockProvider()
	retriever := &stubRetriever{}

	t.Run("valid configuration", func(t *testing.T) {
		s, err := NewSearcher(retriever, provider)
		require.NoError(t, err)
		assert.Equal(t, DefaultTopK, s.topK)
		assert.Equal(t, DefaultMaxPeople, s.maxPeople)
		assert.Equal(t, DefaultSnippetLimit, s.snippetLimit)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		s, err := NewSearcher(retriever, provider, WithLogger(nil), WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, s)
	})

	t.Run("nil retriever", func(t *testing.T) {
		_, err := NewSearcher(nil, provider)
		assert.Equal(t, ErrRetrieverRequired, err)
	})

	t.Run("nil provider", func(t *testing.T) {
		_, err := NewSearcher(retriever, nil)
		assert.Equal(t, ErrAIProviderRequired, err)
	})

	t.Run("invalid options", func(t *testing.T) {
		_, err := NewSearcher(retriever, provider, WithTopK(0))
		assert.Error(t, err)
		_, err = NewSearcher(retriever, provider, WithMaxPeople(0))
		assert.Error(t, err)
		_, err = NewSearcher(retriever, provider, WithSnippetLimit(0))
		assert.Error(t, err)
	})
}

func TestSearch_DedupKeepsBestPassage(t *testing.T) {
	retriever := &stubRetriever{results: []core.ScoredPassage{
		scored("John Smith", "best john passage", 0.9),
		scored("Mary Major", "mary passage", 0.8),
		scored("John Smith", "weaker john passage", 0.7),
	}}
	provider := mock.NewMockProvider()
	gen := provider.(*mock.MockProvider).GetMockGenerator()
	gen.GenerateFunc = func(_ context.Context, prompt string) (string, error) {
		if strings.Contains(prompt, "Professor: John Smith.") {
			return "John matches", nil
		}
		return "Mary matches", nil
	}
	monitor := &recordingMonitor{}

	s, err := NewSearcher(retriever, provider, WithMonitor(monitor))
	require.NoError(t, err)

	report, err := s.Search(context.Background(), "query text")
	require.NoError(t, err)

	require.Len(t, report.Entries, 2)
	assert.Equal(t, "query text", report.Query)
	assert.Equal(t, core.ReportEntry{
		Rank:        1,
		Metadata:    retriever.results[0].Passage.Metadata,
		Explanation: "John matches",
		Score:       0.9,
	}, report.Entries[0])
	assert.Equal(t, 2, report.Entries[1].Rank)
	assert.Equal(t, "Mary Major", report.Entries[1].Metadata.Name)

	prompts := gen.Prompts()
	require.Len(t, prompts, 2)
	assert.Contains(t, prompts[0], "best john passage")
	assert.NotContains(t, prompts[0], "weaker john passage")

	assert.Equal(t, DefaultTopK, retriever.gotK)
	assert.Equal(t, "query text", monitor.started)
	assert.Equal(t, 3, monitor.retrieved)
	assert.Equal(t, 2, monitor.selected)
	assert.Equal(t, []string{"John Smith", "Mary Major"}, monitor.explained)
	assert.Same(t, report, monitor.finished)
}

func TestSearch_PromptWording(t *testing.T) {
	retriever := &stubRetriever{results: []core.ScoredPassage{scored("Ada Lovelace", "analytical engine notes", 0.5)}}
	provider := mock.NewMockProvider()
	gen := provider.(*mock.MockProvider).GetMockGenerator()

	s, err := NewSearcher(retriever, provider)
	require.NoError(t, err)
	_, err = s.Search(context.Background(), "computing machines")
	require.NoError(t, err)

	prompt := gen.Prompts()[0]
	assert.True(t, strings.HasPrefix(prompt, "Research Query: 'computing machines'.\nProfessor: Ada Lovelace.\nCV Snippet: analytical engine notes\n\n"))
	assert.Contains(t, prompt, "please provide a short summary explaining why this professor was selected")
	assert.True(t, strings.HasSuffix(prompt, "Focus on the positives and the matching components."))
}

func TestSearch_StopsAtMaxPeople(t *testing.T) {
	var results []core.ScoredPassage
	for _, name := range []string{"A", "B", "A", "C", "D", "E"} {
		results = append(results, scored(name, "text "+name, 0.5))
	}
	retriever := &stubRetriever{results: results}
	provider := mock.NewMockProvider()

	s, err := NewSearcher(retriever, provider, WithMaxPeople(3))
	require.NoError(t, err)
	report, err := s.Search(context.Background(), "q")
	require.NoError(t, err)

	var names []string
	for _, e := range report.Entries {
		names = append(names, e.Metadata.Name)
	}
	assert.Equal(t, []string{"A", "B", "C"}, names)
	assert.Equal(t, 3, provider.(*mock.MockProvider).GetMockGenerator().CallCount())
}

func TestSearch_TruncatesSnippet(t *testing.T) {
	long := strings.Repeat("é", 20) + "TAIL"
	retriever := &stubRetriever{results: []core.ScoredPassage{scored("A", long, 0.5)}}
	provider := mock.NewMockProvider()
	gen := provider.(*mock.MockProvider).GetMockGenerator()

	s, err := NewSearcher(retriever, provider, WithSnippetLimit(20))
	require.NoError(t, err)
	_, err = s.Search(context.Background(), "q")
	require.NoError(t, err)

	prompt := gen.Prompts()[0]
	assert.Contains(t, prompt, strings.Repeat("é", 20)+"\n")
	assert.NotContains(t, prompt, "TAIL")
}

func TestSearch_Failures(t *testing.T) {
	t.Run("generation failure aborts without partial report", func(t *testing.T) {
		retriever := &stubRetriever{results: []core.ScoredPassage{
			scored("A", "a", 0.9),
			scored("B", "b", 0.8),
		}}
		provider := mock.NewMockProvider()
		gen := provider.(*mock.MockProvider).GetMockGenerator()
		boom := errors.New("rate limited")
		gen.GenerateFunc = func(_ context.Context, prompt string) (string, error) {
			if strings.Contains(prompt, "Professor: B.") {
				return "", boom
			}
			return "ok", nil
		}

		s, err := NewSearcher(retriever, provider)
		require.NoError(t, err)
		report, err := s.Search(context.Background(), "q")
		assert.ErrorIs(t, err, boom)
		assert.Nil(t, report)
		assert.Equal(t, 2, gen.CallCount(), "no retry")
	})

	t.Run("retrieval failure", func(t *testing.T) {
		boom := errors.New("embed failed")
		s, err := NewSearcher(&stubRetriever{err: boom}, mock.NewMockProvider())
		require.NoError(t, err)
		_, err = s.Search(context.Background(), "q")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("empty query", func(t *testing.T) {
		retriever := &stubRetriever{}
		s, err := NewSearcher(retriever, mock.NewMockProvider())
		require.NoError(t, err)
		_, err = s.Search(context.Background(), "   ")
		assert.ErrorIs(t, err, core.ErrEmptyQuery)
		assert.Equal(t, 0, retriever.calls)
	})

	t.Run("no results", func(t *testing.T) {
		s, err := NewSearcher(&stubRetriever{}, mock.NewMockProvider())
		require.NoError(t, err)
		report, err := s.Search(context.Background(), "q")
		require.NoError(t, err)
		assert.Empty(t, report.Entries)
	})
}

// TestSearch_WithIndex runs two passages for one person through a real index.
func TestSearch_WithIndex(t *testing.T) {
	ctx := context.Background()
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		v := []float32{0.1, 0, 0}
		for _, w := range strings.Fields(text) {
			switch w {
			case "proteins":
				v[1]++
			case "folding":
				v[2]++
			}
		}
		return v, nil
	}
	smith := core.Metadata{Name: "John Smith"}
	passages := []core.Passage{
		core.NewPassage("proteins", smith),
		core.NewPassage("proteins folding", smith),
		core.NewPassage("folding", core.Metadata{Name: "Mary Major"}),
	}
	ix, err := index.Build(ctx, embedder, passages)
	require.NoError(t, err)

	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())
	s, err := NewSearcher(ix, provider)
	require.NoError(t, err)

	report, err := s.Search(ctx, "proteins folding")
	require.NoError(t, err)

	require.Len(t, report.Entries, 2)
	assert.Equal(t, "John Smith", report.Entries[0].Metadata.Name)
	assert.Equal(t, "Mary Major", report.Entries[1].Metadata.Name)

	gen := provider.(*mock.MockProvider).GetMockGenerator()
	assert.Contains(t, gen.Prompts()[0], "CV Snippet: proteins folding\n")
}

func TestDedupeByPerson(t *testing.T) {
	in := []core.ScoredPassage{scored("A", "1", 3), scored("A", "2", 2), scored("B", "3", 1)}
	assert.Len(t, DedupeByPerson(in, 10), 2)
	assert.Len(t, DedupeByPerson(in, 1), 1)
	assert.Empty(t, DedupeByPerson(in, 0))
	assert.Empty(t, DedupeByPerson(nil, 10))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héll", TruncateRunes("héllo", 4))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 5))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 50))
	assert.Equal(t, "héllo", TruncateRunes("héllo", 0))
	assert.Equal(t, "", TruncateRunes("", 3))
}

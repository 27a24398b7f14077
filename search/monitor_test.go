package search

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/scholarmatch/ai/mock"
	"github.com/poiesic/scholarmatch/core"
)

func TestLogMonitor(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	monitor := NewLogMonitor(logger)

	retriever := &stubRetriever{results: []core.ScoredPassage{
		scored("John Smith", "glacier passage", 0.9),
		scored("Mary Major", "ice passage", 0.8),
	}}
	s, err := NewSearcher(retriever, mock.NewMockProvider(), WithMonitor(monitor))
	require.NoError(t, err)
	report, err := s.Search(context.Background(), "glacier ice research")
	require.NoError(t, err)

	f, _ := filterWith(t, `{"keep": [2]}`, nil)
	f.monitor = monitor
	filtered, err := f.Apply(context.Background(), "glacier ice research", report)
	require.NoError(t, err)
	require.Len(t, filtered.Entries, 1)

	out := buf.String()
	for _, msg := range []string{
		"search started",
		"retrieved passage",
		"distinct people selected",
		"explained match",
		"search finished",
		"relevance filter applied",
	} {
		assert.Contains(t, out, "msg=\""+msg+"\"")
	}
	assert.Contains(t, out, "component=search-monitor")
	assert.Contains(t, out, "name=\"Mary Major\"")
	assert.Contains(t, out, "words=3")
}

func TestLogMonitor_QuietAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	monitor := NewLogMonitor(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))

	monitor.Start("glacier ice research")
	monitor.Finish(&core.Report{})
	assert.Empty(t, buf.String())
}

func TestNewLogMonitor_NilLogger(t *testing.T) {
	assert.NotNil(t, NewLogMonitor(nil).logger)
}

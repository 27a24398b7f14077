package search

import (
	"log/slog"

	"github.com/poiesic/scholarmatch/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterRetrieval(results []core.ScoredPassage)
	AfterDedup(selected []core.ScoredPassage)
	Explained(entry core.ReportEntry)
	AfterFilter(kept []int, dropped []int)
	Finish(report *core.Report)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                        {}
func (n *noopMonitor) AfterRetrieval(_ []core.ScoredPassage) {}
func (n *noopMonitor) AfterDedup(_ []core.ScoredPassage)     {}
func (n *noopMonitor) Explained(_ core.ReportEntry)          {}
func (n *noopMonitor) AfterFilter(_ []int, _ []int)          {}
func (n *noopMonitor) Finish(_ *core.Report)                 {}

// LogMonitor reports every search stage to a logger at debug level.
type LogMonitor struct {
	logger *slog.Logger
}

var _ SearchMonitor = (*LogMonitor)(nil)

// NewLogMonitor creates a monitor that logs to logger, or slog.Default() if nil.
func NewLogMonitor(logger *slog.Logger) *LogMonitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMonitor{logger: logger.With("component", "search-monitor")}
}

func (m *LogMonitor) Start(query string) {
	m.logger.Debug("search started", "words", core.WordCount(query))
}

func (m *LogMonitor) AfterRetrieval(results []core.ScoredPassage) {
	for i, r := range results {
		m.logger.Debug("retrieved passage", "position", i+1, "name", r.Passage.Metadata.Name, "score", r.Score)
	}
}

func (m *LogMonitor) AfterDedup(selected []core.ScoredPassage) {
	m.logger.Debug("distinct people selected", "count", len(selected))
}

func (m *LogMonitor) Explained(entry core.ReportEntry) {
	m.logger.Debug("explained match", "rank", entry.Rank, "name", entry.Metadata.Name)
}

func (m *LogMonitor) AfterFilter(kept []int, dropped []int) {
	m.logger.Debug("relevance filter applied", "kept", kept, "dropped", dropped)
}

func (m *LogMonitor) Finish(report *core.Report) {
	m.logger.Debug("search finished", "entries", len(report.Entries))
}

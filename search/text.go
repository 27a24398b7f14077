package search

import (
	"github.com/poiesic/scholarmatch/core"
)

// TruncateRunes returns at most limit runes of s. A non-positive limit
// returns s unchanged.
func TruncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// DedupeByPerson keeps the first passage seen for each person name and stops
// once limit distinct people are collected. Input order is preserved, so when
// results are sorted by similarity each person keeps their best passage.
func DedupeByPerson(results []core.ScoredPassage, limit int) []core.ScoredPassage {
	seen := make(map[string]struct{}, len(results))
	selected := make([]core.ScoredPassage, 0, min(len(results), max(limit, 0)))
	for _, r := range results {
		if len(selected) >= limit {
			break
		}
		name := r.Passage.Metadata.Name
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		selected = append(selected, r)
	}
	return selected
}

package core

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// PersonRecord is the merged text of one person under their canonical name.
// The match key used to merge records is derived on demand and never stored.
type PersonRecord struct {
	Name string
	Text string
}

// Metadata holds the structured roster fields attached to every passage of a profile.
type Metadata struct {
	Name       string
	Email      string
	School     string
	Department string
	Title      string
}

// Profile is a person's merged text joined with roster metadata.
type Profile struct {
	Metadata Metadata
	Text     string
}

// Passage is a bounded slice of a profile's text and the unit of embedding and retrieval.
type Passage struct {
	Id       ID
	Text     string
	Metadata Metadata
}

// NewPassage creates a passage whose ID is derived from its owner and text.
func NewPassage(text string, metadata Metadata) Passage {
	return Passage{
		Id:       IDFromContent(metadata.Name + "\x00" + text),
		Text:     text,
		Metadata: metadata,
	}
}

// ScoredPassage is a passage returned from a similarity query.
type ScoredPassage struct {
	Passage Passage
	Score   float32
}

// ReportEntry describes one matched researcher.
type ReportEntry struct {
	Rank        int // 1-based position in the report
	Metadata    Metadata
	Explanation string
	Score       float32 // similarity of the passage that selected this person
}

// Report is the structured result of a search.
type Report struct {
	Query   string
	Entries []ReportEntry
}

// valueOrNA substitutes "N/A" for empty fields when rendering.
func valueOrNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// Render formats a single entry as a plain-text portfolio block.
func (e ReportEntry) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Result %d:\n", e.Rank)
	fmt.Fprintf(&sb, "Name: %s\n", valueOrNA(e.Metadata.Name))
	fmt.Fprintf(&sb, "Email Address: %s\n", valueOrNA(e.Metadata.Email))
	fmt.Fprintf(&sb, "School: %s\n", valueOrNA(e.Metadata.School))
	fmt.Fprintf(&sb, "Department: %s\n", valueOrNA(e.Metadata.Department))
	fmt.Fprintf(&sb, "Title: %s\n", valueOrNA(e.Metadata.Title))
	sb.WriteString(strings.Repeat("-", 40) + "\n")
	sb.WriteString("Summary:\n")
	sb.WriteString(e.Explanation + "\n")
	sb.WriteString(strings.Repeat("=", 40) + "\n")
	return sb.String()
}

// Render formats the whole report as plain text.
func (r *Report) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Research Query: %s\n\n", r.Query)
	sb.WriteString("Matching Professors:\n\n")
	if len(r.Entries) == 0 {
		sb.WriteString("No matching professors found.\n")
		return sb.String()
	}
	for _, entry := range r.Entries {
		sb.WriteString(entry.Render())
		sb.WriteString("\n")
	}
	return sb.String()
}

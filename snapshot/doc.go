// Package snapshot reads and writes the flat JSON snapshots that connect the
// scraping, merging and indexing stages.
//
// A snapshot is a single JSON object mapping a person name to free text.
// Key order is significant: it records the order in which people were first
// seen, and the merge stage relies on it. Load and Save therefore preserve
// key order instead of going through a Go map.
package snapshot

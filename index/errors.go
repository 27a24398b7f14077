package index

import "errors"

var (
	// ErrEmbedderRequired indicates a nil embedder was supplied.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrNoPassages indicates Build was called without passages.
	ErrNoPassages = errors.New("no passages to index")

	// ErrEmbeddingMismatch indicates the backend returned the wrong number of
	// vectors or vectors of inconsistent length.
	ErrEmbeddingMismatch = errors.New("embedding mismatch")
)

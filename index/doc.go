// Package index holds the in-memory vector index over profile passages.
//
// An Index is built once per process: every passage is embedded, its vector
// normalised to unit length, and the pair stored in passage order. Queries
// embed the query text and rank passages by dot product, which equals cosine
// similarity for unit vectors. A built Index is read-only and safe for
// concurrent queries.
//
// Building is the expensive step. Batches of passages can be embedded by a
// bounded ants worker pool, and a storage.VectorCache can be supplied so
// unchanged passages are not re-embedded across restarts.
package index

// Package profile joins merged person text with roster metadata and cuts the
// result into passages for embedding.
//
// Which merged record belongs to which roster row is decided by a JoinPolicy.
// DefaultJoinPolicy tries the exact roster name first and falls back to the
// "<name> CV.pdf" key that the CV extractor produces.
package profile

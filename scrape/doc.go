// Package scrape collects per-person text from the web for the merge stage.
//
// Two sources are supported: personal and lab web pages listed in the
// roster, and Google Scholar profiles. Requests are sequential, rate limited
// and retried with exponential backoff on transient failures. A failure for
// one URL never aborts a batch; it is recorded in a FailureLog for operator
// review and the person's text is left empty or partial.
package scrape

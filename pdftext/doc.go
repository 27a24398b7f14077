// Package pdftext extracts plain text from a directory of CV files.
//
// Each PDF becomes one record keyed by its file name, with the text of
// every non-empty page joined by a newline. Files that cannot be read are
// reported as failures and never stop the run.
package pdftext

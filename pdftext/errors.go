package pdftext

import "errors"

var (
	// ErrNotDirectory is returned when the input path is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// ErrUnreadablePDF indicates the PDF parser failed on a file.
	ErrUnreadablePDF = errors.New("unreadable pdf")
)

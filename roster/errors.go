package roster

import "errors"

var (
	// ErrMissingColumn indicates a required column could not be found in the header.
	ErrMissingColumn = errors.New("missing roster column")

	// ErrEmptyRoster indicates the file has no header row.
	ErrEmptyRoster = errors.New("roster has no header")
)

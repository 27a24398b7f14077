package snapshot

import "errors"

var (
	// ErrMalformed indicates the input is not a JSON object of strings.
	ErrMalformed = errors.New("malformed snapshot")

	// ErrEmptyPath indicates no snapshot path was supplied.
	ErrEmptyPath = errors.New("snapshot path required")
)

package identity

import "errors"

var (
	// ErrStrategyRequired is returned when a nil KeyStrategy is supplied.
	ErrStrategyRequired = errors.New("key strategy required")

	// ErrUnknownStrategy is returned for an unrecognised strategy name.
	ErrUnknownStrategy = errors.New("unknown key strategy")
)

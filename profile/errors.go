package profile

import "errors"

var (
	// ErrNoProfiles indicates no roster row joined to non-empty text.
	ErrNoProfiles = errors.New("no profiles with text")

	// ErrInvalidChunking indicates an unusable chunk size or overlap.
	ErrInvalidChunking = errors.New("invalid chunk configuration")

	// ErrUnknownJoinPolicy is returned for an unrecognised policy name.
	ErrUnknownJoinPolicy = errors.New("unknown join policy")
)

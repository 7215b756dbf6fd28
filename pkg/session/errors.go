package session

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for the request or token.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired is returned when the session exists but is past its expiry.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidSession is returned for malformed or incomplete session data.
	ErrInvalidSession = errors.New("invalid session")

	// ErrStoreUnavailable is returned when the backing store cannot be reached.
	ErrStoreUnavailable = errors.New("session store unavailable")
)

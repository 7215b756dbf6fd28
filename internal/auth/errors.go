package auth

import "errors"

var (
	// ErrUnauthenticated signals that no valid session backs the request.
	// The HTTP layer converts it into a redirect to the login surface.
	ErrUnauthenticated = errors.New("auth: unauthenticated")

	// ErrUnknownRole is returned for role strings outside the closed set.
	ErrUnknownRole = errors.New("auth: unknown role")
)

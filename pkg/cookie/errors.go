package cookie

import "errors"

var (
	// ErrNoSecret is returned when the manager is constructed without any usable secret.
	ErrNoSecret = errors.New("cookie: at least one signing secret is required")

	// ErrSecretTooShort is returned for secrets below the minimum length.
	ErrSecretTooShort = errors.New("cookie: signing secret too short")

	// ErrCookieNotFound is returned when the named cookie is absent from the request.
	ErrCookieNotFound = errors.New("cookie: not found")

	// ErrInvalidSignature is returned when a signed cookie fails verification.
	ErrInvalidSignature = errors.New("cookie: invalid signature")
)

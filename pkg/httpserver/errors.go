package httpserver

import "errors"

var (
	// ErrStart wraps listener and startup failures from Run.
	ErrStart = errors.New("httpserver: start failed")
	// ErrShutdown wraps failures to drain the server within the deadline.
	ErrShutdown = errors.New("httpserver: graceful shutdown failed")
)

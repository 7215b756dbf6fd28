// Package httpserver provides a lightweight wrapper around net/http that adds
// graceful shutdown, configurable server timeouts, health-check handlers, and
// structured logging via slog.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal is
// received and then shuts the server down using http.Server.Shutdown with a
// configurable deadline. Construction is done through New or NewFromConfig
// together with Option helpers such as WithAddr and WithShutdownTimeout.
// Listen errors are wrapped with ErrStart, shutdown errors with ErrShutdown,
// so they can be inspected with errors.Is.
package httpserver

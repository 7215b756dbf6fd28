package httpserver

import (
	"io"
	"log/slog"
)

// newNoopLogger returns a logger that discards everything, used when the
// caller did not supply one.
func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

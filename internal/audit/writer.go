package audit

import (
	"context"
	"log/slog"

	"github.com/opshub-io/opshub/pkg/logger"
)

// Store persists audit entries.
type Store interface {
	Append(ctx context.Context, entry Entry) error
}

// Writer appends audit entries on behalf of business handlers.
//
// Record is fire-and-forget from the caller's perspective but runs
// synchronously, so audit coverage matches mutation coverage on the happy
// path. A failed audit write is logged and swallowed: the business effect
// has already committed, and rolling it back for a missing audit row would
// be worse than the gap. Documented trade-off, not a bug.
type Writer struct {
	store Store
	log   *slog.Logger
}

func NewWriter(store Store, log *slog.Logger) *Writer {
	if store == nil {
		panic("audit: store cannot be nil")
	}
	return &Writer{store: store, log: log}
}

// Record appends one entry. It never returns an error to the caller.
func (w *Writer) Record(ctx context.Context, entry Entry) {
	if err := entry.Validate(); err != nil {
		w.log.ErrorContext(ctx, "audit entry rejected",
			logger.Component("audit"),
			logger.Action(entry.Action),
			logger.Error(err))
		return
	}

	if err := w.store.Append(ctx, entry); err != nil {
		w.log.ErrorContext(ctx, "audit write failed",
			logger.Component("audit"),
			logger.Action(entry.Action),
			logger.TenantID(entry.TenantID),
			logger.UserID(entry.UserID),
			logger.Error(err))
	}
}

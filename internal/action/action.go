package action

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opshub-io/opshub/internal/apperr"
	"github.com/opshub-io/opshub/internal/auth"
	"github.com/opshub-io/opshub/pkg/logger"
)

// DB is the scoped data-access handle injected into handlers. *pgxpool.Pool
// satisfies it; tests substitute fakes.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// HandlerFunc is a business mutation. It receives the resolved identity and
// the data-access handle and either returns a value or raises a failure,
// classified (apperr) or not.
type HandlerFunc[In, Out any] func(ctx context.Context, identity auth.Identity, db DB, input In) (Out, error)

// Authenticator is the subset of auth.Resolver the wrapper depends on.
type Authenticator interface {
	RequireAuth(ctx context.Context) (auth.Identity, error)
}

// Wrap adapts a business handler into the action contract.
//
// The returned function resolves the caller's identity, injects the
// data-access handle, and normalizes every outcome into a Result: handler
// panics and errors are caught, classified via apperr, logged once here (and
// nowhere else), and returned as a failure result. The only non-Result
// outcome is auth.ErrUnauthenticated, which is surfaced as an error so the
// HTTP layer can redirect instead of rendering a failure.
func Wrap[In, Out any](resolver Authenticator, db DB, log *slog.Logger, name string, fn HandlerFunc[In, Out]) func(context.Context, In) (Result[Out], error) {
	return func(ctx context.Context, input In) (result Result[Out], authErr error) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				log.ErrorContext(ctx, "action panicked",
					logger.Action(name), logger.Error(err), logger.Code(apperr.CodeSystem))
				result = Fail[Out](apperr.System())
				authErr = nil
			}
		}()

		identity, err := resolver.RequireAuth(ctx)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				return Result[Out]{}, err
			}
			appErr := apperr.From(err)
			log.ErrorContext(ctx, "action failed to resolve identity",
				logger.Action(name), logger.Error(err), logger.Code(appErr.Code))
			return Fail[Out](appErr), nil
		}

		out, err := fn(ctx, identity, db, input)
		if err != nil {
			appErr := apperr.From(err)
			log.ErrorContext(ctx, "action failed",
				logger.Action(name),
				logger.UserID(identity.ID),
				logger.Error(err),
				logger.Code(appErr.Code))
			return Fail[Out](appErr), nil
		}

		return OK(out), nil
	}
}

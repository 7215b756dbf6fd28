package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/opshub-io/opshub/internal/action"
	"github.com/opshub-io/opshub/internal/apperr"
	"github.com/opshub-io/opshub/internal/auth"
	"github.com/opshub-io/opshub/pkg/binder"
)

// endpoint binds the JSON body, runs the wrapped action and renders the
// result envelope. Business failures ride inside the envelope with status
// 200; only transport-level problems (bad JSON, missing session) surface as
// HTTP statuses.
func endpoint[In, Out any](resolver action.Authenticator, db action.DB, log *slog.Logger, name string, fn action.HandlerFunc[In, Out]) http.HandlerFunc {
	wrapped := action.Wrap(resolver, db, log, name, fn)
	bind := binder.JSON()

	return func(w http.ResponseWriter, r *http.Request) {
		var input In
		if r.ContentLength != 0 {
			if err := bind(r, &input); err != nil {
				writeJSON(w, http.StatusBadRequest, action.Fail[Out](
					apperr.Validation("request body must be valid JSON")))
				return
			}
		}

		result, err := wrapped(r.Context(), input)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				redirectToLogin(w, r)
				return
			}
			writeJSON(w, http.StatusInternalServerError, action.Fail[Out](apperr.System()))
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

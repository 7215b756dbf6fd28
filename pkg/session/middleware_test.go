package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshub-io/opshub/pkg/session"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("session loaded into context", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, testConfig())

		rec := httptest.NewRecorder()
		_, err := m.Authenticate(context.Background(), rec, httptest.NewRequest(http.MethodGet, "/", nil), uuid.New())
		require.NoError(t, err)

		var seen *session.Session
		h := m.Middleware("/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = session.FromContext(r.Context())
		}))

		h.ServeHTTP(httptest.NewRecorder(), carryCookies(rec, "/dashboard"))
		require.NotNil(t, seen)
		assert.True(t, seen.IsAuthenticated())
	})

	t.Run("public path bypassed", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, testConfig())

		var hadSession bool
		h := m.Middleware("/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, hadSession = session.FromContext(r.Context())
		}))

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/login", nil))
		assert.False(t, hadSession)
	})

	t.Run("no session passes through without redirect", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, testConfig())

		called := false
		h := m.Middleware("/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
		}))

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		assert.True(t, called, "middleware never makes the authorization decision")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()

	protected := func(m *session.Manager) http.Handler {
		mux := http.NewServeMux()
		mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		mux.Handle("/dashboard", session.RequireAuth("/login")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})))
		return m.Middleware("/login")(mux)
	}

	t.Run("no session on private path redirects to login", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, testConfig())

		rec := httptest.NewRecorder()
		protected(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))

		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("login itself never redirected", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, testConfig())

		rec := httptest.NewRecorder()
		protected(m).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Location"))
	})

	t.Run("authenticated session passes", func(t *testing.T) {
		t.Parallel()
		m := newManager(t, testConfig())

		rec := httptest.NewRecorder()
		_, err := m.Authenticate(context.Background(), rec, httptest.NewRequest(http.MethodGet, "/", nil), uuid.New())
		require.NoError(t, err)

		out := httptest.NewRecorder()
		protected(m).ServeHTTP(out, carryCookies(rec, "/dashboard"))
		assert.Equal(t, http.StatusOK, out.Code)
	})
}

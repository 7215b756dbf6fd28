package session

import (
	"net/http"
	"path"
	"strings"
)

// Middleware loads the request's session into the context and proactively
// extends near-expiry sessions before handlers run. Paths on the public
// allow-list and static assets are passed through untouched. The middleware
// makes no authorization decision: that is always re-derived downstream.
func (m *Manager) Middleware(publicPaths ...string) func(http.Handler) http.Handler {
	public := make(map[string]struct{}, len(publicPaths))
	for _, p := range publicPaths {
		public[path.Clean(p)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := public[path.Clean(r.URL.Path)]; ok || isStaticAsset(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			session, err := m.Get(r.Context(), r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			// Sliding expiry: only sessions inside the refresh window are
			// extended, so most requests skip the store write.
			_ = m.Refresh(r.Context(), w, session)

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// RequireAuth redirects unauthenticated requests to the login surface.
// Mount after Middleware; it relies on the session placed in the context.
func RequireAuth(loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s, ok := FromContext(r.Context())
			if !ok || !s.IsAuthenticated() {
				http.Redirect(w, r, loginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func isStaticAsset(p string) bool {
	if strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/assets/") {
		return true
	}
	switch strings.ToLower(path.Ext(p)) {
	case ".css", ".js", ".map", ".ico", ".png", ".jpg", ".svg", ".woff", ".woff2":
		return true
	}
	return false
}

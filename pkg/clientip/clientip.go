// Package clientip resolves the originating client address of an HTTP
// request behind reverse proxies.
//
// Forwarding headers are consulted in priority order, falling back to the
// TCP peer address: CF-Connecting-IP, X-Forwarded-For (first valid entry),
// X-Real-IP, then RemoteAddr. Invalid header values are skipped rather than
// trusted. Middleware stores the resolved address in the request context so
// handlers and audit records can pick it up without re-parsing headers.
package clientip

import (
	"context"
	"net"
	"net/http"
	"strings"
)

type contextKey struct{}

// WithContext returns a copy of ctx carrying the resolved client IP.
func WithContext(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, contextKey{}, ip)
}

// FromContext returns the client IP stored by Middleware, or "" when absent.
func FromContext(ctx context.Context) string {
	ip, _ := ctx.Value(contextKey{}).(string)
	return ip
}

// Middleware resolves the client IP once per request and stores it in the
// request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithContext(r.Context(), Resolve(r))))
	})
}

// Resolve returns the client's IP address for r. It returns "" only when no
// candidate parses as a valid address.
func Resolve(r *http.Request) string {
	if ip := normalize(r.Header.Get("CF-Connecting-IP")); ip != "" {
		return ip
	}

	// X-Forwarded-For may hold a comma-separated chain; the first valid
	// entry is the original client.
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for _, candidate := range strings.Split(forwarded, ",") {
			if ip := normalize(candidate); ip != "" {
				return ip
			}
		}
	}

	if ip := normalize(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr without a port, e.g. in tests.
		return normalize(r.RemoteAddr)
	}
	return normalize(host)
}

// normalize validates a candidate address and returns its canonical string
// form, or "" when it does not parse.
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}

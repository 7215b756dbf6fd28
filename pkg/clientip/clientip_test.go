package clientip_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opshub-io/opshub/pkg/clientip"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	newRequest := func(remoteAddr string, headers map[string]string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.RemoteAddr = remoteAddr
		for k, v := range headers {
			r.Header.Set(k, v)
		}
		return r
	}

	t.Run("falls back to remote address", func(t *testing.T) {
		t.Parallel()
		r := newRequest("203.0.113.9:51234", nil)
		assert.Equal(t, "203.0.113.9", clientip.Resolve(r))
	})

	t.Run("prefers CF-Connecting-IP", func(t *testing.T) {
		t.Parallel()
		r := newRequest("10.0.0.1:80", map[string]string{
			"CF-Connecting-IP": "198.51.100.7",
			"X-Forwarded-For":  "192.0.2.1",
		})
		assert.Equal(t, "198.51.100.7", clientip.Resolve(r))
	})

	t.Run("uses first valid forwarded entry", func(t *testing.T) {
		t.Parallel()
		r := newRequest("10.0.0.1:80", map[string]string{
			"X-Forwarded-For": "not-an-ip, 192.0.2.44, 10.0.0.2",
		})
		assert.Equal(t, "192.0.2.44", clientip.Resolve(r))
	})

	t.Run("uses X-Real-IP when forwarded chain is garbage", func(t *testing.T) {
		t.Parallel()
		r := newRequest("10.0.0.1:80", map[string]string{
			"X-Forwarded-For": "nope",
			"X-Real-IP":       "192.0.2.99",
		})
		assert.Equal(t, "192.0.2.99", clientip.Resolve(r))
	})

	t.Run("normalizes IPv6", func(t *testing.T) {
		t.Parallel()
		r := newRequest("[2001:db8::1]:443", nil)
		assert.Equal(t, "2001:db8::1", clientip.Resolve(r))
	})

	t.Run("ignores spoofed invalid headers", func(t *testing.T) {
		t.Parallel()
		r := newRequest("203.0.113.9:51234", map[string]string{
			"CF-Connecting-IP": "<script>",
			"X-Forwarded-For":  "999.999.999.999",
			"X-Real-IP":        "",
		})
		assert.Equal(t, "203.0.113.9", clientip.Resolve(r))
	})
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	var seen string
	handler := clientip.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = clientip.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "192.0.2.10", seen)
}

func TestContext(t *testing.T) {
	t.Parallel()

	ctx := clientip.WithContext(context.Background(), "192.0.2.5")
	assert.Equal(t, "192.0.2.5", clientip.FromContext(ctx))
	assert.Empty(t, clientip.FromContext(context.Background()))
}

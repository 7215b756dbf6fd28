package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/pkg/cookie"
)

// Manager handles session operations.
type Manager struct {
	store         Store
	transport     Transport
	config        Config
	cookieManager *cookie.Manager
}

// New creates a new session manager with the given options.
func New(opts ...Option) *Manager {
	m := &Manager{
		config: DefaultConfig(),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.store == nil {
		m.store = NewMemoryStore(m.config.CleanupInterval)
	}

	if m.transport == nil {
		if m.cookieManager == nil {
			// Fail fast on misconfiguration to prevent insecure runtime behavior.
			panic("session: cookie manager is required when using default cookie transport")
		}
		m.transport = NewCookieTransport(m.cookieManager, m.config.CookieName, m.config.SecureCookies)
	}

	return m
}

// Get retrieves the existing session carried by the request.
func (m *Manager) Get(ctx context.Context, r *http.Request) (*Session, error) {
	token, err := m.transport.GetToken(r)
	if err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	return session, nil
}

// Authenticate upgrades the request's session to an authenticated one.
// The token is rotated to prevent session fixation.
func (m *Manager) Authenticate(ctx context.Context, w http.ResponseWriter, r *http.Request, userID uuid.UUID) (*Session, error) {
	session, err := m.Get(ctx, r)
	if err != nil {
		token, err := generateToken()
		if err != nil {
			return nil, err
		}
		session = NewSession(token, &userID, m.config.Timeout(true))
		if err := m.store.Create(ctx, session); err != nil {
			return nil, err
		}
	} else {
		_ = m.store.Delete(ctx, session.Token)

		newToken, err := generateToken()
		if err != nil {
			return nil, err
		}

		session.Token = newToken
		session.UserID = &userID
		session.ExpiresAt = time.Now().Add(m.config.Timeout(true))
		session.Touch()

		if err := m.store.Create(ctx, session); err != nil {
			return nil, err
		}
	}

	if err := m.transport.SetToken(w, session.Token, m.config.Timeout(true)); err != nil {
		_ = m.store.Delete(ctx, session.Token)
		return nil, err
	}

	return session, nil
}

// Refresh extends a session that is inside the refresh window, re-issuing
// the cookie so a near-expiry session survives the current page visit.
// Sessions outside the window are left untouched.
func (m *Manager) Refresh(ctx context.Context, w http.ResponseWriter, session *Session) error {
	if session == nil {
		return ErrInvalidSession
	}

	if !session.ExpiresWithin(m.config.RefreshWindow) {
		return nil
	}

	ttl := m.config.Timeout(session.IsAuthenticated())
	session.ExpiresAt = time.Now().Add(ttl)
	session.Touch()

	if err := m.store.Update(ctx, session); err != nil {
		return err
	}

	return m.transport.SetToken(w, session.Token, ttl)
}

// Destroy deletes the session and clears the client token.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	token, err := m.transport.GetToken(r)
	if err == nil && token != "" {
		_ = m.store.Delete(ctx, token)
	}
	return m.transport.ClearToken(w)
}

// generateToken produces a 256-bit URL-safe random token.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

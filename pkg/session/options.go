package session

import "github.com/opshub-io/opshub/pkg/cookie"

// Option configures the session Manager.
type Option func(*Manager)

// WithStore sets the session persistence backend.
func WithStore(store Store) Option {
	return func(m *Manager) {
		if store != nil {
			m.store = store
		}
	}
}

// WithTransport sets a custom token transport.
func WithTransport(t Transport) Option {
	return func(m *Manager) {
		if t != nil {
			m.transport = t
		}
	}
}

// WithConfig replaces the manager configuration.
func WithConfig(cfg Config) Option {
	return func(m *Manager) { m.config = cfg }
}

// WithCookieManager supplies the cookie manager used by the default
// cookie transport.
func WithCookieManager(cm *cookie.Manager) Option {
	return func(m *Manager) { m.cookieManager = cm }
}

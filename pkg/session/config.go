package session

import "time"

type Config struct {
	CookieName      string        `env:"SESSION_COOKIE_NAME" envDefault:"opshub_session"` // CookieName is the name of the session cookie.
	IdleTimeout     time.Duration `env:"SESSION_IDLE_TIMEOUT" envDefault:"30m"`           // IdleTimeout applies to anonymous sessions.
	AuthTimeout     time.Duration `env:"SESSION_AUTH_TIMEOUT" envDefault:"24h"`           // AuthTimeout applies to authenticated sessions.
	RefreshWindow   time.Duration `env:"SESSION_REFRESH_WINDOW" envDefault:"15m"`         // RefreshWindow: sessions expiring within it are extended by the middleware.
	SecureCookies   bool          `env:"SESSION_SECURE_COOKIES" envDefault:"true"`        // SecureCookies sets the Secure flag on session cookies.
	CleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"5m"`        // CleanupInterval is how often the memory store evicts expired sessions.
}

// DefaultConfig returns production-safe session defaults.
func DefaultConfig() Config {
	return Config{
		CookieName:      "opshub_session",
		IdleTimeout:     30 * time.Minute,
		AuthTimeout:     24 * time.Hour,
		RefreshWindow:   15 * time.Minute,
		SecureCookies:   true,
		CleanupInterval: 5 * time.Minute,
	}
}

// Timeout returns the applicable session lifetime for the given auth state.
func (c Config) Timeout(authenticated bool) time.Duration {
	if authenticated {
		return c.AuthTimeout
	}
	return c.IdleTimeout
}

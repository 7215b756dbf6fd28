// Package session manages authenticated browser sessions for OpsHub.
//
// A Manager combines a Store (memory for development, Redis in production)
// with a Transport that carries the opaque token in a signed cookie. The
// Middleware loads the session into the request context and extends sessions
// that are close to expiry, while leaving authorization entirely to the
// layers below it. Tokens are rotated on authentication to prevent fixation.
package session

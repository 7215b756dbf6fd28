package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/internal/apperr"
	"github.com/opshub-io/opshub/pkg/session"
)

// UserStore provides the minimal user lookup the resolver needs.
type UserStore interface {
	GetUserEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

// AssignmentStore loads all tenant-scoped role assignments for a user.
type AssignmentStore interface {
	ListAssignments(ctx context.Context, userID uuid.UUID) ([]Assignment, error)
}

// Resolver derives the caller's Identity from the request-scoped session.
// It returns values, never redirects: the HTTP layer decides navigation.
type Resolver struct {
	users       UserStore
	assignments AssignmentStore
}

func NewResolver(users UserStore, assignments AssignmentStore) *Resolver {
	return &Resolver{users: users, assignments: assignments}
}

// RequireAuth resolves the current Identity or fails with ErrUnauthenticated
// when the context carries no authenticated session. On success the
// identity includes every (tenant, role) pair assigned to the user.
func (r *Resolver) RequireAuth(ctx context.Context) (Identity, error) {
	s, ok := session.FromContext(ctx)
	if !ok || !s.IsAuthenticated() {
		return Identity{}, ErrUnauthenticated
	}

	email, err := r.users.GetUserEmail(ctx, *s.UserID)
	if err != nil {
		return Identity{}, fmt.Errorf("resolve identity: %w", err)
	}

	assignments, err := r.assignments.ListAssignments(ctx, *s.UserID)
	if err != nil {
		return Identity{}, fmt.Errorf("resolve role assignments: %w", err)
	}

	return NewIdentity(*s.UserID, email, assignments), nil
}

// CurrentUser is RequireAuth with absence signalled as a boolean instead of
// an error, for callers that branch on presence without forcing navigation.
func (r *Resolver) CurrentUser(ctx context.Context) (Identity, bool, error) {
	identity, err := r.RequireAuth(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthenticated) {
			return Identity{}, false, nil
		}
		return Identity{}, false, err
	}
	return identity, true, nil
}

// RequireRole resolves the identity and checks role membership within the
// tenant, failing with the standard authorization error. This is the
// fast-fail enforcement point at the start of privileged mutations; the data
// store's row-level policies remain the ultimate trust boundary.
func (r *Resolver) RequireRole(ctx context.Context, tenantID uuid.UUID, roles ...Role) (Identity, error) {
	identity, err := r.RequireAuth(ctx)
	if err != nil {
		return Identity{}, err
	}

	if !identity.HasRole(tenantID, roles...) {
		return Identity{}, apperr.Denied()
	}

	return identity, nil
}

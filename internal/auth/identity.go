package auth

import (
	"slices"

	"github.com/google/uuid"
)

// Identity is the caller's resolved identity for one request. It is built
// fresh from the session and the role-assignment store on every request and
// never cached across requests. Treat it as immutable once resolved.
type Identity struct {
	ID        uuid.UUID
	Email     string
	TenantIDs []uuid.UUID
	Roles     []Assignment
}

// NewIdentity constructs an Identity, deriving TenantIDs as the distinct set
// of tenant IDs present in the assignments. A user with zero assignments is
// a valid identity with empty TenantIDs and Roles.
func NewIdentity(id uuid.UUID, email string, roles []Assignment) Identity {
	tenantIDs := make([]uuid.UUID, 0, len(roles))
	for _, a := range roles {
		if !slices.Contains(tenantIDs, a.TenantID) {
			tenantIDs = append(tenantIDs, a.TenantID)
		}
	}
	return Identity{
		ID:        id,
		Email:     email,
		TenantIDs: tenantIDs,
		Roles:     slices.Clone(roles),
	}
}

// HasRole reports whether the identity holds one of the given roles within
// the given tenant. Pure predicate: no side effects, no I/O. Holding one of
// the roles in a different tenant never qualifies.
func (i Identity) HasRole(tenantID uuid.UUID, roles ...Role) bool {
	for _, a := range i.Roles {
		if a.TenantID != tenantID {
			continue
		}
		if slices.Contains(roles, a.Role) {
			return true
		}
	}
	return false
}

// MemberOf reports whether the identity belongs to the tenant at all.
func (i Identity) MemberOf(tenantID uuid.UUID) bool {
	return slices.Contains(i.TenantIDs, tenantID)
}

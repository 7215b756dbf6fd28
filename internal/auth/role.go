package auth

import (
	"fmt"

	"github.com/google/uuid"
)

// Role is a named permission level held by a user within a specific tenant.
// The set is closed: external representations carrying any other value are
// rejected rather than silently accepted.
type Role string

const (
	RoleMember      Role = "member"
	RoleApprover    Role = "approver"
	RolePM          Role = "pm"
	RoleAccounting  Role = "accounting"
	RoleITAdmin     Role = "it_admin"
	RoleTenantAdmin Role = "tenant_admin"
)

// AllRoles lists every recognized role.
var AllRoles = []Role{RoleMember, RoleApprover, RolePM, RoleAccounting, RoleITAdmin, RoleTenantAdmin}

// ParseRole validates an external role string against the closed set.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleMember, RoleApprover, RolePM, RoleAccounting, RoleITAdmin, RoleTenantAdmin:
		return Role(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// Assignment binds a role to a user within one tenant. Roles are never
// global: the same user may hold different roles in different tenants.
type Assignment struct {
	TenantID uuid.UUID
	Role     Role
}

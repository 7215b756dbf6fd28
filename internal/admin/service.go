package admin

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/opshub-io/opshub/internal/action"
	"github.com/opshub-io/opshub/internal/apperr"
	"github.com/opshub-io/opshub/internal/audit"
	"github.com/opshub-io/opshub/internal/auth"
)

// adminRoles may manage users and role assignments.
var adminRoles = []auth.Role{auth.RoleTenantAdmin, auth.RoleITAdmin}

const minPasswordLength = 8

// Service implements tenant administration: accounts, role assignments and
// audit log browsing.
type Service struct {
	audit *audit.Writer
}

func NewService(auditWriter *audit.Writer) *Service {
	return &Service{audit: auditWriter}
}

type CreateUserInput struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Email    string    `json:"email"`
	Name     string    `json:"name"`
	Password string    `json:"password"`
	Role     string    `json:"role"`
}

// CreateUser registers an account and grants it an initial role in the
// tenant. The role defaults to member when left empty.
func (s *Service) CreateUser(ctx context.Context, identity auth.Identity, db action.DB, in CreateUserInput) (User, error) {
	if !identity.HasRole(in.TenantID, adminRoles...) {
		return User{}, apperr.Denied()
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return User{}, apperr.Validation("a valid email address is required").AddField("email", "invalid")
	}
	if len(in.Password) < minPasswordLength {
		return User{}, apperr.Validation("password is too short").
			AddField("password", "must be at least 8 characters")
	}

	role := auth.RoleMember
	if in.Role != "" {
		parsed, err := auth.ParseRole(in.Role)
		if err != nil {
			return User{}, apperr.Validation("unknown role").AddField("role", "unrecognized role name")
		}
		role = parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	u := User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Active:       true,
	}

	if err := insertUser(ctx, db, u); err != nil {
		return User{}, err
	}
	if err := insertAssignment(ctx, db, in.TenantID, u.ID, role); err != nil {
		return User{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     in.TenantID,
		UserID:       identity.ID,
		Action:       "user.create",
		ResourceType: "user",
		ResourceID:   &u.ID,
		After:        map[string]any{"email": u.Email, "role": string(role)},
	})

	return u, nil
}

type DeactivateUserInput struct {
	TenantID uuid.UUID `json:"tenant_id"`
	UserID   uuid.UUID `json:"user_id"`
}

// DeactivateUser flags an account inactive so it can no longer sign in.
// The target must hold a role in the caller's tenant; admins do not reach
// accounts outside their tenant.
func (s *Service) DeactivateUser(ctx context.Context, identity auth.Identity, db action.DB, in DeactivateUserInput) (User, error) {
	if !identity.HasRole(in.TenantID, adminRoles...) {
		return User{}, apperr.Denied()
	}
	if in.UserID == identity.ID {
		return User{}, apperr.Validation("you cannot deactivate your own account").
			AddField("user_id", "must not be the caller")
	}

	member, err := userHasTenantRole(ctx, db, in.TenantID, in.UserID)
	if err != nil {
		return User{}, err
	}
	if !member {
		return User{}, errUserNotFound()
	}

	if err := setUserActive(ctx, db, in.UserID, false); err != nil {
		return User{}, err
	}

	u, err := getUser(ctx, db, in.UserID)
	if err != nil {
		return User{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     in.TenantID,
		UserID:       identity.ID,
		Action:       "user.deactivate",
		ResourceType: "user",
		ResourceID:   &in.UserID,
		Before:       map[string]any{"active": true},
		After:        map[string]any{"active": false},
	})

	return u, nil
}

type ListMembersInput struct {
	TenantID uuid.UUID `json:"tenant_id"`
}

func (s *Service) ListMembers(ctx context.Context, identity auth.Identity, db action.DB, in ListMembersInput) ([]Member, error) {
	if !identity.HasRole(in.TenantID, adminRoles...) {
		return nil, apperr.Denied()
	}
	return listMembers(ctx, db, in.TenantID)
}

type RoleInput struct {
	TenantID uuid.UUID `json:"tenant_id"`
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"`
}

// GrantRole adds a (tenant, role) pair to a user. Granting an already held
// role is a no-op.
func (s *Service) GrantRole(ctx context.Context, identity auth.Identity, db action.DB, in RoleInput) (struct{}, error) {
	if !identity.HasRole(in.TenantID, adminRoles...) {
		return struct{}{}, apperr.Denied()
	}

	role, err := auth.ParseRole(in.Role)
	if err != nil {
		return struct{}{}, apperr.Validation("unknown role").AddField("role", "unrecognized role name")
	}

	if _, err := getUser(ctx, db, in.UserID); err != nil {
		return struct{}{}, err
	}

	if err := insertAssignment(ctx, db, in.TenantID, in.UserID, role); err != nil {
		return struct{}{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     in.TenantID,
		UserID:       identity.ID,
		Action:       "role.grant",
		ResourceType: "role_assignment",
		ResourceID:   &in.UserID,
		After:        map[string]any{"role": string(role)},
	})

	return struct{}{}, nil
}

// RevokeRole removes a (tenant, role) pair from a user.
func (s *Service) RevokeRole(ctx context.Context, identity auth.Identity, db action.DB, in RoleInput) (struct{}, error) {
	if !identity.HasRole(in.TenantID, adminRoles...) {
		return struct{}{}, apperr.Denied()
	}

	role, err := auth.ParseRole(in.Role)
	if err != nil {
		return struct{}{}, apperr.Validation("unknown role").AddField("role", "unrecognized role name")
	}

	if err := deleteAssignment(ctx, db, in.TenantID, in.UserID, role); err != nil {
		return struct{}{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     in.TenantID,
		UserID:       identity.ID,
		Action:       "role.revoke",
		ResourceType: "role_assignment",
		ResourceID:   &in.UserID,
		Before:       map[string]any{"role": string(role)},
	})

	return struct{}{}, nil
}

type ListAuditInput struct {
	TenantID uuid.UUID `json:"tenant_id"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

// ListAuditLog pages through the tenant's audit trail, newest first.
func (s *Service) ListAuditLog(ctx context.Context, identity auth.Identity, db action.DB, in ListAuditInput) ([]audit.Entry, error) {
	if !identity.HasRole(in.TenantID, adminRoles...) {
		return nil, apperr.Denied()
	}
	return audit.NewPGStore(db).List(ctx, in.TenantID, in.Limit, in.Offset)
}

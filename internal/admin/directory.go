package admin

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/opshub-io/opshub/internal/auth"
	"github.com/opshub-io/opshub/pkg/pg"
)

// ErrNoSuchUser is returned by credential lookups for unknown or inactive
// accounts. Callers render it as a generic invalid-credentials failure.
var ErrNoSuchUser = errors.New("admin: no such user")

// DB is the pgx read surface the directory needs; *pgxpool.Pool satisfies
// it.
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Directory answers identity lookups against the users and role_assignments
// tables. It backs both session login and per-request identity resolution.
type Directory struct {
	db DB
}

func NewDirectory(db DB) *Directory {
	return &Directory{db: db}
}

// GetUserEmail implements auth.UserStore. Deactivated accounts resolve as
// unauthenticated so an existing session stops working the moment the
// account is switched off.
func (d *Directory) GetUserEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	row := d.db.QueryRow(ctx, `
		SELECT email, active
		FROM users
		WHERE id = $1`,
		userID,
	)

	var (
		email  string
		active bool
	)
	if err := row.Scan(&email, &active); err != nil {
		if pg.IsNotFoundError(err) {
			return "", auth.ErrUnauthenticated
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if !active {
		return "", auth.ErrUnauthenticated
	}
	return email, nil
}

// ListAssignments implements auth.AssignmentStore.
func (d *Directory) ListAssignments(ctx context.Context, userID uuid.UUID) ([]auth.Assignment, error) {
	rows, err := d.db.Query(ctx, `
		SELECT tenant_id, role
		FROM role_assignments
		WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list role assignments: %w", err)
	}
	defer rows.Close()

	var assignments []auth.Assignment
	for rows.Next() {
		var a auth.Assignment
		if err := rows.Scan(&a.TenantID, &a.Role); err != nil {
			return nil, fmt.Errorf("scan role assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// GetUserByEmail returns the active account for a login attempt, including
// the password hash for comparison.
func (d *Directory) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := d.db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE email = $1 AND active`,
		strings.ToLower(strings.TrimSpace(email)),
	)

	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return User{}, ErrNoSuchUser
		}
		return User{}, fmt.Errorf("lookup user by email: %w", err)
	}
	return u, nil
}

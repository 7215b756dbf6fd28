package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/internal/action"
	"github.com/opshub-io/opshub/internal/auth"
	"github.com/opshub-io/opshub/pkg/pg"
)

const userColumns = `id, email, name, password_hash, active, created_at, updated_at`

func insertUser(ctx context.Context, db action.DB, u User) error {
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, email, name, password_hash, active)
		VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Active,
	)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return errEmailTaken()
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func getUser(ctx context.Context, db action.DB, id uuid.UUID) (User, error) {
	row := db.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1`,
		id,
	)

	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return User{}, errUserNotFound()
		}
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func setUserActive(ctx context.Context, db action.DB, id uuid.UUID, active bool) error {
	tag, err := db.Exec(ctx, `
		UPDATE users
		SET active = $2, updated_at = now()
		WHERE id = $1`,
		id, active,
	)
	if err != nil {
		return fmt.Errorf("update user active flag: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errUserNotFound()
	}
	return nil
}

// listMembers returns every user holding at least one role in the tenant,
// with their roles aggregated.
func listMembers(ctx context.Context, db action.DB, tenantID uuid.UUID) ([]Member, error) {
	rows, err := db.Query(ctx, `
		SELECT u.id, u.email, u.name, u.active, u.created_at, ra.role
		FROM users u
		JOIN role_assignments ra ON ra.user_id = u.id
		WHERE ra.tenant_id = $1
		ORDER BY u.email, ra.role`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []Member
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			u    User
			role auth.Role
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Active, &u.CreatedAt, &role); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		if i, ok := index[u.ID]; ok {
			members[i].Roles = append(members[i].Roles, role)
			continue
		}
		index[u.ID] = len(members)
		members = append(members, Member{User: u, Roles: []auth.Role{role}})
	}
	return members, rows.Err()
}

func insertAssignment(ctx context.Context, db action.DB, tenantID, userID uuid.UUID, role auth.Role) error {
	_, err := db.Exec(ctx, `
		INSERT INTO role_assignments (tenant_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (tenant_id, user_id, role) DO NOTHING`,
		tenantID, userID, role,
	)
	if err != nil {
		return fmt.Errorf("insert role assignment: %w", err)
	}
	return nil
}

func deleteAssignment(ctx context.Context, db action.DB, tenantID, userID uuid.UUID, role auth.Role) error {
	tag, err := db.Exec(ctx, `
		DELETE FROM role_assignments
		WHERE tenant_id = $1 AND user_id = $2 AND role = $3`,
		tenantID, userID, role,
	)
	if err != nil {
		return fmt.Errorf("delete role assignment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errAssignmentNotFound()
	}
	return nil
}

func userHasTenantRole(ctx context.Context, db action.DB, tenantID, userID uuid.UUID) (bool, error) {
	row := db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM role_assignments
			WHERE tenant_id = $1 AND user_id = $2
		)`,
		tenantID, userID,
	)

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("check tenant membership: %w", err)
	}
	return exists, nil
}

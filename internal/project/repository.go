package project

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/internal/action"
	"github.com/opshub-io/opshub/pkg/pg"
)

const projectColumns = `id, tenant_id, name, description, status, created_by, created_at, updated_at`

const taskColumns = `id, tenant_id, project_id, title, description, status, assignee_id, created_by, created_at, updated_at`

func insertProject(ctx context.Context, db action.DB, p Project) error {
	_, err := db.Exec(ctx, `
		INSERT INTO projects (id, tenant_id, name, description, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.TenantID, p.Name, p.Description, p.Status, p.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func getProject(ctx context.Context, db action.DB, tenantID, id uuid.UUID) (Project, error) {
	row := db.QueryRow(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)

	var p Project
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Status,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Project{}, errProjectNotFound()
		}
		return Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func updateProjectStatus(ctx context.Context, db action.DB, p Project) error {
	tag, err := db.Exec(ctx, `
		UPDATE projects
		SET status = $3, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		p.TenantID, p.ID, p.Status,
	)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errProjectNotFound()
	}
	return nil
}

func listProjects(ctx context.Context, db action.DB, tenantID uuid.UUID) ([]Project, error) {
	rows, err := db.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE tenant_id = $1
		ORDER BY created_at DESC`,
		tenantID,
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.TenantID, &p.Name, &p.Description, &p.Status,
			&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func insertTask(ctx context.Context, db action.DB, t Task) error {
	_, err := db.Exec(ctx, `
		INSERT INTO tasks (id, tenant_id, project_id, title, description, status, assignee_id, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.TenantID, t.ProjectID, t.Title, t.Description, t.Status, t.AssigneeID, t.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func getTask(ctx context.Context, db action.DB, tenantID, id uuid.UUID) (Task, error) {
	row := db.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)

	var t Task
	err := row.Scan(&t.ID, &t.TenantID, &t.ProjectID, &t.Title, &t.Description,
		&t.Status, &t.AssigneeID, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Task{}, errTaskNotFound()
		}
		return Task{}, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func updateTask(ctx context.Context, db action.DB, t Task) error {
	tag, err := db.Exec(ctx, `
		UPDATE tasks
		SET status = $3, assignee_id = $4, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		t.TenantID, t.ID, t.Status, t.AssigneeID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errTaskNotFound()
	}
	return nil
}

func listTasks(ctx context.Context, db action.DB, tenantID, projectID uuid.UUID) ([]Task, error) {
	rows, err := db.Query(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE tenant_id = $1 AND project_id = $2
		ORDER BY created_at DESC`,
		tenantID, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.TenantID, &t.ProjectID, &t.Title, &t.Description,
			&t.Status, &t.AssigneeID, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

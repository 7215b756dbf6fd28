package timesheet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/internal/action"
	"github.com/opshub-io/opshub/pkg/pg"
)

const entryColumns = `id, tenant_id, user_id, project_id, entry_date, hours, note, created_at, updated_at`

func insertEntry(ctx context.Context, db action.DB, e Entry) error {
	_, err := db.Exec(ctx, `
		INSERT INTO timesheet_entries (id, tenant_id, user_id, project_id, entry_date, hours, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.TenantID, e.UserID, e.ProjectID, e.Date, e.Hours, e.Note,
	)
	if err != nil {
		return fmt.Errorf("insert timesheet entry: %w", err)
	}
	return nil
}

func getEntry(ctx context.Context, db action.DB, tenantID, id uuid.UUID) (Entry, error) {
	row := db.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM timesheet_entries
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)

	var e Entry
	err := row.Scan(&e.ID, &e.TenantID, &e.UserID, &e.ProjectID, &e.Date,
		&e.Hours, &e.Note, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Entry{}, errEntryNotFound()
		}
		return Entry{}, fmt.Errorf("get timesheet entry: %w", err)
	}
	return e, nil
}

func updateEntry(ctx context.Context, db action.DB, e Entry) error {
	tag, err := db.Exec(ctx, `
		UPDATE timesheet_entries
		SET entry_date = $3, hours = $4, note = $5, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		e.TenantID, e.ID, e.Date, e.Hours, e.Note,
	)
	if err != nil {
		return fmt.Errorf("update timesheet entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errEntryNotFound()
	}
	return nil
}

func deleteEntry(ctx context.Context, db action.DB, tenantID, id uuid.UUID) error {
	tag, err := db.Exec(ctx, `
		DELETE FROM timesheet_entries
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)
	if err != nil {
		return fmt.Errorf("delete timesheet entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errEntryNotFound()
	}
	return nil
}

// listEntries returns a tenant's entries oldest first, optionally narrowed
// to one user and a [from, to) date range.
func listEntries(ctx context.Context, db action.DB, tenantID uuid.UUID, userID *uuid.UUID, from, to *time.Time) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM timesheet_entries WHERE tenant_id = $1`
	args := []any{tenantID}
	if userID != nil {
		args = append(args, *userID)
		query += fmt.Sprintf(` AND user_id = $%d`, len(args))
	}
	if from != nil {
		args = append(args, *from)
		query += fmt.Sprintf(` AND entry_date >= $%d`, len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += fmt.Sprintf(` AND entry_date < $%d`, len(args))
	}
	query += ` ORDER BY entry_date, created_at`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list timesheet entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.TenantID, &e.UserID, &e.ProjectID, &e.Date,
			&e.Hours, &e.Note, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan timesheet entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

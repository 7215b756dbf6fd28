package workflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/internal/action"
	"github.com/opshub-io/opshub/pkg/pg"
)

const requestColumns = `id, tenant_id, requester_id, kind, title, description, amount_cents, status, decision_note, decider_id, created_at, updated_at`

func insertRequest(ctx context.Context, db action.DB, r Request) error {
	_, err := db.Exec(ctx, `
		INSERT INTO workflow_requests (id, tenant_id, requester_id, kind, title, description, amount_cents, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.TenantID, r.RequesterID, r.Kind, r.Title, r.Description, r.AmountCents, r.Status,
	)
	if err != nil {
		return fmt.Errorf("insert workflow request: %w", err)
	}
	return nil
}

func getRequest(ctx context.Context, db action.DB, tenantID, id uuid.UUID) (Request, error) {
	row := db.QueryRow(ctx, `
		SELECT `+requestColumns+`
		FROM workflow_requests
		WHERE tenant_id = $1 AND id = $2`,
		tenantID, id,
	)

	var r Request
	err := row.Scan(&r.ID, &r.TenantID, &r.RequesterID, &r.Kind, &r.Title, &r.Description,
		&r.AmountCents, &r.Status, &r.DecisionNote, &r.DeciderID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return Request{}, errNotFound()
		}
		return Request{}, fmt.Errorf("get workflow request: %w", err)
	}
	return r, nil
}

func updateRequestStatus(ctx context.Context, db action.DB, r Request) error {
	tag, err := db.Exec(ctx, `
		UPDATE workflow_requests
		SET status = $3, decision_note = $4, decider_id = $5, updated_at = now()
		WHERE tenant_id = $1 AND id = $2`,
		r.TenantID, r.ID, r.Status, r.DecisionNote, r.DeciderID,
	)
	if err != nil {
		return fmt.Errorf("update workflow request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errNotFound()
	}
	return nil
}

func listRequests(ctx context.Context, db action.DB, tenantID uuid.UUID, requesterID *uuid.UUID) ([]Request, error) {
	query := `SELECT ` + requestColumns + ` FROM workflow_requests WHERE tenant_id = $1`
	args := []any{tenantID}
	if requesterID != nil {
		query += ` AND requester_id = $2`
		args = append(args, *requesterID)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workflow requests: %w", err)
	}
	defer rows.Close()

	var requests []Request
	for rows.Next() {
		var r Request
		if err := rows.Scan(&r.ID, &r.TenantID, &r.RequesterID, &r.Kind, &r.Title, &r.Description,
			&r.AmountCents, &r.Status, &r.DecisionNote, &r.DeciderID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan workflow request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

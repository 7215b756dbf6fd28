package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only audit record: who did what to which resource.
// Entries are write-once; nothing in this subsystem mutates or deletes them.
// The timestamp is assigned by the database on insert.
type Entry struct {
	ID           uuid.UUID      `json:"id"`
	TenantID     uuid.UUID      `json:"tenant_id"`
	UserID       uuid.UUID      `json:"user_id"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   *uuid.UUID     `json:"resource_id,omitempty"`
	Before       map[string]any `json:"before_data,omitempty"`
	After        map[string]any `json:"after_data,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Validate checks the fields required for a meaningful audit trail.
func (e *Entry) Validate() error {
	if e.TenantID == uuid.Nil {
		return ErrMissingTenant
	}
	if e.UserID == uuid.Nil {
		return ErrMissingUser
	}
	if e.Action == "" {
		return ErrMissingAction
	}
	if e.ResourceType == "" {
		return ErrMissingResource
	}
	return nil
}

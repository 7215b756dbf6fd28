package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/pkg/transition"
)

// Kind identifies what a request asks for.
type Kind string

const (
	KindExpense  Kind = "expense"
	KindLeave    Kind = "leave"
	KindPurchase Kind = "purchase"
)

// ParseKind validates an external kind string.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindExpense, KindLeave, KindPurchase:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Status is the approval state of a request.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Transitions is the fixed table every status mutation consults.
// Approved and cancelled are terminal; a rejected request may be reworked
// and resubmitted.
var Transitions = transition.Table[Status]{
	StatusDraft:     {StatusSubmitted, StatusCancelled},
	StatusSubmitted: {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {},
	StatusRejected:  {StatusSubmitted, StatusCancelled},
	StatusCancelled: {},
}

// Request is one approval workflow item: an expense claim, leave request,
// or purchase order awaiting decision.
type Request struct {
	ID           uuid.UUID  `json:"id"`
	TenantID     uuid.UUID  `json:"tenant_id"`
	RequesterID  uuid.UUID  `json:"requester_id"`
	Kind         Kind       `json:"kind"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	AmountCents  *int64     `json:"amount_cents,omitempty"`
	Status       Status     `json:"status"`
	DecisionNote *string    `json:"decision_note,omitempty"`
	DeciderID    *uuid.UUID `json:"decider_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// snapshot captures the audited view of a request.
func (r Request) snapshot() map[string]any {
	m := map[string]any{
		"status": string(r.Status),
		"kind":   string(r.Kind),
		"title":  r.Title,
	}
	if r.AmountCents != nil {
		m["amount_cents"] = *r.AmountCents
	}
	if r.DecisionNote != nil {
		m["decision_note"] = *r.DecisionNote
	}
	return m
}

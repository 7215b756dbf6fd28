package workflow

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/internal/action"
	"github.com/opshub-io/opshub/internal/apperr"
	"github.com/opshub-io/opshub/internal/audit"
	"github.com/opshub-io/opshub/internal/auth"
)

// reviewRoles lists who may see and decide a tenant's full request queue.
var reviewRoles = []auth.Role{auth.RoleApprover, auth.RoleAccounting, auth.RoleTenantAdmin}

// Service implements the approval workflow operations. Every mutation
// consults the Transitions table and records an audit entry after it
// commits.
type Service struct {
	audit *audit.Writer
}

func NewService(auditWriter *audit.Writer) *Service {
	return &Service{audit: auditWriter}
}

type CreateInput struct {
	TenantID    uuid.UUID `json:"tenant_id"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	AmountCents *int64    `json:"amount_cents"`
}

// Create stores a new request in draft. Any member of the tenant may create
// requests on their own behalf.
func (s *Service) Create(ctx context.Context, identity auth.Identity, db action.DB, in CreateInput) (Request, error) {
	if !identity.MemberOf(in.TenantID) {
		return Request{}, apperr.Denied()
	}

	kind, err := ParseKind(in.Kind)
	if err != nil {
		return Request{}, apperr.Validation("unknown request kind").AddField("kind", "must be one of expense, leave, purchase")
	}

	if strings.TrimSpace(in.Title) == "" {
		return Request{}, apperr.Validation("title is required").AddField("title", "required")
	}

	if err := validateAmount(kind, in.AmountCents); err != nil {
		return Request{}, err
	}

	r := Request{
		ID:          uuid.New(),
		TenantID:    in.TenantID,
		RequesterID: identity.ID,
		Kind:        kind,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		AmountCents: in.AmountCents,
		Status:      StatusDraft,
	}

	if err := insertRequest(ctx, db, r); err != nil {
		return Request{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     r.TenantID,
		UserID:       identity.ID,
		Action:       "workflow.create",
		ResourceType: "workflow_request",
		ResourceID:   &r.ID,
		After:        r.snapshot(),
		Metadata:     map[string]any{"kind": string(kind)},
	})

	return r, nil
}

type SubmitInput struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	RequestID uuid.UUID `json:"request_id"`
}

// Submit moves a draft (or reworked rejected) request into the review queue.
// Only the requester may submit.
func (s *Service) Submit(ctx context.Context, identity auth.Identity, db action.DB, in SubmitInput) (Request, error) {
	r, err := getRequest(ctx, db, in.TenantID, in.RequestID)
	if err != nil {
		return Request{}, err
	}

	if r.RequesterID != identity.ID {
		return Request{}, apperr.Denied()
	}

	return s.moveTo(ctx, identity, db, r, StatusSubmitted, nil, "workflow.submit")
}

type DecideInput struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	RequestID uuid.UUID `json:"request_id"`
	Approve   bool      `json:"approve"`
	Note      string    `json:"note"`
}

// Decide approves or rejects a submitted request. Approvers and tenant
// admins may decide any kind; accounting may additionally decide expense and
// purchase requests. Nobody decides their own request, whatever their role.
func (s *Service) Decide(ctx context.Context, identity auth.Identity, db action.DB, in DecideInput) (Request, error) {
	r, err := getRequest(ctx, db, in.TenantID, in.RequestID)
	if err != nil {
		return Request{}, err
	}

	if !identity.HasRole(in.TenantID, decisionRoles(r.Kind)...) {
		return Request{}, apperr.Denied()
	}
	if r.RequesterID == identity.ID {
		return Request{}, errOwnRequest()
	}

	target := StatusApproved
	note := strings.TrimSpace(in.Note)
	if !in.Approve {
		target = StatusRejected
		if note == "" {
			return Request{}, errNoteRequired()
		}
	}

	var notePtr *string
	if note != "" {
		notePtr = &note
	}

	auditAction := "workflow.approve"
	if !in.Approve {
		auditAction = "workflow.reject"
	}
	return s.moveTo(ctx, identity, db, r, target, notePtr, auditAction)
}

type CancelInput struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	RequestID uuid.UUID `json:"request_id"`
}

// Cancel withdraws a request. The requester or a tenant admin may cancel
// anything the transition table still allows to be cancelled.
func (s *Service) Cancel(ctx context.Context, identity auth.Identity, db action.DB, in CancelInput) (Request, error) {
	r, err := getRequest(ctx, db, in.TenantID, in.RequestID)
	if err != nil {
		return Request{}, err
	}

	if r.RequesterID != identity.ID && !identity.HasRole(in.TenantID, auth.RoleTenantAdmin) {
		return Request{}, apperr.Denied()
	}

	return s.moveTo(ctx, identity, db, r, StatusCancelled, nil, "workflow.cancel")
}

type GetInput struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	RequestID uuid.UUID `json:"request_id"`
}

// Get returns one request. Reviewers see everything in the tenant;
// everyone else sees only their own requests, and other requests are
// indistinguishable from missing ones.
func (s *Service) Get(ctx context.Context, identity auth.Identity, db action.DB, in GetInput) (Request, error) {
	if !identity.MemberOf(in.TenantID) {
		return Request{}, apperr.Denied()
	}

	r, err := getRequest(ctx, db, in.TenantID, in.RequestID)
	if err != nil {
		return Request{}, err
	}

	if r.RequesterID != identity.ID && !identity.HasRole(in.TenantID, reviewRoles...) {
		return Request{}, errNotFound()
	}
	return r, nil
}

type ListInput struct {
	TenantID uuid.UUID `json:"tenant_id"`
}

// List returns the tenant's requests, filtered by role: reviewers get the
// full queue, members only their own.
func (s *Service) List(ctx context.Context, identity auth.Identity, db action.DB, in ListInput) ([]Request, error) {
	if !identity.MemberOf(in.TenantID) {
		return nil, apperr.Denied()
	}

	var requesterID *uuid.UUID
	if !identity.HasRole(in.TenantID, reviewRoles...) {
		requesterID = &identity.ID
	}

	return listRequests(ctx, db, in.TenantID, requesterID)
}

// moveTo applies a status change after consulting the transition table and
// records the audit entry with before/after snapshots.
func (s *Service) moveTo(ctx context.Context, identity auth.Identity, db action.DB, r Request, target Status, note *string, auditAction string) (Request, error) {
	if !Transitions.Allowed(r.Status, target) {
		return Request{}, errTransition(r.Status, target)
	}

	before := r.snapshot()

	r.Status = target
	if note != nil {
		r.DecisionNote = note
	}
	if target == StatusApproved || target == StatusRejected {
		deciderID := identity.ID
		r.DeciderID = &deciderID
	}

	if err := updateRequestStatus(ctx, db, r); err != nil {
		return Request{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     r.TenantID,
		UserID:       identity.ID,
		Action:       auditAction,
		ResourceType: "workflow_request",
		ResourceID:   &r.ID,
		Before:       before,
		After:        r.snapshot(),
		Metadata:     map[string]any{"kind": string(r.Kind)},
	})

	return r, nil
}

func decisionRoles(kind Kind) []auth.Role {
	roles := []auth.Role{auth.RoleApprover, auth.RoleTenantAdmin}
	if kind == KindExpense || kind == KindPurchase {
		roles = append(roles, auth.RoleAccounting)
	}
	return roles
}

func validateAmount(kind Kind, amount *int64) error {
	switch kind {
	case KindExpense:
		if amount == nil || *amount <= 0 {
			return errExpenseAmount()
		}
	case KindPurchase:
		if amount == nil || *amount <= 0 {
			return errPurchaseAmount()
		}
	case KindLeave:
		if amount != nil {
			return apperr.Validation("leave requests do not carry an amount").AddField("amount_cents", "must be empty")
		}
	}
	return nil
}

package timesheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/internal/action"
	"github.com/opshub-io/opshub/internal/apperr"
	"github.com/opshub-io/opshub/internal/audit"
	"github.com/opshub-io/opshub/internal/auth"
)

// exportRoles lists who may read other users' entries and export them.
var exportRoles = []auth.Role{auth.RoleAccounting, auth.RoleTenantAdmin}

// Service implements timesheet entry and export. Users manage only their
// own entries; accounting and tenant admins read across the tenant.
type Service struct {
	audit *audit.Writer
}

func NewService(auditWriter *audit.Writer) *Service {
	return &Service{audit: auditWriter}
}

type AddInput struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Date      string    `json:"date"`
	Hours     float64   `json:"hours"`
	Note      string    `json:"note"`
}

func (s *Service) Add(ctx context.Context, identity auth.Identity, db action.DB, in AddInput) (Entry, error) {
	if !identity.MemberOf(in.TenantID) {
		return Entry{}, apperr.Denied()
	}

	date, err := parseDate(in.Date)
	if err != nil {
		return Entry{}, err
	}
	if err := validate(date, in.Hours); err != nil {
		return Entry{}, err
	}

	e := Entry{
		ID:        uuid.New(),
		TenantID:  in.TenantID,
		UserID:    identity.ID,
		ProjectID: in.ProjectID,
		Date:      date,
		Hours:     in.Hours,
		Note:      in.Note,
	}

	if err := insertEntry(ctx, db, e); err != nil {
		return Entry{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     e.TenantID,
		UserID:       identity.ID,
		Action:       "timesheet.add",
		ResourceType: "timesheet_entry",
		ResourceID:   &e.ID,
		After:        e.snapshot(),
	})

	return e, nil
}

type UpdateInput struct {
	TenantID uuid.UUID `json:"tenant_id"`
	EntryID  uuid.UUID `json:"entry_id"`
	Date     string    `json:"date"`
	Hours    float64   `json:"hours"`
	Note     string    `json:"note"`
}

// Update rewrites an entry. Only the entry's owner may change it.
func (s *Service) Update(ctx context.Context, identity auth.Identity, db action.DB, in UpdateInput) (Entry, error) {
	e, err := getEntry(ctx, db, in.TenantID, in.EntryID)
	if err != nil {
		return Entry{}, err
	}
	if e.UserID != identity.ID {
		return Entry{}, apperr.Denied()
	}

	date, err := parseDate(in.Date)
	if err != nil {
		return Entry{}, err
	}
	if err := validate(date, in.Hours); err != nil {
		return Entry{}, err
	}

	before := e.snapshot()

	e.Date = date
	e.Hours = in.Hours
	e.Note = in.Note

	if err := updateEntry(ctx, db, e); err != nil {
		return Entry{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     e.TenantID,
		UserID:       identity.ID,
		Action:       "timesheet.update",
		ResourceType: "timesheet_entry",
		ResourceID:   &e.ID,
		Before:       before,
		After:        e.snapshot(),
	})

	return e, nil
}

type DeleteInput struct {
	TenantID uuid.UUID `json:"tenant_id"`
	EntryID  uuid.UUID `json:"entry_id"`
}

// Delete removes an entry. Only the owner may delete.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, db action.DB, in DeleteInput) (struct{}, error) {
	e, err := getEntry(ctx, db, in.TenantID, in.EntryID)
	if err != nil {
		return struct{}{}, err
	}
	if e.UserID != identity.ID {
		return struct{}{}, apperr.Denied()
	}

	if err := deleteEntry(ctx, db, in.TenantID, in.EntryID); err != nil {
		return struct{}{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     e.TenantID,
		UserID:       identity.ID,
		Action:       "timesheet.delete",
		ResourceType: "timesheet_entry",
		ResourceID:   &e.ID,
		Before:       e.snapshot(),
	})

	return struct{}{}, nil
}

type ListInput struct {
	TenantID uuid.UUID  `json:"tenant_id"`
	UserID   *uuid.UUID `json:"user_id"`
	WeekOf   string     `json:"week_of"`
}

// List returns entries for one user, optionally narrowed to the week
// starting at WeekOf. Members list only themselves; accounting and tenant
// admins may target any user in the tenant.
func (s *Service) List(ctx context.Context, identity auth.Identity, db action.DB, in ListInput) ([]Entry, error) {
	if !identity.MemberOf(in.TenantID) {
		return nil, apperr.Denied()
	}

	target := identity.ID
	if in.UserID != nil && *in.UserID != identity.ID {
		if !identity.HasRole(in.TenantID, exportRoles...) {
			return nil, apperr.Denied()
		}
		target = *in.UserID
	}

	var from, to *time.Time
	if in.WeekOf != "" {
		start, err := parseDate(in.WeekOf)
		if err != nil {
			return nil, err
		}
		end := start.AddDate(0, 0, 7)
		from, to = &start, &end
	}

	return listEntries(ctx, db, in.TenantID, &target, from, to)
}

type ExportInput struct {
	TenantID uuid.UUID `json:"tenant_id"`
	From     string    `json:"from"`
	To       string    `json:"to"`
}

// Export renders the tenant's entries in the date range as CSV with a
// header row. Restricted to accounting and tenant admins; the read is
// audited because it takes payroll data out of the system.
func (s *Service) Export(ctx context.Context, identity auth.Identity, db action.DB, in ExportInput) ([]byte, error) {
	if !identity.HasRole(in.TenantID, exportRoles...) {
		return nil, apperr.Denied()
	}

	var from, to *time.Time
	if in.From != "" {
		d, err := parseDate(in.From)
		if err != nil {
			return nil, err
		}
		from = &d
	}
	if in.To != "" {
		d, err := parseDate(in.To)
		if err != nil {
			return nil, err
		}
		end := d.AddDate(0, 0, 1)
		to = &end
	}

	entries, err := listEntries(ctx, db, in.TenantID, nil, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"entry_id", "user_id", "project_id", "date", "hours", "note"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			e.ID.String(),
			e.UserID.String(),
			e.ProjectID.String(),
			e.Date.Format(time.DateOnly),
			strconv.FormatFloat(e.Hours, 'f', -1, 64),
			e.Note,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write csv record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     in.TenantID,
		UserID:       identity.ID,
		Action:       "timesheet.export",
		ResourceType: "timesheet",
		Metadata: map[string]any{
			"from":    in.From,
			"to":      in.To,
			"entries": len(entries),
		},
	})

	return buf.Bytes(), nil
}

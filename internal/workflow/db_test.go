package workflow_test

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opshub-io/opshub/internal/audit"
	"github.com/opshub-io/opshub/internal/auth"
	"github.com/opshub-io/opshub/internal/workflow"
)

// fakeDB is an in-memory stand-in for the request table. It recognizes the
// statements the repository issues and ignores everything SQL-specific
// beyond argument order.
type fakeDB struct {
	mu       sync.Mutex
	requests map[uuid.UUID]workflow.Request
	order    []uuid.UUID
}

func newFakeDB() *fakeDB {
	return &fakeDB{requests: make(map[uuid.UUID]workflow.Request)}
}

func (f *fakeDB) seed(r workflow.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	f.requests[r.ID] = r
	f.order = append(f.order, r.ID)
}

func (f *fakeDB) get(id uuid.UUID) workflow.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[id]
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.Contains(sql, "INSERT INTO workflow_requests"):
		r := workflow.Request{
			ID:          args[0].(uuid.UUID),
			TenantID:    args[1].(uuid.UUID),
			RequesterID: args[2].(uuid.UUID),
			Kind:        args[3].(workflow.Kind),
			Title:       args[4].(string),
			Description: args[5].(string),
			AmountCents: args[6].(*int64),
			Status:      args[7].(workflow.Status),
			CreatedAt:   time.Now(),
		}
		f.requests[r.ID] = r
		f.order = append(f.order, r.ID)
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case strings.Contains(sql, "UPDATE workflow_requests"):
		tenantID := args[0].(uuid.UUID)
		id := args[1].(uuid.UUID)
		r, ok := f.requests[id]
		if !ok || r.TenantID != tenantID {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		r.Status = args[2].(workflow.Status)
		r.DecisionNote = args[3].(*string)
		r.DeciderID = args[4].(*uuid.UUID)
		r.UpdatedAt = time.Now()
		f.requests[id] = r
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	panic("fakeDB: unexpected statement: " + sql)
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	tenantID := args[0].(uuid.UUID)
	id := args[1].(uuid.UUID)
	r, ok := f.requests[id]
	if !ok || r.TenantID != tenantID {
		return &fakeRow{}
	}
	return &fakeRow{request: &r}
}

func (f *fakeDB) Query(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tenantID := args[0].(uuid.UUID)
	var requesterID *uuid.UUID
	if len(args) > 1 {
		id := args[1].(uuid.UUID)
		requesterID = &id
	}

	var items []workflow.Request
	for i := len(f.order) - 1; i >= 0; i-- {
		r := f.requests[f.order[i]]
		if r.TenantID != tenantID {
			continue
		}
		if requesterID != nil && r.RequesterID != *requesterID {
			continue
		}
		items = append(items, r)
	}
	return &fakeRows{items: items}, nil
}

type fakeRow struct {
	request *workflow.Request
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.request == nil {
		return pgx.ErrNoRows
	}
	return scanRequest(*r.request, dest)
}

type fakeRows struct {
	pgx.Rows

	items []workflow.Request
	idx   int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.items)
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanRequest(r.items[r.idx-1], dest)
}

func scanRequest(src workflow.Request, dest []any) error {
	*dest[0].(*uuid.UUID) = src.ID
	*dest[1].(*uuid.UUID) = src.TenantID
	*dest[2].(*uuid.UUID) = src.RequesterID
	*dest[3].(*workflow.Kind) = src.Kind
	*dest[4].(*string) = src.Title
	*dest[5].(*string) = src.Description
	*dest[6].(**int64) = src.AmountCents
	*dest[7].(*workflow.Status) = src.Status
	*dest[8].(**string) = src.DecisionNote
	*dest[9].(**uuid.UUID) = src.DeciderID
	*dest[10].(*time.Time) = src.CreatedAt
	*dest[11].(*time.Time) = src.UpdatedAt
	return nil
}

// captureStore records audit entries for assertions.
type captureStore struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (s *captureStore) Append(_ context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *captureStore) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]string, len(s.entries))
	for i, e := range s.entries {
		actions[i] = e.Action
	}
	return actions
}

func newTestService() (*workflow.Service, *fakeDB, *captureStore) {
	store := &captureStore{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return workflow.NewService(audit.NewWriter(store, log)), newFakeDB(), store
}

func memberIdentity(tenantID uuid.UUID, role auth.Role) auth.Identity {
	return auth.NewIdentity(uuid.New(), "user@example.com", []auth.Assignment{
		{TenantID: tenantID, Role: role},
	})
}

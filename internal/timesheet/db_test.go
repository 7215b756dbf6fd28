package timesheet_test

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opshub-io/opshub/internal/audit"
	"github.com/opshub-io/opshub/internal/auth"
	"github.com/opshub-io/opshub/internal/timesheet"
)

type fakeDB struct {
	mu      sync.Mutex
	entries map[uuid.UUID]timesheet.Entry
}

func newFakeDB() *fakeDB {
	return &fakeDB{entries: make(map[uuid.UUID]timesheet.Entry)}
}

func (f *fakeDB) seed(e timesheet.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[e.ID] = e
}

func (f *fakeDB) has(id uuid.UUID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.entries[id]
	return ok
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.Contains(sql, "INSERT INTO timesheet_entries"):
		e := timesheet.Entry{
			ID:        args[0].(uuid.UUID),
			TenantID:  args[1].(uuid.UUID),
			UserID:    args[2].(uuid.UUID),
			ProjectID: args[3].(uuid.UUID),
			Date:      args[4].(time.Time),
			Hours:     args[5].(float64),
			Note:      args[6].(string),
			CreatedAt: time.Now(),
		}
		f.entries[e.ID] = e
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case strings.Contains(sql, "UPDATE timesheet_entries"):
		tenantID, id := args[0].(uuid.UUID), args[1].(uuid.UUID)
		e, ok := f.entries[id]
		if !ok || e.TenantID != tenantID {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		e.Date = args[2].(time.Time)
		e.Hours = args[3].(float64)
		e.Note = args[4].(string)
		f.entries[id] = e
		return pgconn.NewCommandTag("UPDATE 1"), nil

	case strings.Contains(sql, "DELETE FROM timesheet_entries"):
		tenantID, id := args[0].(uuid.UUID), args[1].(uuid.UUID)
		e, ok := f.entries[id]
		if !ok || e.TenantID != tenantID {
			return pgconn.NewCommandTag("DELETE 0"), nil
		}
		delete(f.entries, id)
		return pgconn.NewCommandTag("DELETE 1"), nil
	}
	panic("fakeDB: unexpected statement: " + sql)
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	tenantID, id := args[0].(uuid.UUID), args[1].(uuid.UUID)
	if e, ok := f.entries[id]; ok && e.TenantID == tenantID {
		return &fakeRow{entry: &e}
	}
	return &fakeRow{}
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	tenantID := args[0].(uuid.UUID)
	idx := 1

	var userID *uuid.UUID
	if strings.Contains(sql, "user_id =") {
		u := args[idx].(uuid.UUID)
		userID = &u
		idx++
	}
	var from, to *time.Time
	if strings.Contains(sql, "entry_date >=") {
		d := args[idx].(time.Time)
		from = &d
		idx++
	}
	if strings.Contains(sql, "entry_date <") {
		d := args[idx].(time.Time)
		to = &d
	}

	var items []timesheet.Entry
	for _, e := range f.entries {
		if e.TenantID != tenantID {
			continue
		}
		if userID != nil && e.UserID != *userID {
			continue
		}
		if from != nil && e.Date.Before(*from) {
			continue
		}
		if to != nil && !e.Date.Before(*to) {
			continue
		}
		items = append(items, e)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })
	return &fakeRows{items: items}, nil
}

type fakeRow struct {
	entry *timesheet.Entry
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.entry == nil {
		return pgx.ErrNoRows
	}
	scanEntry(*r.entry, dest)
	return nil
}

type fakeRows struct {
	pgx.Rows

	items []timesheet.Entry
	idx   int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.items)
}

func (r *fakeRows) Scan(dest ...any) error {
	scanEntry(r.items[r.idx-1], dest)
	return nil
}

func scanEntry(src timesheet.Entry, dest []any) {
	*dest[0].(*uuid.UUID) = src.ID
	*dest[1].(*uuid.UUID) = src.TenantID
	*dest[2].(*uuid.UUID) = src.UserID
	*dest[3].(*uuid.UUID) = src.ProjectID
	*dest[4].(*time.Time) = src.Date
	*dest[5].(*float64) = src.Hours
	*dest[6].(*string) = src.Note
	*dest[7].(*time.Time) = src.CreatedAt
	*dest[8].(*time.Time) = src.UpdatedAt
}

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

func newTestService() (*timesheet.Service, *fakeDB, *captureStore) {
	store := &captureStore{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return timesheet.NewService(audit.NewWriter(store, log)), newFakeDB(), store
}

func identityWith(tenantID uuid.UUID, role auth.Role) auth.Identity {
	return auth.NewIdentity(uuid.New(), "user@example.com", []auth.Assignment{
		{TenantID: tenantID, Role: role},
	})
}

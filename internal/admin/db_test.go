package admin_test

import (
	"context"
	"io"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opshub-io/opshub/internal/admin"
	"github.com/opshub-io/opshub/internal/audit"
	"github.com/opshub-io/opshub/internal/auth"
)

type assignment struct {
	tenantID uuid.UUID
	userID   uuid.UUID
	role     auth.Role
}

// fakeDB emulates the users, role_assignments and audit_logs tables.
type fakeDB struct {
	mu          sync.Mutex
	users       map[uuid.UUID]admin.User
	assignments []assignment
	auditRows   []audit.Entry
}

func newFakeDB() *fakeDB {
	return &fakeDB{users: make(map[uuid.UUID]admin.User)}
}

func (f *fakeDB) seedUser(u admin.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

func (f *fakeDB) seedAssignment(tenantID, userID uuid.UUID, role auth.Role) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments = append(f.assignments, assignment{tenantID, userID, role})
}

func (f *fakeDB) user(id uuid.UUID) admin.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id]
}

func (f *fakeDB) rolesOf(tenantID, userID uuid.UUID) []auth.Role {
	f.mu.Lock()
	defer f.mu.Unlock()
	var roles []auth.Role
	for _, a := range f.assignments {
		if a.tenantID == tenantID && a.userID == userID {
			roles = append(roles, a.role)
		}
	}
	return roles
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.Contains(sql, "INSERT INTO users"):
		u := admin.User{
			ID:           args[0].(uuid.UUID),
			Email:        args[1].(string),
			Name:         args[2].(string),
			PasswordHash: args[3].(string),
			Active:       args[4].(bool),
			CreatedAt:    time.Now(),
		}
		for _, existing := range f.users {
			if existing.Email == u.Email {
				return pgconn.CommandTag{}, &pgconn.PgError{Code: "23505"}
			}
		}
		f.users[u.ID] = u
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case strings.Contains(sql, "UPDATE users"):
		id := args[0].(uuid.UUID)
		u, ok := f.users[id]
		if !ok {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		u.Active = args[1].(bool)
		f.users[id] = u
		return pgconn.NewCommandTag("UPDATE 1"), nil

	case strings.Contains(sql, "INSERT INTO role_assignments"):
		a := assignment{args[0].(uuid.UUID), args[1].(uuid.UUID), args[2].(auth.Role)}
		for _, existing := range f.assignments {
			if existing == a {
				return pgconn.NewCommandTag("INSERT 0 0"), nil
			}
		}
		f.assignments = append(f.assignments, a)
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case strings.Contains(sql, "DELETE FROM role_assignments"):
		a := assignment{args[0].(uuid.UUID), args[1].(uuid.UUID), args[2].(auth.Role)}
		for i, existing := range f.assignments {
			if existing == a {
				f.assignments = append(f.assignments[:i], f.assignments[i+1:]...)
				return pgconn.NewCommandTag("DELETE 1"), nil
			}
		}
		return pgconn.NewCommandTag("DELETE 0"), nil
	}
	panic("fakeDB: unexpected statement: " + sql)
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.Contains(sql, "SELECT EXISTS"):
		tenantID, userID := args[0].(uuid.UUID), args[1].(uuid.UUID)
		exists := false
		for _, a := range f.assignments {
			if a.tenantID == tenantID && a.userID == userID {
				exists = true
			}
		}
		return valueRow{vals: []any{exists}}

	case strings.Contains(sql, "SELECT email, active"):
		u, ok := f.users[args[0].(uuid.UUID)]
		if !ok {
			return valueRow{err: pgx.ErrNoRows}
		}
		return valueRow{vals: []any{u.Email, u.Active}}

	case strings.Contains(sql, "email = $1"):
		email := args[0].(string)
		for _, u := range f.users {
			if u.Email == email && u.Active {
				return userRow(u)
			}
		}
		return valueRow{err: pgx.ErrNoRows}

	default:
		u, ok := f.users[args[0].(uuid.UUID)]
		if !ok {
			return valueRow{err: pgx.ErrNoRows}
		}
		return userRow(u)
	}
}

func userRow(u admin.User) valueRow {
	return valueRow{vals: []any{u.ID, u.Email, u.Name, u.PasswordHash, u.Active, u.CreatedAt, u.UpdatedAt}}
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rows := &valueRows{}
	switch {
	case strings.Contains(sql, "JOIN role_assignments"):
		tenantID := args[0].(uuid.UUID)
		var matched []assignment
		for _, a := range f.assignments {
			if a.tenantID == tenantID {
				matched = append(matched, a)
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			return f.users[matched[i].userID].Email < f.users[matched[j].userID].Email
		})
		for _, a := range matched {
			u := f.users[a.userID]
			rows.rows = append(rows.rows, []any{u.ID, u.Email, u.Name, u.Active, u.CreatedAt, a.role})
		}

	case strings.Contains(sql, "FROM role_assignments"):
		userID := args[0].(uuid.UUID)
		for _, a := range f.assignments {
			if a.userID == userID {
				rows.rows = append(rows.rows, []any{a.tenantID, a.role})
			}
		}

	case strings.Contains(sql, "FROM audit_logs"):
		tenantID := args[0].(uuid.UUID)
		for _, e := range f.auditRows {
			if e.TenantID == tenantID {
				rows.rows = append(rows.rows, []any{e.ID, e.TenantID, e.UserID, e.Action,
					e.ResourceType, e.ResourceID, []byte(nil), []byte(nil), []byte(nil), e.CreatedAt})
			}
		}

	default:
		panic("fakeDB: unexpected query: " + sql)
	}
	return rows, nil
}

// valueRow assigns canned values positionally via reflection.
type valueRow struct {
	vals []any
	err  error
}

func (r valueRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, v := range r.vals {
		out := reflect.ValueOf(dest[i]).Elem()
		if v == nil {
			out.Set(reflect.Zero(out.Type()))
			continue
		}
		out.Set(reflect.ValueOf(v))
	}
	return nil
}

type valueRows struct {
	pgx.Rows

	rows [][]any
	idx  int
}

func (r *valueRows) Close()     {}
func (r *valueRows) Err() error { return nil }

func (r *valueRows) Next() bool {
	r.idx++
	return r.idx <= len(r.rows)
}

func (r *valueRows) Scan(dest ...any) error {
	return valueRow{vals: r.rows[r.idx-1]}.Scan(dest...)
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

func (s *captureStore) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]string, len(s.entries))
	for i, e := range s.entries {
		actions[i] = e.Action
	}
	return actions
}

func newTestService() (*admin.Service, *fakeDB, *captureStore) {
	store := &captureStore{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return admin.NewService(audit.NewWriter(store, log)), newFakeDB(), store
}

func identityWith(tenantID uuid.UUID, role auth.Role) auth.Identity {
	return auth.NewIdentity(uuid.New(), "admin@example.com", []auth.Assignment{
		{TenantID: tenantID, Role: role},
	})
}

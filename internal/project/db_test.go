package project_test

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
	"github.com/opshub-io/opshub/internal/project"
)

// fakeDB keeps projects and tasks in maps and answers the repository's
// statements by argument position.
type fakeDB struct {
	mu       sync.Mutex
	projects map[uuid.UUID]project.Project
	tasks    map[uuid.UUID]project.Task
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		projects: make(map[uuid.UUID]project.Project),
		tasks:    make(map[uuid.UUID]project.Task),
	}
}

func (f *fakeDB) seedProject(p project.Project) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[p.ID] = p
}

func (f *fakeDB) seedTask(t project.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[t.ID] = t
}

func (f *fakeDB) task(id uuid.UUID) project.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks[id]
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.Contains(sql, "INSERT INTO projects"):
		p := project.Project{
			ID:          args[0].(uuid.UUID),
			TenantID:    args[1].(uuid.UUID),
			Name:        args[2].(string),
			Description: args[3].(string),
			Status:      args[4].(project.Status),
			CreatedBy:   args[5].(uuid.UUID),
			CreatedAt:   time.Now(),
		}
		f.projects[p.ID] = p
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case strings.Contains(sql, "UPDATE projects"):
		tenantID, id := args[0].(uuid.UUID), args[1].(uuid.UUID)
		p, ok := f.projects[id]
		if !ok || p.TenantID != tenantID {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		p.Status = args[2].(project.Status)
		f.projects[id] = p
		return pgconn.NewCommandTag("UPDATE 1"), nil

	case strings.Contains(sql, "INSERT INTO tasks"):
		t := project.Task{
			ID:          args[0].(uuid.UUID),
			TenantID:    args[1].(uuid.UUID),
			ProjectID:   args[2].(uuid.UUID),
			Title:       args[3].(string),
			Description: args[4].(string),
			Status:      args[5].(project.TaskStatus),
			AssigneeID:  args[6].(*uuid.UUID),
			CreatedBy:   args[7].(uuid.UUID),
			CreatedAt:   time.Now(),
		}
		f.tasks[t.ID] = t
		return pgconn.NewCommandTag("INSERT 0 1"), nil

	case strings.Contains(sql, "UPDATE tasks"):
		tenantID, id := args[0].(uuid.UUID), args[1].(uuid.UUID)
		t, ok := f.tasks[id]
		if !ok || t.TenantID != tenantID {
			return pgconn.NewCommandTag("UPDATE 0"), nil
		}
		t.Status = args[2].(project.TaskStatus)
		t.AssigneeID = args[3].(*uuid.UUID)
		f.tasks[id] = t
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	panic("fakeDB: unexpected statement: " + sql)
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	tenantID, id := args[0].(uuid.UUID), args[1].(uuid.UUID)
	if strings.Contains(sql, "FROM projects") {
		if p, ok := f.projects[id]; ok && p.TenantID == tenantID {
			return &fakeRow{project: &p}
		}
		return &fakeRow{}
	}
	if t, ok := f.tasks[id]; ok && t.TenantID == tenantID {
		return &fakeRow{task: &t}
	}
	return &fakeRow{}
}

func (f *fakeDB) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rows := &fakeRows{}
	if strings.Contains(sql, "FROM projects") {
		tenantID := args[0].(uuid.UUID)
		for _, p := range f.projects {
			if p.TenantID == tenantID {
				rows.projects = append(rows.projects, p)
			}
		}
		return rows, nil
	}

	tenantID, projectID := args[0].(uuid.UUID), args[1].(uuid.UUID)
	for _, t := range f.tasks {
		if t.TenantID == tenantID && t.ProjectID == projectID {
			rows.tasks = append(rows.tasks, t)
		}
	}
	return rows, nil
}

type fakeRow struct {
	project *project.Project
	task    *project.Task
}

func (r *fakeRow) Scan(dest ...any) error {
	switch {
	case r.project != nil:
		scanProject(*r.project, dest)
	case r.task != nil:
		scanTask(*r.task, dest)
	default:
		return pgx.ErrNoRows
	}
	return nil
}

type fakeRows struct {
	pgx.Rows

	projects []project.Project
	tasks    []project.Task
	idx      int
}

func (r *fakeRows) Close()     {}
func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Next() bool {
	r.idx++
	return r.idx <= len(r.projects)+len(r.tasks)
}

func (r *fakeRows) Scan(dest ...any) error {
	if len(r.projects) > 0 {
		scanProject(r.projects[r.idx-1], dest)
	} else {
		scanTask(r.tasks[r.idx-1], dest)
	}
	return nil
}

func scanProject(src project.Project, dest []any) {
	*dest[0].(*uuid.UUID) = src.ID
	*dest[1].(*uuid.UUID) = src.TenantID
	*dest[2].(*string) = src.Name
	*dest[3].(*string) = src.Description
	*dest[4].(*project.Status) = src.Status
	*dest[5].(*uuid.UUID) = src.CreatedBy
	*dest[6].(*time.Time) = src.CreatedAt
	*dest[7].(*time.Time) = src.UpdatedAt
}

func scanTask(src project.Task, dest []any) {
	*dest[0].(*uuid.UUID) = src.ID
	*dest[1].(*uuid.UUID) = src.TenantID
	*dest[2].(*uuid.UUID) = src.ProjectID
	*dest[3].(*string) = src.Title
	*dest[4].(*string) = src.Description
	*dest[5].(*project.TaskStatus) = src.Status
	*dest[6].(**uuid.UUID) = src.AssigneeID
	*dest[7].(*uuid.UUID) = src.CreatedBy
	*dest[8].(*time.Time) = src.CreatedAt
	*dest[9].(*time.Time) = src.UpdatedAt
}

// memberStore is a canned auth.AssignmentStore keyed by user.
type memberStore struct {
	assignments map[uuid.UUID][]auth.Assignment
}

func (s *memberStore) ListAssignments(_ context.Context, userID uuid.UUID) ([]auth.Assignment, error) {
	return s.assignments[userID], nil
}

func newTestService(members *memberStore) (*project.Service, *fakeDB, *captureStore) {
	if members == nil {
		members = &memberStore{assignments: map[uuid.UUID][]auth.Assignment{}}
	}
	store := &captureStore{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return project.NewService(audit.NewWriter(store, log), members), newFakeDB(), store
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

func identityWith(tenantID uuid.UUID, role auth.Role) auth.Identity {
	return auth.NewIdentity(uuid.New(), "user@example.com", []auth.Assignment{
		{TenantID: tenantID, Role: role},
	})
}

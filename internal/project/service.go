package project

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/internal/action"
	"github.com/opshub-io/opshub/internal/apperr"
	"github.com/opshub-io/opshub/internal/audit"
	"github.com/opshub-io/opshub/internal/auth"
)

// manageRoles lists who may create projects and change project status.
var manageRoles = []auth.Role{auth.RolePM, auth.RoleTenantAdmin}

// Service implements project and task tracking. Project and task status
// changes consult their transition tables; task work on an archived project
// is refused outright.
type Service struct {
	audit       *audit.Writer
	assignments auth.AssignmentStore
}

func NewService(auditWriter *audit.Writer, assignments auth.AssignmentStore) *Service {
	return &Service{audit: auditWriter, assignments: assignments}
}

type CreateProjectInput struct {
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

func (s *Service) CreateProject(ctx context.Context, identity auth.Identity, db action.DB, in CreateProjectInput) (Project, error) {
	if !identity.HasRole(in.TenantID, manageRoles...) {
		return Project{}, apperr.Denied()
	}
	if strings.TrimSpace(in.Name) == "" {
		return Project{}, apperr.Validation("project name is required").AddField("name", "required")
	}

	p := Project{
		ID:          uuid.New(),
		TenantID:    in.TenantID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Status:      StatusPlanning,
		CreatedBy:   identity.ID,
	}

	if err := insertProject(ctx, db, p); err != nil {
		return Project{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     p.TenantID,
		UserID:       identity.ID,
		Action:       "project.create",
		ResourceType: "project",
		ResourceID:   &p.ID,
		After:        map[string]any{"name": p.Name, "status": string(p.Status)},
	})

	return p, nil
}

type UpdateProjectStatusInput struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	ProjectID uuid.UUID `json:"project_id"`
	Status    Status    `json:"status"`
}

func (s *Service) UpdateProjectStatus(ctx context.Context, identity auth.Identity, db action.DB, in UpdateProjectStatusInput) (Project, error) {
	if !identity.HasRole(in.TenantID, manageRoles...) {
		return Project{}, apperr.Denied()
	}

	p, err := getProject(ctx, db, in.TenantID, in.ProjectID)
	if err != nil {
		return Project{}, err
	}

	if !Transitions.Allowed(p.Status, in.Status) {
		return Project{}, errProjectTransition(p.Status, in.Status)
	}

	before := map[string]any{"status": string(p.Status)}
	p.Status = in.Status

	if err := updateProjectStatus(ctx, db, p); err != nil {
		return Project{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     p.TenantID,
		UserID:       identity.ID,
		Action:       "project.status",
		ResourceType: "project",
		ResourceID:   &p.ID,
		Before:       before,
		After:        map[string]any{"status": string(p.Status)},
	})

	return p, nil
}

type GetProjectInput struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	ProjectID uuid.UUID `json:"project_id"`
}

func (s *Service) GetProject(ctx context.Context, identity auth.Identity, db action.DB, in GetProjectInput) (Project, error) {
	if !identity.MemberOf(in.TenantID) {
		return Project{}, apperr.Denied()
	}
	return getProject(ctx, db, in.TenantID, in.ProjectID)
}

type ListProjectsInput struct {
	TenantID uuid.UUID `json:"tenant_id"`
}

func (s *Service) ListProjects(ctx context.Context, identity auth.Identity, db action.DB, in ListProjectsInput) ([]Project, error) {
	if !identity.MemberOf(in.TenantID) {
		return nil, apperr.Denied()
	}
	return listProjects(ctx, db, in.TenantID)
}

type CreateTaskInput struct {
	TenantID    uuid.UUID  `json:"tenant_id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	AssigneeID  *uuid.UUID `json:"assignee_id"`
}

func (s *Service) CreateTask(ctx context.Context, identity auth.Identity, db action.DB, in CreateTaskInput) (Task, error) {
	if !identity.HasRole(in.TenantID, manageRoles...) {
		return Task{}, apperr.Denied()
	}
	if strings.TrimSpace(in.Title) == "" {
		return Task{}, apperr.Validation("task title is required").AddField("title", "required")
	}

	p, err := getProject(ctx, db, in.TenantID, in.ProjectID)
	if err != nil {
		return Task{}, err
	}
	if p.Status == StatusArchived {
		return Task{}, errProjectArchived()
	}

	if in.AssigneeID != nil {
		if err := s.checkAssignee(ctx, in.TenantID, *in.AssigneeID); err != nil {
			return Task{}, err
		}
	}

	t := Task{
		ID:          uuid.New(),
		TenantID:    in.TenantID,
		ProjectID:   in.ProjectID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Status:      TaskTodo,
		AssigneeID:  in.AssigneeID,
		CreatedBy:   identity.ID,
	}

	if err := insertTask(ctx, db, t); err != nil {
		return Task{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     t.TenantID,
		UserID:       identity.ID,
		Action:       "task.create",
		ResourceType: "task",
		ResourceID:   &t.ID,
		After:        taskSnapshot(t),
		Metadata:     map[string]any{"project_id": t.ProjectID.String()},
	})

	return t, nil
}

type AssignTaskInput struct {
	TenantID   uuid.UUID  `json:"tenant_id"`
	TaskID     uuid.UUID  `json:"task_id"`
	AssigneeID *uuid.UUID `json:"assignee_id"`
}

// AssignTask sets or clears the assignee. The assignee must hold a role in
// the tenant.
func (s *Service) AssignTask(ctx context.Context, identity auth.Identity, db action.DB, in AssignTaskInput) (Task, error) {
	if !identity.HasRole(in.TenantID, manageRoles...) {
		return Task{}, apperr.Denied()
	}

	t, err := getTask(ctx, db, in.TenantID, in.TaskID)
	if err != nil {
		return Task{}, err
	}

	if in.AssigneeID != nil {
		if err := s.checkAssignee(ctx, in.TenantID, *in.AssigneeID); err != nil {
			return Task{}, err
		}
	}

	before := taskSnapshot(t)
	t.AssigneeID = in.AssigneeID

	if err := updateTask(ctx, db, t); err != nil {
		return Task{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     t.TenantID,
		UserID:       identity.ID,
		Action:       "task.assign",
		ResourceType: "task",
		ResourceID:   &t.ID,
		Before:       before,
		After:        taskSnapshot(t),
	})

	return t, nil
}

type MoveTaskInput struct {
	TenantID uuid.UUID  `json:"tenant_id"`
	TaskID   uuid.UUID  `json:"task_id"`
	Status   TaskStatus `json:"status"`
}

// MoveTask changes a task's board column. Project managers and tenant admins
// move anything; everyone else only tasks assigned to them.
func (s *Service) MoveTask(ctx context.Context, identity auth.Identity, db action.DB, in MoveTaskInput) (Task, error) {
	t, err := getTask(ctx, db, in.TenantID, in.TaskID)
	if err != nil {
		return Task{}, err
	}

	assignedToCaller := t.AssigneeID != nil && *t.AssigneeID == identity.ID
	if !assignedToCaller && !identity.HasRole(in.TenantID, manageRoles...) {
		return Task{}, apperr.Denied()
	}

	if !TaskTransitions.Allowed(t.Status, in.Status) {
		return Task{}, errTaskTransition(t.Status, in.Status)
	}

	before := taskSnapshot(t)
	t.Status = in.Status

	if err := updateTask(ctx, db, t); err != nil {
		return Task{}, err
	}

	s.audit.Record(ctx, audit.Entry{
		TenantID:     t.TenantID,
		UserID:       identity.ID,
		Action:       "task.move",
		ResourceType: "task",
		ResourceID:   &t.ID,
		Before:       before,
		After:        taskSnapshot(t),
	})

	return t, nil
}

type ListTasksInput struct {
	TenantID  uuid.UUID `json:"tenant_id"`
	ProjectID uuid.UUID `json:"project_id"`
}

func (s *Service) ListTasks(ctx context.Context, identity auth.Identity, db action.DB, in ListTasksInput) ([]Task, error) {
	if !identity.MemberOf(in.TenantID) {
		return nil, apperr.Denied()
	}
	return listTasks(ctx, db, in.TenantID, in.ProjectID)
}

// checkAssignee verifies the target user holds at least one role in the
// tenant before a task is pinned on them.
func (s *Service) checkAssignee(ctx context.Context, tenantID, userID uuid.UUID) error {
	assignments, err := s.assignments.ListAssignments(ctx, userID)
	if err != nil {
		return err
	}
	for _, a := range assignments {
		if a.TenantID == tenantID {
			return nil
		}
	}
	return apperr.Validation("assignee is not a member of this tenant").
		AddField("assignee_id", "must belong to the tenant")
}

func taskSnapshot(t Task) map[string]any {
	m := map[string]any{
		"title":  t.Title,
		"status": string(t.Status),
	}
	if t.AssigneeID != nil {
		m["assignee_id"] = t.AssigneeID.String()
	}
	return m
}

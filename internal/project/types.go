package project

import (
	"time"

	"github.com/google/uuid"

	"github.com/opshub-io/opshub/pkg/transition"
)

// Status is the lifecycle state of a project.
type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Transitions is the project lifecycle table. Archived is the only terminal
// state; completed projects can still be archived.
var Transitions = transition.Table[Status]{
	StatusPlanning:  {StatusActive, StatusArchived},
	StatusActive:    {StatusOnHold, StatusCompleted},
	StatusOnHold:    {StatusActive, StatusArchived},
	StatusCompleted: {StatusArchived},
	StatusArchived:  {},
}

// TaskStatus is the board column of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskDone       TaskStatus = "done"
	TaskCancelled  TaskStatus = "cancelled"
)

// TaskTransitions allows in-progress work to move back to todo, and a
// cancelled task to be revived. Done is final.
var TaskTransitions = transition.Table[TaskStatus]{
	TaskTodo:       {TaskInProgress, TaskCancelled},
	TaskInProgress: {TaskDone, TaskTodo, TaskCancelled},
	TaskDone:       {},
	TaskCancelled:  {TaskTodo},
}

type Project struct {
	ID          uuid.UUID `json:"id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Task struct {
	ID          uuid.UUID  `json:"id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	ProjectID   uuid.UUID  `json:"project_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	AssigneeID  *uuid.UUID `json:"assignee_id,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

package domain

import (
	"errors"
	"time"
)

// Task is a project-scoped work item.
type Task struct {
	ID         string
	ProjectID  string
	Title      string
	Status     TaskStatus
	AssigneeID string // empty when unassigned
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Validate validates the task for persistence. Returns an error describing the first validation failure.
func (t *Task) Validate() error {
	if t.Title == "" {
		return errors.New("title is required")
	}
	if t.ProjectID == "" {
		return errors.New("project_id is required")
	}
	if t.Status == "" {
		t.Status = TaskStatusTodo
	}
	return nil
}

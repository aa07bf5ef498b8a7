// Package service holds task business logic. Tasks are the resource whose
// access is gated on project roles: any role may read, client roles may not
// write.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	membershipdomain "projecthub/backend/internal/membership/domain"
	"projecthub/backend/internal/platform/rbac"
	"projecthub/backend/internal/task/domain"
	"projecthub/backend/internal/task/repository"
)

// RoleResolver resolves the caller's effective project role.
type RoleResolver interface {
	ResolveProjectRole(ctx context.Context, userID, projectID string, allowed ...membershipdomain.Role) (*rbac.ProjectAccess, error)
}

// Tasks manages project work items.
type Tasks struct {
	store    repository.Repository
	resolver RoleResolver
}

func NewTasks(store repository.Repository, resolver RoleResolver) *Tasks {
	return &Tasks{store: store, resolver: resolver}
}

// ListByProject lists a project's tasks; any project role may read.
func (s *Tasks) ListByProject(ctx context.Context, callerID, projectID string) ([]*domain.Task, error) {
	if _, err := s.resolver.ResolveProjectRole(ctx, callerID, projectID, rbac.ProjectReaderRoles...); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasksByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Create creates a task in the project; CLIENT role holders may not write.
func (s *Tasks) Create(ctx context.Context, callerID, projectID, title, assigneeID string) (*domain.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, rbac.ErrInvalidInput
	}
	if _, err := s.resolver.ResolveProjectRole(ctx, callerID, projectID, rbac.ProjectWriterRoles...); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &domain.Task{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		Title:      title,
		Status:     domain.TaskStatusTodo,
		AssigneeID: assigneeID,
		CreatedBy:  callerID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := t.Validate(); err != nil {
		return nil, rbac.ErrInvalidInput
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t, nil
}

// UpdateInput carries the mutable task fields; nil pointers leave a field
// unchanged.
type UpdateInput struct {
	Title      *string
	Status     *domain.TaskStatus
	AssigneeID *string
}

// Update applies in to the task. The project is resolved from the stored
// task, so the write gate always checks the task's real project.
func (s *Tasks) Update(ctx context.Context, callerID, taskID string, in UpdateInput) (*domain.Task, error) {
	t, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if t == nil {
		return nil, rbac.ErrNotFound
	}
	if _, err := s.resolver.ResolveProjectRole(ctx, callerID, t.ProjectID, rbac.ProjectWriterRoles...); err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, rbac.ErrInvalidInput
		}
		t.Title = title
	}
	if in.Status != nil {
		switch *in.Status {
		case domain.TaskStatusTodo, domain.TaskStatusInProgress, domain.TaskStatusDone:
			t.Status = *in.Status
		default:
			return nil, rbac.ErrInvalidInput
		}
	}
	if in.AssigneeID != nil {
		t.AssigneeID = *in.AssigneeID
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return t, nil
}

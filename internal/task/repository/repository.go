package repository

import (
	"context"

	"projecthub/backend/internal/task/domain"
)

// Repository defines persistence for tasks.
type Repository interface {
	GetTaskByID(ctx context.Context, id string) (*domain.Task, error)
	ListTasksByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	CreateTask(ctx context.Context, t *domain.Task) error
	UpdateTask(ctx context.Context, t *domain.Task) error
}

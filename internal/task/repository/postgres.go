package repository

import (
	"context"
	"database/sql"
	"errors"

	"projecthub/backend/internal/task/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a task repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = `id, project_id, title, status, assignee_id, created_by, created_at, updated_at`

// GetTaskByID returns the task for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetTaskByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	var t domain.Task
	var status string
	var assignee sql.NullString
	err := row.Scan(&t.ID, &t.ProjectID, &t.Title, &status, &assignee, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	t.AssigneeID = assignee.String
	return &t, nil
}

// ListTasksByProject returns all tasks for the given project, newest first.
// Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListTasksByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE project_id = $1 ORDER BY created_at DESC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Task
	for rows.Next() {
		var t domain.Task
		var status string
		var assignee sql.NullString
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &status, &assignee, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Status = domain.TaskStatus(status)
		t.AssigneeID = assignee.String
		out = append(out, &t)
	}
	return out, rows.Err()
}

// CreateTask persists the task to the database. The task must have ID set.
func (r *PostgresRepository) CreateTask(ctx context.Context, t *domain.Task) error {
	assignee := sql.NullString{String: t.AssigneeID, Valid: t.AssigneeID != ""}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, project_id, title, status, assignee_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.ProjectID, t.Title, string(t.Status), assignee, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

// UpdateTask updates title, status, and assignee of the task.
func (r *PostgresRepository) UpdateTask(ctx context.Context, t *domain.Task) error {
	assignee := sql.NullString{String: t.AssigneeID, Valid: t.AssigneeID != ""}
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET title = $2, status = $3, assignee_id = $4, updated_at = $5
		WHERE id = $1`,
		t.ID, t.Title, string(t.Status), assignee, t.UpdatedAt,
	)
	return err
}

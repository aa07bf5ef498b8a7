package repository

import (
	"context"
	"database/sql"
	"errors"

	"projecthub/backend/internal/user/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, name, account_role, password_hash, password_set, status, created_at, updated_at`

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail returns the user for email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Create persists the user to the database. The user must have ID set.
// The unique index on users(email) rejects a concurrent duplicate provision.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, account_role, password_hash, password_set, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		u.ID, u.Email, u.Name, string(u.AccountRole), u.PasswordHash, u.PasswordSet, string(u.Status), u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// CompleteRegistration sets name and password hash for id and flips
// password_set to true. No-op when the row is absent.
func (r *PostgresRepository) CompleteRegistration(ctx context.Context, id, name, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET name = $2, password_hash = $3, password_set = TRUE, updated_at = now()
		WHERE id = $1`,
		id, name, passwordHash,
	)
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var role, status string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.PasswordHash, &u.PasswordSet, &status, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.AccountRole = domain.AccountRole(role)
	u.Status = domain.UserStatus(status)
	return &u, nil
}

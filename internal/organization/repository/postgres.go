package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	membershipdomain "projecthub/backend/internal/membership/domain"
	"projecthub/backend/internal/organization/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an organization repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orgColumns = `id, name, owner_id, is_default, created_at, updated_at`

// GetOrganizationByID returns the organization for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetOrganizationByID(ctx context.Context, id string) (*domain.Org, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orgColumns+` FROM organizations WHERE id = $1`, id)
	var o domain.Org
	err := row.Scan(&o.ID, &o.Name, &o.OwnerID, &o.IsDefault, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}

// CreateOrganizationWithOwner inserts the organization and the owner's
// membership in one transaction. The partial unique index on
// organizations(owner_id) WHERE is_default serializes concurrent
// default-organization creates for the same owner.
func (r *PostgresRepository) CreateOrganizationWithOwner(ctx context.Context, o *domain.Org, m *membershipdomain.OrgMembership) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO organizations (id, name, owner_id, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		o.ID, o.Name, o.OwnerID, o.IsDefault, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert organization: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO org_memberships (id, org_id, user_id, role, status, invited_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		m.ID, m.OrgID, m.UserID, string(m.Role), string(m.Status), nullIfEmpty(m.InvitedBy), m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert owner membership: %w", err)
	}

	return tx.Commit()
}

// ListOrganizationsByUser returns the organizations where the user holds an
// ACCEPTED membership, oldest membership first. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListOrganizationsByUser(ctx context.Context, userID string) ([]*domain.Org, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.name, o.owner_id, o.is_default, o.created_at, o.updated_at
		FROM organizations o
		JOIN org_memberships m ON m.org_id = o.id
		WHERE m.user_id = $1 AND m.status = 'ACCEPTED'
		ORDER BY m.created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Org
	for rows.Next() {
		var o domain.Org
		if err := rows.Scan(&o.ID, &o.Name, &o.OwnerID, &o.IsDefault, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, &o)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

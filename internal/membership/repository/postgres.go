package repository

import (
	"context"
	"database/sql"
	"errors"

	"projecthub/backend/internal/membership/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a membership repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orgMembershipColumns = `id, org_id, user_id, role, status, invited_by, created_at, updated_at`
const projectMembershipColumns = `id, project_id, user_id, role, status, invited_by, created_at, updated_at`

// GetOrgMembership returns the (orgID, userID) row regardless of status, or
// nil if not found. It returns an error only for database failures.
func (r *PostgresRepository) GetOrgMembership(ctx context.Context, orgID, userID string) (*domain.OrgMembership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orgMembershipColumns+` FROM org_memberships WHERE org_id = $1 AND user_id = $2`,
		orgID, userID,
	)
	return scanOrgMembership(row)
}

// GetAcceptedProjectMembership returns the (projectID, userID) row only when
// its status is ACCEPTED; otherwise nil. The status filter lives in the query
// so a pending row never reaches the authorization engine.
func (r *PostgresRepository) GetAcceptedProjectMembership(ctx context.Context, projectID, userID string) (*domain.ProjectMembership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+projectMembershipColumns+` FROM project_memberships
		 WHERE project_id = $1 AND user_id = $2 AND status = 'ACCEPTED'`,
		projectID, userID,
	)
	return scanProjectMembership(row)
}

// OldestAcceptedOrgMembership returns the user's earliest ACCEPTED org
// membership ordered by join time, or nil if the user has none.
func (r *PostgresRepository) OldestAcceptedOrgMembership(ctx context.Context, userID string) (*domain.OrgMembership, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orgMembershipColumns+` FROM org_memberships
		 WHERE user_id = $1 AND status = 'ACCEPTED'
		 ORDER BY created_at ASC LIMIT 1`,
		userID,
	)
	return scanOrgMembership(row)
}

// ListOrgMemberships returns all membership rows for the given org, oldest
// first. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListOrgMemberships(ctx context.Context, orgID string) ([]*domain.OrgMembership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orgMembershipColumns+` FROM org_memberships WHERE org_id = $1 ORDER BY created_at ASC`,
		orgID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.OrgMembership
	for rows.Next() {
		m, err := scanOrgMembershipRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListProjectMemberships returns all membership rows for the given project,
// oldest first. Returns (nil, error) only on database errors.
func (r *PostgresRepository) ListProjectMemberships(ctx context.Context, projectID string) ([]*domain.ProjectMembership, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+projectMembershipColumns+` FROM project_memberships WHERE project_id = $1 ORDER BY created_at ASC`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.ProjectMembership
	for rows.Next() {
		m, err := scanProjectMembershipRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpsertOrgMembership inserts m, or on conflict updates role and forces
// status to ACCEPTED: re-inviting a known member (including REVOKED/DECLINED
// ones) accepts them immediately with the newly supplied role. Returns the
// row as stored.
func (r *PostgresRepository) UpsertOrgMembership(ctx context.Context, m *domain.OrgMembership) (*domain.OrgMembership, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO org_memberships (id, org_id, user_id, role, status, invited_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (org_id, user_id) DO UPDATE
		SET role = EXCLUDED.role, status = 'ACCEPTED', updated_at = EXCLUDED.updated_at
		RETURNING `+orgMembershipColumns,
		m.ID, m.OrgID, m.UserID, string(m.Role), string(m.Status), nullIfEmpty(m.InvitedBy), m.CreatedAt, m.UpdatedAt,
	)
	return scanOrgMembership(row)
}

// UpsertProjectMembership mirrors UpsertOrgMembership for project scope.
func (r *PostgresRepository) UpsertProjectMembership(ctx context.Context, m *domain.ProjectMembership) (*domain.ProjectMembership, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO project_memberships (id, project_id, user_id, role, status, invited_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (project_id, user_id) DO UPDATE
		SET role = EXCLUDED.role, status = 'ACCEPTED', updated_at = EXCLUDED.updated_at
		RETURNING `+projectMembershipColumns,
		m.ID, m.ProjectID, m.UserID, string(m.Role), string(m.Status), nullIfEmpty(m.InvitedBy), m.CreatedAt, m.UpdatedAt,
	)
	return scanProjectMembership(row)
}

// UpdateOrgMembershipStatus sets the status of the (orgID, userID) row and
// returns the updated row, or nil when no row exists.
func (r *PostgresRepository) UpdateOrgMembershipStatus(ctx context.Context, orgID, userID string, status domain.Status) (*domain.OrgMembership, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE org_memberships SET status = $3, updated_at = now()
		WHERE org_id = $1 AND user_id = $2
		RETURNING `+orgMembershipColumns,
		orgID, userID, string(status),
	)
	return scanOrgMembership(row)
}

// UpdateProjectMembershipStatus mirrors UpdateOrgMembershipStatus for project scope.
func (r *PostgresRepository) UpdateProjectMembershipStatus(ctx context.Context, projectID, userID string, status domain.Status) (*domain.ProjectMembership, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE project_memberships SET status = $3, updated_at = now()
		WHERE project_id = $1 AND user_id = $2
		RETURNING `+projectMembershipColumns,
		projectID, userID, string(status),
	)
	return scanProjectMembership(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrgMembership(row *sql.Row) (*domain.OrgMembership, error) {
	m, err := scanOrgMembershipRows(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func scanOrgMembershipRows(s rowScanner) (*domain.OrgMembership, error) {
	var m domain.OrgMembership
	var role, status string
	var invitedBy sql.NullString
	if err := s.Scan(&m.ID, &m.OrgID, &m.UserID, &role, &status, &invitedBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Role = domain.Role(role)
	m.Status = domain.Status(status)
	m.InvitedBy = invitedBy.String
	return &m, nil
}

func scanProjectMembership(row *sql.Row) (*domain.ProjectMembership, error) {
	m, err := scanProjectMembershipRows(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func scanProjectMembershipRows(s rowScanner) (*domain.ProjectMembership, error) {
	var m domain.ProjectMembership
	var role, status string
	var invitedBy sql.NullString
	if err := s.Scan(&m.ID, &m.ProjectID, &m.UserID, &role, &status, &invitedBy, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	m.Role = domain.Role(role)
	m.Status = domain.Status(status)
	m.InvitedBy = invitedBy.String
	return &m, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

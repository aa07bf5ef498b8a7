package repository

import (
	"context"

	"projecthub/backend/internal/membership/domain"
)

// Repository defines persistence for organization and project memberships.
// All lookups are point reads on the composite (scope, user) key; the
// database enforces uniqueness on that key.
type Repository interface {
	GetOrgMembership(ctx context.Context, orgID, userID string) (*domain.OrgMembership, error)
	GetAcceptedProjectMembership(ctx context.Context, projectID, userID string) (*domain.ProjectMembership, error)
	// OldestAcceptedOrgMembership returns the user's earliest ACCEPTED org
	// membership by join time, or nil. First membership wins, so the "home"
	// organization is stable across calls.
	OldestAcceptedOrgMembership(ctx context.Context, userID string) (*domain.OrgMembership, error)
	ListOrgMemberships(ctx context.Context, orgID string) ([]*domain.OrgMembership, error)
	ListProjectMemberships(ctx context.Context, projectID string) ([]*domain.ProjectMembership, error)
	// UpsertOrgMembership inserts m as-is, or on (org_id, user_id) conflict
	// updates the existing row to m.Role with status ACCEPTED. Single
	// statement, so two concurrent invites serialize on the unique index.
	UpsertOrgMembership(ctx context.Context, m *domain.OrgMembership) (*domain.OrgMembership, error)
	UpsertProjectMembership(ctx context.Context, m *domain.ProjectMembership) (*domain.ProjectMembership, error)
	// UpdateOrgMembershipStatus sets the row's status and returns the updated
	// row, or nil when no row exists for the key.
	UpdateOrgMembershipStatus(ctx context.Context, orgID, userID string, status domain.Status) (*domain.OrgMembership, error)
	UpdateProjectMembershipStatus(ctx context.Context, projectID, userID string, status domain.Status) (*domain.ProjectMembership, error)
}

package repository

import (
	"context"

	membershipdomain "projecthub/backend/internal/membership/domain"
	"projecthub/backend/internal/organization/domain"
)

// Repository defines persistence for organizations.
type Repository interface {
	GetOrganizationByID(ctx context.Context, id string) (*domain.Org, error)
	// CreateOrganizationWithOwner creates the organization and the owner's
	// ACCEPTED membership in one transaction; partial creation never persists.
	CreateOrganizationWithOwner(ctx context.Context, o *domain.Org, m *membershipdomain.OrgMembership) error
	ListOrganizationsByUser(ctx context.Context, userID string) ([]*domain.Org, error)
}

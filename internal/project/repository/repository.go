package repository

import (
	"context"

	membershipdomain "projecthub/backend/internal/membership/domain"
	"projecthub/backend/internal/project/domain"
)

// Repository defines persistence for projects.
type Repository interface {
	GetProjectByID(ctx context.Context, id string) (*domain.Project, error)
	// CreateProjectWithOwner creates the project and the creator's ACCEPTED
	// PROJECT_ADMIN membership in one transaction.
	CreateProjectWithOwner(ctx context.Context, p *domain.Project, m *membershipdomain.ProjectMembership) error
	ListProjectsByOrg(ctx context.Context, orgID string) ([]*domain.Project, error)
}

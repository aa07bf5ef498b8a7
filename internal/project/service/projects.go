// Package service holds project business logic: creation with the owner's
// membership, lookup, and listing, all gated on the caller's organization
// role.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"projecthub/backend/internal/audit"
	membershipdomain "projecthub/backend/internal/membership/domain"
	"projecthub/backend/internal/platform/rbac"
	"projecthub/backend/internal/project/domain"
)

// Store is the project repository surface used by the service.
type Store interface {
	GetProjectByID(ctx context.Context, id string) (*domain.Project, error)
	CreateProjectWithOwner(ctx context.Context, p *domain.Project, m *membershipdomain.ProjectMembership) error
	ListProjectsByOrg(ctx context.Context, orgID string) ([]*domain.Project, error)
}

// RoleResolver resolves the caller's effective roles in both scopes.
type RoleResolver interface {
	ResolveOrgRole(ctx context.Context, userID, orgID string, allowed ...membershipdomain.Role) (membershipdomain.Role, error)
	ResolveProjectRole(ctx context.Context, userID, projectID string, allowed ...membershipdomain.Role) (*rbac.ProjectAccess, error)
}

// Projects creates and lists projects within an organization.
type Projects struct {
	store    Store
	resolver RoleResolver
	audit    audit.AuditLogger
}

// NewProjects returns a Projects service. auditLogger may be nil.
func NewProjects(store Store, resolver RoleResolver, auditLogger audit.AuditLogger) *Projects {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &Projects{store: store, resolver: resolver, audit: auditLogger}
}

// Create creates a project in orgID owned by callerID, together with the
// owner's ACCEPTED PROJECT_ADMIN membership. Requires an org role that may
// manage projects.
func (s *Projects) Create(ctx context.Context, callerID, orgID, name, description string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, rbac.ErrInvalidInput
	}
	if _, err := s.resolver.ResolveOrgRole(ctx, callerID, orgID, rbac.ProjectManagerRoles...); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &domain.Project{
		ID:          uuid.New().String(),
		OrgID:       orgID,
		Name:        name,
		Description: description,
		OwnerID:     callerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m := &membershipdomain.ProjectMembership{
		ID:        uuid.New().String(),
		ProjectID: p.ID,
		UserID:    callerID,
		Role:      membershipdomain.RoleProjectAdmin,
		Status:    membershipdomain.StatusAccepted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateProjectWithOwner(ctx, p, m); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.audit.LogEvent(ctx, orgID, callerID, audit.ActionProjectCreated, "project",
		fmt.Sprintf(`{"project":%q}`, p.ID))

	return p, nil
}

// Get returns the project when the caller holds any role on it.
func (s *Projects) Get(ctx context.Context, callerID, projectID string) (*domain.Project, error) {
	if _, err := s.resolver.ResolveProjectRole(ctx, callerID, projectID, rbac.ProjectReaderRoles...); err != nil {
		return nil, err
	}
	p, err := s.store.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if p == nil {
		return nil, rbac.ErrNotFound
	}
	return p, nil
}

// ListByOrg lists the organization's projects for any accepted org member.
func (s *Projects) ListByOrg(ctx context.Context, callerID, orgID string) ([]*domain.Project, error) {
	if _, err := s.resolver.ResolveOrgRole(ctx, callerID, orgID); err != nil {
		return nil, err
	}
	projects, err := s.store.ListProjectsByOrg(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"projecthub/backend/internal/audit"
	membershipdomain "projecthub/backend/internal/membership/domain"
	"projecthub/backend/internal/organization/domain"
	"projecthub/backend/internal/platform/rbac"
	userdomain "projecthub/backend/internal/user/domain"
)

// Orgs creates organizations on explicit request (as opposed to the
// bootstrapper's first-login auto-creation).
type Orgs struct {
	users UserStore
	store OrgStore
	audit audit.AuditLogger
}

// NewOrgs returns an Orgs service. auditLogger may be nil.
func NewOrgs(users UserStore, store OrgStore, auditLogger audit.AuditLogger) *Orgs {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &Orgs{users: users, store: store, audit: auditLogger}
}

// Create creates an organization owned by ownerID together with the owner's
// ACCEPTED SUPER_ADMIN membership. CLIENT-tier accounts cannot own
// organizations and get rbac.ErrForbidden.
func (s *Orgs) Create(ctx context.Context, ownerID, name string) (*domain.Org, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, rbac.ErrInvalidInput
	}
	u, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if u == nil {
		return nil, rbac.ErrNotFound
	}
	if u.AccountRole == userdomain.AccountRoleClient {
		return nil, rbac.ErrForbidden
	}

	now := time.Now().UTC()
	org := &domain.Org{
		ID:        uuid.New().String(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	membership := &membershipdomain.OrgMembership{
		ID:        uuid.New().String(),
		OrgID:     org.ID,
		UserID:    ownerID,
		Role:      membershipdomain.RoleSuperAdmin,
		Status:    membershipdomain.StatusAccepted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateOrganizationWithOwner(ctx, org, membership); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}

	s.audit.LogEvent(ctx, org.ID, ownerID, audit.ActionOrgCreated, "organization", "")

	return org, nil
}

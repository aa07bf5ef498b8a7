// Package service holds organization-scope business logic, most importantly
// the default-organization bootstrapper that guarantees every non-client user
// has a home organization.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"projecthub/backend/internal/audit"
	membershipdomain "projecthub/backend/internal/membership/domain"
	"projecthub/backend/internal/organization/domain"
	"projecthub/backend/internal/platform/rbac"
	userdomain "projecthub/backend/internal/user/domain"
)

// uniqueViolation is the Postgres error code for a unique-constraint failure.
const uniqueViolation = "23505"

// UserStore is the minimal user repository needed by the bootstrapper.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// OrgStore is the minimal organization repository needed by the bootstrapper.
type OrgStore interface {
	CreateOrganizationWithOwner(ctx context.Context, o *domain.Org, m *membershipdomain.OrgMembership) error
}

// MembershipStore is the minimal membership repository needed by the bootstrapper.
type MembershipStore interface {
	OldestAcceptedOrgMembership(ctx context.Context, userID string) (*membershipdomain.OrgMembership, error)
}

// DefaultOrg is the user's home organization and the role held there.
type DefaultOrg struct {
	OrganizationID string
	Role           membershipdomain.Role
}

// Bootstrapper idempotently ensures a user has at least one organization
// membership, creating an owned organization on first use.
type Bootstrapper struct {
	users       UserStore
	orgs        OrgStore
	memberships MembershipStore
	audit       audit.AuditLogger
}

// NewBootstrapper returns a Bootstrapper with the given dependencies.
// auditLogger may be nil.
func NewBootstrapper(users UserStore, orgs OrgStore, memberships MembershipStore, auditLogger audit.AuditLogger) *Bootstrapper {
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	return &Bootstrapper{users: users, orgs: orgs, memberships: memberships, audit: auditLogger}
}

// EnsureDefault returns the user's home organization: the oldest ACCEPTED org
// membership by join time, so repeated calls always land on the same org.
// When the user has none, an organization is created with the user as owner
// and a single ACCEPTED SUPER_ADMIN membership, atomically.
//
// CLIENT-tier accounts are never auto-provisioned an organization; they must
// be invited, and get rbac.ErrForbidden here instead.
//
// Two concurrent first calls serialize on the partial unique index over
// default organizations: the losing writer sees a unique violation and reads
// back the winner's membership.
func (b *Bootstrapper) EnsureDefault(ctx context.Context, userID string) (*DefaultOrg, error) {
	m, err := b.memberships.OldestAcceptedOrgMembership(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("lookup membership: %w", err)
	}
	if m != nil {
		return &DefaultOrg{OrganizationID: m.OrgID, Role: m.Role}, nil
	}

	u, err := b.users.GetByID(ctx, userID)
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
		Name:      defaultOrgName(u),
		OwnerID:   u.ID,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	membership := &membershipdomain.OrgMembership{
		ID:        uuid.New().String(),
		OrgID:     org.ID,
		UserID:    u.ID,
		Role:      membershipdomain.RoleSuperAdmin,
		Status:    membershipdomain.StatusAccepted,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := b.orgs.CreateOrganizationWithOwner(ctx, org, membership); err != nil {
		if isUniqueViolation(err) {
			// Lost the first-login race; the winner's org is now the home org.
			m, err := b.memberships.OldestAcceptedOrgMembership(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("lookup membership after race: %w", err)
			}
			if m != nil {
				return &DefaultOrg{OrganizationID: m.OrgID, Role: m.Role}, nil
			}
		}
		return nil, fmt.Errorf("create default organization: %w", err)
	}

	b.audit.LogEvent(ctx, org.ID, u.ID, audit.ActionOrgCreated, "organization", "")

	return &DefaultOrg{OrganizationID: org.ID, Role: membershipdomain.RoleSuperAdmin}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// defaultOrgName derives a deterministic organization name from the user's
// display name, falling back to the email local part, then the user id.
func defaultOrgName(u *userdomain.User) string {
	if name := strings.TrimSpace(u.Name); name != "" {
		return name + "'s Organization"
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at] + "'s Organization"
	}
	return u.ID + "'s Organization"
}

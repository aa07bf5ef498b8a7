// Package rbac resolves what role a principal holds on an organization or
// project and whether that role authorizes a requested action.
//
// Two rules are deliberate and must not be "improved":
//   - allowed sets match exactly: naming PROJECT_MANAGER does not implicitly
//     admit SUPER_ADMIN; callers list every role they intend to permit.
//   - privilege does not cross scopes: an org SUPER_ADMIN gets no project
//     access unless also a project member or the project owner.
package rbac

import (
	"context"
	"fmt"

	membershipdomain "projecthub/backend/internal/membership/domain"
	orgdomain "projecthub/backend/internal/organization/domain"
	projectdomain "projecthub/backend/internal/project/domain"
)

// OrgGetter returns an organization by ID, or nil if absent.
type OrgGetter interface {
	GetOrganizationByID(ctx context.Context, id string) (*orgdomain.Org, error)
}

// ProjectGetter returns a project by ID, or nil if absent.
type ProjectGetter interface {
	GetProjectByID(ctx context.Context, id string) (*projectdomain.Project, error)
}

// MembershipGetter is the minimal membership-store view the engine needs.
type MembershipGetter interface {
	// GetOrgMembership returns the (orgID, userID) row regardless of status,
	// or nil if absent.
	GetOrgMembership(ctx context.Context, orgID, userID string) (*membershipdomain.OrgMembership, error)
	// GetAcceptedProjectMembership returns the (projectID, userID) row only
	// when its status is ACCEPTED; otherwise nil.
	GetAcceptedProjectMembership(ctx context.Context, projectID, userID string) (*membershipdomain.ProjectMembership, error)
}

// ProjectAccess is the result of resolving a principal's project role. OrgID
// and OwnerID ride along so callers that need "is this also the owner" avoid a
// second round trip.
type ProjectAccess struct {
	Role    membershipdomain.Role
	OrgID   string
	OwnerID string
}

// Authorizer is the role-resolution engine. It is stateless and never mutates
// store state; every call re-reads current membership rows so role changes
// take effect immediately.
type Authorizer struct {
	orgs        OrgGetter
	projects    ProjectGetter
	memberships MembershipGetter
}

// NewAuthorizer returns an Authorizer over the given store views.
func NewAuthorizer(orgs OrgGetter, projects ProjectGetter, memberships MembershipGetter) *Authorizer {
	return &Authorizer{orgs: orgs, projects: projects, memberships: memberships}
}

// ResolveOrgRole resolves the principal's effective role on the organization.
// The org owner is always SUPER_ADMIN, membership row or not; anyone else
// needs an ACCEPTED membership (PENDING/DECLINED/REVOKED rows count as no
// access). If allowed is non-empty the resolved role must be listed in it.
// Returns ErrNotFound for a missing org and ErrForbidden otherwise on denial.
func (a *Authorizer) ResolveOrgRole(ctx context.Context, userID, orgID string, allowed ...membershipdomain.Role) (membershipdomain.Role, error) {
	org, err := a.orgs.GetOrganizationByID(ctx, orgID)
	if err != nil {
		return "", fmt.Errorf("get organization: %w", err)
	}
	if org == nil {
		return "", ErrNotFound
	}
	role, err := a.effectiveOrgRole(ctx, userID, org)
	if err != nil {
		return "", err
	}
	if !roleAllowed(role, allowed) {
		return "", ErrForbidden
	}
	return role, nil
}

// ResolveProjectRole resolves the principal's effective role on the project.
// The project owner short-circuits to PROJECT_ADMIN regardless of membership
// rows; anyone else needs an ACCEPTED project membership. If allowed is
// non-empty the resolved role must be listed in it. Returns ErrNotFound for a
// missing project and ErrForbidden otherwise on denial.
func (a *Authorizer) ResolveProjectRole(ctx context.Context, userID, projectID string, allowed ...membershipdomain.Role) (*ProjectAccess, error) {
	project, err := a.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, ErrNotFound
	}
	role, err := a.effectiveProjectRole(ctx, userID, project)
	if err != nil {
		return nil, err
	}
	if !roleAllowed(role, allowed) {
		return nil, ErrForbidden
	}
	return &ProjectAccess{Role: role, OrgID: project.OrgID, OwnerID: project.OwnerID}, nil
}

// effectiveOrgRole checks ownership first, then falls back to the membership
// row. This is the single place the ownership-override rule lives for orgs.
func (a *Authorizer) effectiveOrgRole(ctx context.Context, userID string, org *orgdomain.Org) (membershipdomain.Role, error) {
	if org.OwnerID == userID {
		return membershipdomain.RoleSuperAdmin, nil
	}
	m, err := a.memberships.GetOrgMembership(ctx, org.ID, userID)
	if err != nil {
		return "", fmt.Errorf("get org membership: %w", err)
	}
	if m == nil || m.Status != membershipdomain.StatusAccepted {
		return "", ErrForbidden
	}
	return m.Role, nil
}

// effectiveProjectRole mirrors effectiveOrgRole for projects. The owner
// bypass exists mostly as a guarantee for legacy rows, since project creation
// inserts an accepted PROJECT_ADMIN membership for the creator.
func (a *Authorizer) effectiveProjectRole(ctx context.Context, userID string, project *projectdomain.Project) (membershipdomain.Role, error) {
	if project.OwnerID == userID {
		return membershipdomain.RoleProjectAdmin, nil
	}
	m, err := a.memberships.GetAcceptedProjectMembership(ctx, project.ID, userID)
	if err != nil {
		return "", fmt.Errorf("get project membership: %w", err)
	}
	if m == nil {
		return "", ErrForbidden
	}
	return m.Role, nil
}

// roleAllowed reports whether role is listed in allowed. An empty allowed set
// means any resolved role passes. Matching is exact set membership; no
// hierarchy containment is implied.
func roleAllowed(role membershipdomain.Role, allowed []membershipdomain.Role) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

package rbac

import (
	"context"
	"errors"
	"testing"

	membershipdomain "projecthub/backend/internal/membership/domain"
	orgdomain "projecthub/backend/internal/organization/domain"
	projectdomain "projecthub/backend/internal/project/domain"
)

type mockStore struct {
	orgs               map[string]*orgdomain.Org
	projects           map[string]*projectdomain.Project
	orgMemberships     map[string]*membershipdomain.OrgMembership     // key orgID:userID
	projectMemberships map[string]*membershipdomain.ProjectMembership // key projectID:userID
	err                error
}

func (s *mockStore) GetOrganizationByID(ctx context.Context, id string) (*orgdomain.Org, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.orgs[id], nil
}

func (s *mockStore) GetProjectByID(ctx context.Context, id string) (*projectdomain.Project, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.projects[id], nil
}

func (s *mockStore) GetOrgMembership(ctx context.Context, orgID, userID string) (*membershipdomain.OrgMembership, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.orgMemberships[orgID+":"+userID], nil
}

func (s *mockStore) GetAcceptedProjectMembership(ctx context.Context, projectID, userID string) (*membershipdomain.ProjectMembership, error) {
	if s.err != nil {
		return nil, s.err
	}
	m := s.projectMemberships[projectID+":"+userID]
	if m == nil || m.Status != membershipdomain.StatusAccepted {
		return nil, nil
	}
	return m, nil
}

func newAuthorizer(s *mockStore) *Authorizer {
	if s.orgs == nil {
		s.orgs = map[string]*orgdomain.Org{}
	}
	if s.projects == nil {
		s.projects = map[string]*projectdomain.Project{}
	}
	if s.orgMemberships == nil {
		s.orgMemberships = map[string]*membershipdomain.OrgMembership{}
	}
	if s.projectMemberships == nil {
		s.projectMemberships = map[string]*membershipdomain.ProjectMembership{}
	}
	return NewAuthorizer(s, s, s)
}

func TestResolveOrgRole_UnknownOrg_NotFound(t *testing.T) {
	a := newAuthorizer(&mockStore{})

	_, err := a.ResolveOrgRole(context.Background(), "user-1", "org-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveOrgRole_NoMembership_Forbidden(t *testing.T) {
	a := newAuthorizer(&mockStore{
		orgs: map[string]*orgdomain.Org{
			"org-1": {ID: "org-1", Name: "Acme", OwnerID: "owner-1"},
		},
	})

	_, err := a.ResolveOrgRole(context.Background(), "user-1", "org-1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestResolveOrgRole_NonAcceptedStatuses_Forbidden(t *testing.T) {
	statuses := []membershipdomain.Status{
		membershipdomain.StatusPending,
		membershipdomain.StatusDeclined,
		membershipdomain.StatusRevoked,
	}
	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			a := newAuthorizer(&mockStore{
				orgs: map[string]*orgdomain.Org{
					"org-1": {ID: "org-1", OwnerID: "owner-1"},
				},
				orgMemberships: map[string]*membershipdomain.OrgMembership{
					"org-1:user-1": {OrgID: "org-1", UserID: "user-1", Role: membershipdomain.RoleSuperAdmin, Status: status},
				},
			})

			_, err := a.ResolveOrgRole(context.Background(), "user-1", "org-1")
			if !errors.Is(err, ErrForbidden) {
				t.Fatalf("status %s: err = %v, want ErrForbidden", status, err)
			}
		})
	}
}

func TestResolveOrgRole_AcceptedMembership_ReturnsRole(t *testing.T) {
	a := newAuthorizer(&mockStore{
		orgs: map[string]*orgdomain.Org{
			"org-1": {ID: "org-1", OwnerID: "owner-1"},
		},
		orgMemberships: map[string]*membershipdomain.OrgMembership{
			"org-1:user-1": {OrgID: "org-1", UserID: "user-1", Role: membershipdomain.RoleTeamLead, Status: membershipdomain.StatusAccepted},
		},
	})

	role, err := a.ResolveOrgRole(context.Background(), "user-1", "org-1")
	if err != nil {
		t.Fatalf("ResolveOrgRole: %v", err)
	}
	if role != membershipdomain.RoleTeamLead {
		t.Errorf("role = %s, want %s", role, membershipdomain.RoleTeamLead)
	}
}

func TestResolveOrgRole_AllowedSetExactMatch(t *testing.T) {
	// The allowed set is matched exactly: listing a nominally lower role does
	// not admit a higher one, and vice versa.
	testCases := []struct {
		name    string
		held    membershipdomain.Role
		allowed []membershipdomain.Role
		wantErr error
	}{
		{"held role listed", membershipdomain.RoleProjectManager, []membershipdomain.Role{membershipdomain.RoleProjectManager}, nil},
		{"higher role not admitted by lower entry", membershipdomain.RoleSuperAdmin, []membershipdomain.Role{membershipdomain.RoleProjectManager}, ErrForbidden},
		{"lower role not admitted by higher entry", membershipdomain.RoleTeamMember, []membershipdomain.Role{membershipdomain.RoleSuperAdmin}, ErrForbidden},
		{"role among several listed", membershipdomain.RoleTeamLead, []membershipdomain.Role{membershipdomain.RoleSuperAdmin, membershipdomain.RoleProjectAdmin, membershipdomain.RoleTeamLead}, nil},
		{"empty set admits any accepted role", membershipdomain.RoleClient, nil, nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := newAuthorizer(&mockStore{
				orgs: map[string]*orgdomain.Org{
					"org-1": {ID: "org-1", OwnerID: "owner-1"},
				},
				orgMemberships: map[string]*membershipdomain.OrgMembership{
					"org-1:user-1": {OrgID: "org-1", UserID: "user-1", Role: tc.held, Status: membershipdomain.StatusAccepted},
				},
			})

			role, err := a.ResolveOrgRole(context.Background(), "user-1", "org-1", tc.allowed...)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ResolveOrgRole: %v", err)
			}
			if role != tc.held {
				t.Errorf("role = %s, want %s", role, tc.held)
			}
		})
	}
}

func TestResolveOrgRole_OwnerOverride_NoMembershipRow(t *testing.T) {
	a := newAuthorizer(&mockStore{
		orgs: map[string]*orgdomain.Org{
			"org-1": {ID: "org-1", OwnerID: "owner-1"},
		},
	})

	role, err := a.ResolveOrgRole(context.Background(), "owner-1", "org-1")
	if err != nil {
		t.Fatalf("ResolveOrgRole: %v", err)
	}
	if role != membershipdomain.RoleSuperAdmin {
		t.Errorf("role = %s, want %s", role, membershipdomain.RoleSuperAdmin)
	}
}

func TestResolveOrgRole_StoreError_Propagated(t *testing.T) {
	a := newAuthorizer(&mockStore{err: errors.New("connection refused")})

	_, err := a.ResolveOrgRole(context.Background(), "user-1", "org-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		t.Fatalf("store error must not surface as a denial, got %v", err)
	}
}

func TestResolveProjectRole_UnknownProject_NotFound(t *testing.T) {
	a := newAuthorizer(&mockStore{})

	_, err := a.ResolveProjectRole(context.Background(), "user-1", "proj-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestResolveProjectRole_OwnerOverride_NoMembershipRow(t *testing.T) {
	a := newAuthorizer(&mockStore{
		projects: map[string]*projectdomain.Project{
			"proj-1": {ID: "proj-1", OrgID: "org-1", OwnerID: "owner-1"},
		},
	})

	access, err := a.ResolveProjectRole(context.Background(), "owner-1", "proj-1")
	if err != nil {
		t.Fatalf("ResolveProjectRole: %v", err)
	}
	if access.Role != membershipdomain.RoleProjectAdmin {
		t.Errorf("role = %s, want %s", access.Role, membershipdomain.RoleProjectAdmin)
	}
	if access.OrgID != "org-1" {
		t.Errorf("org_id = %q, want %q", access.OrgID, "org-1")
	}
	if access.OwnerID != "owner-1" {
		t.Errorf("owner_id = %q, want %q", access.OwnerID, "owner-1")
	}
}

func TestResolveProjectRole_OwnerBypassesPendingRow(t *testing.T) {
	// The ownership override skips the accepted-status check entirely.
	a := newAuthorizer(&mockStore{
		projects: map[string]*projectdomain.Project{
			"proj-1": {ID: "proj-1", OrgID: "org-1", OwnerID: "owner-1"},
		},
		projectMemberships: map[string]*membershipdomain.ProjectMembership{
			"proj-1:owner-1": {ProjectID: "proj-1", UserID: "owner-1", Role: membershipdomain.RoleTeamMember, Status: membershipdomain.StatusPending},
		},
	})

	access, err := a.ResolveProjectRole(context.Background(), "owner-1", "proj-1")
	if err != nil {
		t.Fatalf("ResolveProjectRole: %v", err)
	}
	if access.Role != membershipdomain.RoleProjectAdmin {
		t.Errorf("role = %s, want %s", access.Role, membershipdomain.RoleProjectAdmin)
	}
}

func TestResolveProjectRole_AcceptedMembership_ReturnsRole(t *testing.T) {
	a := newAuthorizer(&mockStore{
		projects: map[string]*projectdomain.Project{
			"proj-1": {ID: "proj-1", OrgID: "org-1", OwnerID: "owner-1"},
		},
		projectMemberships: map[string]*membershipdomain.ProjectMembership{
			"proj-1:user-1": {ProjectID: "proj-1", UserID: "user-1", Role: membershipdomain.RoleTeamMember, Status: membershipdomain.StatusAccepted},
		},
	})

	access, err := a.ResolveProjectRole(context.Background(), "user-1", "proj-1", membershipdomain.RoleTeamMember)
	if err != nil {
		t.Fatalf("ResolveProjectRole: %v", err)
	}
	if access.Role != membershipdomain.RoleTeamMember {
		t.Errorf("role = %s, want %s", access.Role, membershipdomain.RoleTeamMember)
	}
}

func TestResolveProjectRole_PendingMembership_Forbidden(t *testing.T) {
	a := newAuthorizer(&mockStore{
		projects: map[string]*projectdomain.Project{
			"proj-1": {ID: "proj-1", OrgID: "org-1", OwnerID: "owner-1"},
		},
		projectMemberships: map[string]*membershipdomain.ProjectMembership{
			"proj-1:user-1": {ProjectID: "proj-1", UserID: "user-1", Role: membershipdomain.RoleTeamMember, Status: membershipdomain.StatusPending},
		},
	})

	_, err := a.ResolveProjectRole(context.Background(), "user-1", "proj-1", membershipdomain.RoleTeamMember)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestResolveProjectRole_OrgRoleDoesNotCrossScopes(t *testing.T) {
	// An org SUPER_ADMIN with no project membership and no project ownership
	// gets nothing at project level. This mirrors the source behavior and is a
	// design choice, not an oversight.
	a := newAuthorizer(&mockStore{
		orgs: map[string]*orgdomain.Org{
			"org-1": {ID: "org-1", OwnerID: "owner-1"},
		},
		projects: map[string]*projectdomain.Project{
			"proj-1": {ID: "proj-1", OrgID: "org-1", OwnerID: "other-owner"},
		},
		orgMemberships: map[string]*membershipdomain.OrgMembership{
			"org-1:user-1": {OrgID: "org-1", UserID: "user-1", Role: membershipdomain.RoleSuperAdmin, Status: membershipdomain.StatusAccepted},
		},
	})

	role, err := a.ResolveOrgRole(context.Background(), "user-1", "org-1")
	if err != nil || role != membershipdomain.RoleSuperAdmin {
		t.Fatalf("org role = %s, %v; want SUPER_ADMIN, nil", role, err)
	}

	_, err = a.ResolveProjectRole(context.Background(), "user-1", "proj-1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("project err = %v, want ErrForbidden", err)
	}
}

func TestResolveProjectRole_AllowedSet_NoHierarchyContainment(t *testing.T) {
	// The project owner resolves to PROJECT_ADMIN; an allowed set that lists
	// only PROJECT_MANAGER therefore excludes the owner. Callers that mean
	// "manager or above" must list every role.
	a := newAuthorizer(&mockStore{
		projects: map[string]*projectdomain.Project{
			"proj-1": {ID: "proj-1", OrgID: "org-1", OwnerID: "owner-1"},
		},
	})

	_, err := a.ResolveProjectRole(context.Background(), "owner-1", "proj-1", membershipdomain.RoleProjectManager)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	access, err := a.ResolveProjectRole(context.Background(), "owner-1", "proj-1",
		membershipdomain.RoleProjectManager, membershipdomain.RoleProjectAdmin)
	if err != nil {
		t.Fatalf("ResolveProjectRole: %v", err)
	}
	if access.Role != membershipdomain.RoleProjectAdmin {
		t.Errorf("role = %s, want %s", access.Role, membershipdomain.RoleProjectAdmin)
	}
}

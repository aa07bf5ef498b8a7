package rbac

import (
	membershipdomain "projecthub/backend/internal/membership/domain"
)

// Allowed sets used by membership-management call sites. These are exact
// sets, not thresholds: every role a call site intends to permit is listed,
// because the engine never expands a set by hierarchy.
var (
	// OrgManagerRoles may manage an organization's roster.
	OrgManagerRoles = []membershipdomain.Role{
		membershipdomain.RoleSuperAdmin,
		membershipdomain.RoleProjectAdmin,
	}
	// ProjectManagerRoles may manage a project's roster and settings.
	ProjectManagerRoles = []membershipdomain.Role{
		membershipdomain.RoleSuperAdmin,
		membershipdomain.RoleProjectAdmin,
		membershipdomain.RoleProjectManager,
	}
	// ProjectWriterRoles may create and update work items in a project.
	ProjectWriterRoles = []membershipdomain.Role{
		membershipdomain.RoleSuperAdmin,
		membershipdomain.RoleProjectAdmin,
		membershipdomain.RoleProjectManager,
		membershipdomain.RoleTeamLead,
		membershipdomain.RoleTeamMember,
	}
	// ProjectReaderRoles may view a project, including CLIENT members.
	ProjectReaderRoles = []membershipdomain.Role{
		membershipdomain.RoleSuperAdmin,
		membershipdomain.RoleProjectAdmin,
		membershipdomain.RoleProjectManager,
		membershipdomain.RoleTeamLead,
		membershipdomain.RoleTeamMember,
		membershipdomain.RoleClient,
	}
)

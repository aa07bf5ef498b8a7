package domain

import (
	"time"
)

// Role is an ordered privilege label shared by organization and project
// memberships. Privilege is not transitive across scopes: an org role grants
// nothing at project level (see platform/rbac).
type Role string

const (
	RoleSuperAdmin     Role = "SUPER_ADMIN"
	RoleProjectAdmin   Role = "PROJECT_ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleTeamLead       Role = "TEAM_LEAD"
	RoleTeamMember     Role = "TEAM_MEMBER"
	RoleClient         Role = "CLIENT"
)

// roleRank orders roles by privilege, highest first. Informational only; the
// authorization engine matches allowed sets exactly and never walks the order.
var roleRank = map[Role]int{
	RoleSuperAdmin:     6,
	RoleProjectAdmin:   5,
	RoleProjectManager: 4,
	RoleTeamLead:       3,
	RoleTeamMember:     2,
	RoleClient:         1,
}

// Valid reports whether r is one of the six known roles.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Status is the invitation lifecycle state of a membership. Only ACCEPTED
// memberships govern authorization.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusDeclined Status = "DECLINED"
	StatusRevoked  Status = "REVOKED"
)

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusRevoked:
		return true
	}
	return false
}

// OrgMembership links a user to an organization with a role and lifecycle
// status. (OrgID, UserID) is unique; the database enforces it.
type OrgMembership struct {
	ID        string
	OrgID     string
	UserID    string
	Role      Role
	Status    Status
	InvitedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectMembership links a user to a project. Project roles are authoritative
// for project-level actions; a user can hold different roles on different
// projects within one organization. (ProjectID, UserID) is unique.
type ProjectMembership struct {
	ID        string
	ProjectID string
	UserID    string
	Role      Role
	Status    Status
	InvitedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

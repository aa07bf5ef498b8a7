package domain

import (
	"errors"
	"time"
)

// User is the core user entity. AccountRole is the user's global account tier;
// it is informational except that CLIENT accounts can never own organizations
// and SUPER_ADMIN marks a platform administrator. Per-org and per-project
// privilege comes from membership rows, not from here.
type User struct {
	ID          string
	Email       string
	Name        string
	AccountRole AccountRole
	// PasswordHash is always set; users provisioned by an email invite get a
	// random unusable hash until they complete registration.
	PasswordHash string
	// PasswordSet is false for invite-provisioned placeholder accounts. Login
	// is rejected while it is false.
	PasswordSet bool
	Status      UserStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AccountRole is the global account tier. It reuses the membership role
// labels; only SUPER_ADMIN and CLIENT carry behavior at the account level.
type AccountRole string

const (
	AccountRoleSuperAdmin     AccountRole = "SUPER_ADMIN"
	AccountRoleProjectAdmin   AccountRole = "PROJECT_ADMIN"
	AccountRoleProjectManager AccountRole = "PROJECT_MANAGER"
	AccountRoleTeamLead       AccountRole = "TEAM_LEAD"
	AccountRoleTeamMember     AccountRole = "TEAM_MEMBER"
	AccountRoleClient         AccountRole = "CLIENT"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusDisabled UserStatus = "disabled"
)

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.AccountRole == "" {
		u.AccountRole = AccountRoleTeamMember
	}
	if u.Status == "" {
		u.Status = UserStatusActive
	}
	return nil
}

// Package service implements the membership invitation lifecycle: inviting
// users (by id or by email) into organizations and projects, and moving
// memberships between PENDING, ACCEPTED, DECLINED, and REVOKED.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"projecthub/backend/internal/audit"
	"projecthub/backend/internal/mail"
	"projecthub/backend/internal/membership/domain"
	"projecthub/backend/internal/platform/rbac"
	"projecthub/backend/internal/security"
	userdomain "projecthub/backend/internal/user/domain"
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserStore is the minimal user repository needed by the invitation service.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
}

// MembershipStore is the minimal membership repository needed by the invitation service.
type MembershipStore interface {
	UpsertOrgMembership(ctx context.Context, m *domain.OrgMembership) (*domain.OrgMembership, error)
	UpsertProjectMembership(ctx context.Context, m *domain.ProjectMembership) (*domain.ProjectMembership, error)
	UpdateOrgMembershipStatus(ctx context.Context, orgID, userID string, status domain.Status) (*domain.OrgMembership, error)
	UpdateProjectMembershipStatus(ctx context.Context, projectID, userID string, status domain.Status) (*domain.ProjectMembership, error)
}

// RoleResolver resolves a caller's effective role; used for the privileged
// side of invitation responses.
type RoleResolver interface {
	ResolveOrgRole(ctx context.Context, userID, orgID string, allowed ...domain.Role) (domain.Role, error)
	ResolveProjectRole(ctx context.Context, userID, projectID string, allowed ...domain.Role) (*rbac.ProjectAccess, error)
}

// InviteInput describes one invite-or-upsert request. Exactly one of
// TargetUserID / TargetEmail must be set; TargetUserID wins when both are.
// Role defaults to TEAM_MEMBER.
type InviteInput struct {
	InviterID    string
	TargetUserID string
	TargetEmail  string
	Role         domain.Role
}

// Invitations manages the membership invitation lifecycle. The caller is
// responsible for the invite authorization precondition (an administrative
// role on the scope, resolved via rbac); responses check their own
// permissions because the self-service rule lives here.
type Invitations struct {
	users       UserStore
	memberships MembershipStore
	resolver    RoleResolver
	hasher      *security.Hasher
	mailer      mail.Sender
	audit       audit.AuditLogger
	log         logrus.FieldLogger
}

// NewInvitations returns an Invitations service. mailer and auditLogger may
// be nil; mail is then skipped and audit events discarded.
func NewInvitations(users UserStore, memberships MembershipStore, resolver RoleResolver, hasher *security.Hasher, mailer mail.Sender, auditLogger audit.AuditLogger, log logrus.FieldLogger) *Invitations {
	if mailer == nil {
		mailer = mail.NopSender{}
	}
	if auditLogger == nil {
		auditLogger = audit.Nop{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Invitations{
		users:       users,
		memberships: memberships,
		resolver:    resolver,
		hasher:      hasher,
		mailer:      mailer,
		audit:       auditLogger,
		log:         log,
	}
}

// InviteOrgMember invites a user into the organization, or updates the
// existing membership. A known target (existing row) is set to the supplied
// role and accepted immediately; a new target gets a PENDING row. When the
// target is an email with no account, a placeholder account is provisioned
// eagerly and an invitation email is dispatched best-effort.
func (s *Invitations) InviteOrgMember(ctx context.Context, orgID string, in InviteInput) (*domain.OrgMembership, error) {
	target, notify, err := s.resolveTarget(ctx, in)
	if err != nil {
		return nil, err
	}
	role, err := inviteRole(in.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m, err := s.memberships.UpsertOrgMembership(ctx, &domain.OrgMembership{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		UserID:    target.ID,
		Role:      role,
		Status:    domain.StatusPending,
		InvitedBy: in.InviterID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert org membership: %w", err)
	}

	s.audit.LogEvent(ctx, orgID, in.InviterID, audit.ActionMemberInvited, "org_membership",
		fmt.Sprintf(`{"target":%q,"role":%q}`, target.ID, role))

	if notify {
		mail.SendAsync(s.mailer, invitationMessage(target.Email, "an organization", role), s.log)
	}
	return m, nil
}

// InviteProjectMember mirrors InviteOrgMember for project scope.
func (s *Invitations) InviteProjectMember(ctx context.Context, projectID string, in InviteInput) (*domain.ProjectMembership, error) {
	target, notify, err := s.resolveTarget(ctx, in)
	if err != nil {
		return nil, err
	}
	role, err := inviteRole(in.Role)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	m, err := s.memberships.UpsertProjectMembership(ctx, &domain.ProjectMembership{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		UserID:    target.ID,
		Role:      role,
		Status:    domain.StatusPending,
		InvitedBy: in.InviterID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert project membership: %w", err)
	}

	s.audit.LogEvent(ctx, "", in.InviterID, audit.ActionMemberInvited, "project_membership",
		fmt.Sprintf(`{"project":%q,"target":%q,"role":%q}`, projectID, target.ID, role))

	if notify {
		mail.SendAsync(s.mailer, invitationMessage(target.Email, "a project", role), s.log)
	}
	return m, nil
}

// RespondOrgInvitation moves the (orgID, targetUserID) membership to status.
// A user may accept or decline their own invitation without any role; acting
// on someone else's membership (e.g. revoking it) requires an administrative
// role on the organization. Returns rbac.ErrNotFound when no row exists.
func (s *Invitations) RespondOrgInvitation(ctx context.Context, callerID, orgID, targetUserID string, status domain.Status) (*domain.OrgMembership, error) {
	if err := validResponse(status); err != nil {
		return nil, err
	}
	if callerID != targetUserID {
		if _, err := s.resolver.ResolveOrgRole(ctx, callerID, orgID, rbac.OrgManagerRoles...); err != nil {
			return nil, err
		}
	}
	m, err := s.memberships.UpdateOrgMembershipStatus(ctx, orgID, targetUserID, status)
	if err != nil {
		return nil, fmt.Errorf("update org membership status: %w", err)
	}
	if m == nil {
		return nil, rbac.ErrNotFound
	}

	s.audit.LogEvent(ctx, orgID, callerID, audit.ActionInvitationResponse, "org_membership",
		fmt.Sprintf(`{"target":%q,"status":%q}`, targetUserID, status))

	return m, nil
}

// RespondProjectInvitation mirrors RespondOrgInvitation for project scope.
func (s *Invitations) RespondProjectInvitation(ctx context.Context, callerID, projectID, targetUserID string, status domain.Status) (*domain.ProjectMembership, error) {
	if err := validResponse(status); err != nil {
		return nil, err
	}
	if callerID != targetUserID {
		if _, err := s.resolver.ResolveProjectRole(ctx, callerID, projectID, rbac.ProjectManagerRoles...); err != nil {
			return nil, err
		}
	}
	m, err := s.memberships.UpdateProjectMembershipStatus(ctx, projectID, targetUserID, status)
	if err != nil {
		return nil, fmt.Errorf("update project membership status: %w", err)
	}
	if m == nil {
		return nil, rbac.ErrNotFound
	}

	s.audit.LogEvent(ctx, "", callerID, audit.ActionInvitationResponse, "project_membership",
		fmt.Sprintf(`{"project":%q,"target":%q,"status":%q}`, projectID, targetUserID, status))

	return m, nil
}

// resolveTarget finds the invited user by id or email, provisioning a
// placeholder account for an unknown email. The second return value reports
// whether an email notification should be sent.
func (s *Invitations) resolveTarget(ctx context.Context, in InviteInput) (*userdomain.User, bool, error) {
	if in.TargetUserID != "" {
		u, err := s.users.GetByID(ctx, in.TargetUserID)
		if err != nil {
			return nil, false, fmt.Errorf("get user: %w", err)
		}
		if u == nil {
			return nil, false, rbac.ErrNotFound
		}
		return u, false, nil
	}

	email := strings.TrimSpace(strings.ToLower(in.TargetEmail))
	if email == "" {
		return nil, false, rbac.ErrInvalidInput
	}
	if !emailRx.MatchString(email) {
		return nil, false, rbac.ErrInvalidInput
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, false, fmt.Errorf("get user by email: %w", err)
	}
	if u != nil {
		return u, true, nil
	}

	u, err = s.provisionPlaceholder(ctx, email)
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// provisionPlaceholder creates an account for an email that has never been
// seen. The account gets a random unusable password hash and password_set =
// false, so it cannot log in until the invitee completes registration. A
// concurrent duplicate provision fails on the users(email) unique index; that
// race is a known, accepted gap.
func (s *Invitations) provisionPlaceholder(ctx context.Context, email string) (*userdomain.User, error) {
	hash, err := s.hasher.Hash([]byte(uuid.New().String()))
	if err != nil {
		return nil, fmt.Errorf("hash placeholder password: %w", err)
	}
	now := time.Now().UTC()
	u := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		AccountRole:  userdomain.AccountRoleTeamMember,
		PasswordHash: hash,
		PasswordSet:  false,
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}
	return u, nil
}

func inviteRole(r domain.Role) (domain.Role, error) {
	if r == "" {
		return domain.RoleTeamMember, nil
	}
	if !r.Valid() {
		return "", rbac.ErrInvalidInput
	}
	return r, nil
}

// validResponse rejects statuses outside the valid transition set; PENDING is
// only ever set by an invite, never by a response.
func validResponse(status domain.Status) error {
	switch status {
	case domain.StatusAccepted, domain.StatusDeclined, domain.StatusRevoked:
		return nil
	}
	return rbac.ErrInvalidInput
}

func invitationMessage(to, scope string, role domain.Role) mail.Message {
	return mail.Message{
		To:      to,
		Subject: "You have been invited to " + scope,
		Body:    fmt.Sprintf("You have been invited to %s with the %s role. Sign in to respond.", scope, role),
	}
}

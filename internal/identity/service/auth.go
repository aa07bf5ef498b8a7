// Package service implements password-based register and login. Login also
// resolves the user's default organization so every session starts with an
// org context in the access token.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	orgservice "projecthub/backend/internal/organization/service"
	"projecthub/backend/internal/platform/rbac"
	"projecthub/backend/internal/security"
	userdomain "projecthub/backend/internal/user/domain"
)

// Sentinel errors for the auth service; the handler maps them to HTTP codes.
var (
	ErrEmailAlreadyRegistered = errors.New("email already registered")
	ErrInvalidCredentials     = errors.New("invalid credentials")
)

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLen = 8

// AuthResult holds the outcome of Register (user id only) or Login (token +
// user/org context).
type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	UserID      string
	OrgID       string
	OrgRole     string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*userdomain.User, error)
	Create(ctx context.Context, u *userdomain.User) error
	CompleteRegistration(ctx context.Context, id, name, passwordHash string) error
}

// Bootstrapper resolves or creates the user's default organization.
type Bootstrapper interface {
	EnsureDefault(ctx context.Context, userID string) (*orgservice.DefaultOrg, error)
}

// AuthService implements password-only register and login.
type AuthService struct {
	users     UserRepo
	bootstrap Bootstrapper
	hasher    *security.Hasher
	tokens    *security.TokenProvider
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(users UserRepo, bootstrap Bootstrapper, hasher *security.Hasher, tokens *security.TokenProvider) *AuthService {
	return &AuthService{users: users, bootstrap: bootstrap, hasher: hasher, tokens: tokens}
}

// Register creates an account for email, or completes registration on a
// placeholder account provisioned by an email invite. An email with a usable
// password gets ErrEmailAlreadyRegistered.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRx.MatchString(email) {
		return nil, rbac.ErrInvalidInput
	}
	if len(password) < minPasswordLen {
		return nil, rbac.ErrInvalidInput
	}

	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if existing != nil {
		if existing.PasswordSet {
			return nil, ErrEmailAlreadyRegistered
		}
		// Placeholder account from an invite: claim it. Pending invitations
		// stay attached because the user id does not change.
		if err := s.users.CompleteRegistration(ctx, existing.ID, name, hash); err != nil {
			return nil, fmt.Errorf("complete registration: %w", err)
		}
		return &AuthResult{UserID: existing.ID}, nil
	}

	now := time.Now().UTC()
	u := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		PasswordSet:  true,
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.Validate(); err != nil {
		return nil, rbac.ErrInvalidInput
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &AuthResult{UserID: u.ID}, nil
}

// Login verifies the password, ensures the user has a default organization,
// and issues an access token carrying the org context. A placeholder account
// that never completed registration cannot log in. CLIENT-tier accounts get a
// token without org context; they only see what they are invited to.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	if u == nil || !u.PasswordSet || u.Status != userdomain.UserStatusActive {
		return nil, ErrInvalidCredentials
	}
	if err := s.hasher.Compare(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	var orgID, orgRole string
	home, err := s.bootstrap.EnsureDefault(ctx, u.ID)
	switch {
	case err == nil:
		orgID = home.OrganizationID
		orgRole = string(home.Role)
	case errors.Is(err, rbac.ErrForbidden):
		// CLIENT tier: no auto-provisioned organization.
	default:
		return nil, fmt.Errorf("ensure default organization: %w", err)
	}

	token, expiresAt, err := s.tokens.IssueAccess(u.ID, orgID, orgRole)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	return &AuthResult{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		UserID:      u.ID,
		OrgID:       orgID,
		OrgRole:     orgRole,
	}, nil
}

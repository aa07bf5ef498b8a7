package service

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	orgservice "projecthub/backend/internal/organization/service"
	"projecthub/backend/internal/platform/rbac"
	"projecthub/backend/internal/security"
	userdomain "projecthub/backend/internal/user/domain"
)

type memUserRepo struct {
	byEmail   map[string]*userdomain.User
	created   []*userdomain.User
	completed map[string]string // id -> new hash
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{
		byEmail:   map[string]*userdomain.User{},
		completed: map[string]string{},
	}
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*userdomain.User, error) {
	return m.byEmail[email], nil
}

func (m *memUserRepo) Create(_ context.Context, u *userdomain.User) error {
	m.byEmail[u.Email] = u
	m.created = append(m.created, u)
	return nil
}

func (m *memUserRepo) CompleteRegistration(_ context.Context, id, name, passwordHash string) error {
	m.completed[id] = passwordHash
	for _, u := range m.byEmail {
		if u.ID == id {
			u.Name = name
			u.PasswordHash = passwordHash
			u.PasswordSet = true
		}
	}
	return nil
}

type fakeBootstrap struct {
	org *orgservice.DefaultOrg
	err error
}

func (f *fakeBootstrap) EnsureDefault(context.Context, string) (*orgservice.DefaultOrg, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.org, nil
}

func newTestAuth(t *testing.T, users UserRepo, bootstrap Bootstrapper) *AuthService {
	t.Helper()
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("NewTestTokenProvider: %v", err)
	}
	return NewAuthService(users, bootstrap, security.NewHasher(bcrypt.MinCost), tokens)
}

func TestRegister_NewAccount(t *testing.T) {
	users := newMemUserRepo()
	svc := newTestAuth(t, users, &fakeBootstrap{})

	res, err := svc.Register(context.Background(), "  Alice@Example.COM ", "Alice", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.UserID == "" {
		t.Fatalf("empty user id")
	}
	if len(users.created) != 1 {
		t.Fatalf("created %d users, want 1", len(users.created))
	}
	u := users.created[0]
	if u.Email != "alice@example.com" {
		t.Fatalf("email = %q, want normalized lowercase", u.Email)
	}
	if !u.PasswordSet {
		t.Fatalf("registered account must have a usable password")
	}
	if u.PasswordHash == "s3cret-pass" {
		t.Fatalf("password stored in plaintext")
	}
}

func TestRegister_InvalidInput(t *testing.T) {
	svc := newTestAuth(t, newMemUserRepo(), &fakeBootstrap{})

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"bad email", "not-an-email", "s3cret-pass"},
		{"short password", "a@b.com", "short"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(context.Background(), tc.email, "", tc.password); !errors.Is(err, rbac.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRegister_ExistingAccount(t *testing.T) {
	users := newMemUserRepo()
	users.byEmail["alice@example.com"] = &userdomain.User{
		ID: "u-1", Email: "alice@example.com", PasswordSet: true,
	}
	svc := newTestAuth(t, users, &fakeBootstrap{})

	_, err := svc.Register(context.Background(), "alice@example.com", "Alice", "s3cret-pass")
	if !errors.Is(err, ErrEmailAlreadyRegistered) {
		t.Fatalf("err = %v, want ErrEmailAlreadyRegistered", err)
	}
}

func TestRegister_ClaimsPlaceholderAccount(t *testing.T) {
	users := newMemUserRepo()
	users.byEmail["invitee@example.com"] = &userdomain.User{
		ID: "u-placeholder", Email: "invitee@example.com", PasswordSet: false,
	}
	svc := newTestAuth(t, users, &fakeBootstrap{})

	res, err := svc.Register(context.Background(), "invitee@example.com", "Invitee", "s3cret-pass")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if res.UserID != "u-placeholder" {
		t.Fatalf("user id = %s, want the placeholder's id so invitations stay attached", res.UserID)
	}
	if _, ok := users.completed["u-placeholder"]; !ok {
		t.Fatalf("placeholder registration was not completed")
	}
	if len(users.created) != 0 {
		t.Fatalf("no new account should be created when claiming a placeholder")
	}
}

func loginFixture(t *testing.T, bootstrap Bootstrapper) (*AuthService, *memUserRepo) {
	t.Helper()
	hasher := security.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash([]byte("s3cret-pass"))
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	users := newMemUserRepo()
	users.byEmail["alice@example.com"] = &userdomain.User{
		ID:           "u-1",
		Email:        "alice@example.com",
		PasswordHash: hash,
		PasswordSet:  true,
		Status:       userdomain.UserStatusActive,
	}
	return newTestAuth(t, users, bootstrap), users
}

func TestLogin_Success(t *testing.T) {
	svc, _ := loginFixture(t, &fakeBootstrap{org: &orgservice.DefaultOrg{
		OrganizationID: "org-1",
		Role:           "SUPER_ADMIN",
	}})

	res, err := svc.Login(context.Background(), "Alice@Example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.AccessToken == "" {
		t.Fatalf("empty access token")
	}
	if res.OrgID != "org-1" || res.OrgRole != "SUPER_ADMIN" {
		t.Fatalf("org context = (%s, %s)", res.OrgID, res.OrgRole)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, _ := loginFixture(t, &fakeBootstrap{})
	if _, err := svc.Login(context.Background(), "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newTestAuth(t, newMemUserRepo(), &fakeBootstrap{})
	if _, err := svc.Login(context.Background(), "ghost@example.com", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_PlaceholderAccountRejected(t *testing.T) {
	users := newMemUserRepo()
	users.byEmail["invitee@example.com"] = &userdomain.User{
		ID:          "u-placeholder",
		Email:       "invitee@example.com",
		PasswordSet: false,
		Status:      userdomain.UserStatusActive,
	}
	svc := newTestAuth(t, users, &fakeBootstrap{})

	if _, err := svc.Login(context.Background(), "invitee@example.com", "anything"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogin_ClientTierHasNoOrgContext(t *testing.T) {
	svc, _ := loginFixture(t, &fakeBootstrap{err: rbac.ErrForbidden})

	res, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if res.OrgID != "" || res.OrgRole != "" {
		t.Fatalf("client-tier login must carry no org context, got (%s, %s)", res.OrgID, res.OrgRole)
	}
	if res.AccessToken == "" {
		t.Fatalf("client-tier login must still issue a token")
	}
}

func TestLogin_BootstrapErrorPropagates(t *testing.T) {
	boom := errors.New("db down")
	svc, _ := loginFixture(t, &fakeBootstrap{err: boom})

	if _, err := svc.Login(context.Background(), "alice@example.com", "s3cret-pass"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
}

package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"projecthub/backend/internal/db"
	"projecthub/backend/internal/db/migrate"
	membershiprepo "projecthub/backend/internal/membership/repository"
	organizationrepo "projecthub/backend/internal/organization/repository"
	"projecthub/backend/internal/security"
	userdomain "projecthub/backend/internal/user/domain"
	userrepo "projecthub/backend/internal/user/repository"
)

// TestEnsureDefault_ConcurrentFirstLogin runs the bootstrapper concurrently
// against a real Postgres and asserts the partial unique index serializes the
// writers: every call lands on the same single organization.
func TestEnsureDefault_ConcurrentFirstLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("integration test; skipped in short mode")
	}
	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("projecthub_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Skipf("start postgres container (docker unavailable?): %v", err)
	}
	t.Cleanup(func() {
		_ = testcontainers.TerminateContainer(container)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	if err := migrate.Run(dsn, "up"); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	database, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	users := userrepo.NewPostgresRepository(database)
	orgs := organizationrepo.NewPostgresRepository(database)
	memberships := membershiprepo.NewPostgresRepository(database)

	hasher := security.NewHasher(bcrypt.MinCost)
	hash, err := hasher.Hash([]byte("s3cret-pass"))
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	now := time.Now().UTC()
	u := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        "race@example.com",
		Name:         "Race",
		AccountRole:  userdomain.AccountRoleTeamMember,
		PasswordHash: hash,
		PasswordSet:  true,
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}

	b := NewBootstrapper(users, orgs, memberships, nil)

	const workers = 8
	results := make([]*DefaultOrg, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = b.EnsureDefault(ctx, u.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("worker %d: %v", i, errs[i])
		}
		if results[i].OrganizationID != results[0].OrganizationID {
			t.Fatalf("worker %d landed on org %s, worker 0 on %s", i, results[i].OrganizationID, results[0].OrganizationID)
		}
	}

	var count int
	if err := database.QueryRowContext(ctx,
		`SELECT count(*) FROM organizations WHERE owner_id = $1`, u.ID,
	).Scan(&count); err != nil {
		t.Fatalf("count orgs: %v", err)
	}
	if count != 1 {
		t.Fatalf("owner has %d organizations, want exactly 1", count)
	}

	// A later call is idempotent and still lands on the same org.
	again, err := b.EnsureDefault(ctx, u.ID)
	if err != nil {
		t.Fatalf("EnsureDefault again: %v", err)
	}
	if again.OrganizationID != results[0].OrganizationID {
		t.Fatalf("repeat call landed on %s, want %s", again.OrganizationID, results[0].OrganizationID)
	}
}

// seed inserts development sample data for local testing.
// Idempotent: skips inserts if the dev user (dev@example.com) already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"projecthub/backend/internal/config"
	"projecthub/backend/internal/db"
	membershipdomain "projecthub/backend/internal/membership/domain"
	organizationdomain "projecthub/backend/internal/organization/domain"
	organizationrepo "projecthub/backend/internal/organization/repository"
	projectdomain "projecthub/backend/internal/project/domain"
	projectrepo "projecthub/backend/internal/project/repository"
	"projecthub/backend/internal/security"
	taskdomain "projecthub/backend/internal/task/domain"
	taskrepo "projecthub/backend/internal/task/repository"
	userdomain "projecthub/backend/internal/user/domain"
	userrepo "projecthub/backend/internal/user/repository"
)

const (
	devEmail    = "dev@example.com"
	devPassword = "devpassword"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	ctx := context.Background()
	users := userrepo.NewPostgresRepository(database)
	orgs := organizationrepo.NewPostgresRepository(database)
	projects := projectrepo.NewPostgresRepository(database)
	tasks := taskrepo.NewPostgresRepository(database)

	existing, err := users.GetByEmail(ctx, devEmail)
	if err != nil {
		log.Fatalf("get dev user: %v", err)
	}
	if existing != nil {
		log.Printf("seed: %s already exists, nothing to do", devEmail)
		return
	}

	hasher := security.NewHasher(cfg.BcryptCost)
	hash, err := hasher.Hash([]byte(devPassword))
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	now := time.Now().UTC()
	dev := &userdomain.User{
		ID:           uuid.New().String(),
		Email:        devEmail,
		Name:         "Dev User",
		AccountRole:  userdomain.AccountRoleTeamMember,
		PasswordHash: hash,
		PasswordSet:  true,
		Status:       userdomain.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, dev); err != nil {
		log.Fatalf("create dev user: %v", err)
	}

	org := &organizationdomain.Org{
		ID:        uuid.New().String(),
		Name:      "Dev User's Organization",
		OwnerID:   dev.ID,
		IsDefault: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	orgMembership := &membershipdomain.OrgMembership{
		ID:        uuid.New().String(),
		OrgID:     org.ID,
		UserID:    dev.ID,
		Role:      membershipdomain.RoleSuperAdmin,
		Status:    membershipdomain.StatusAccepted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := orgs.CreateOrganizationWithOwner(ctx, org, orgMembership); err != nil {
		log.Fatalf("create org: %v", err)
	}

	project := &projectdomain.Project{
		ID:          uuid.New().String(),
		OrgID:       org.ID,
		Name:        "Sample Project",
		Description: "Seeded project for local development",
		OwnerID:     dev.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	projectMembership := &membershipdomain.ProjectMembership{
		ID:        uuid.New().String(),
		ProjectID: project.ID,
		UserID:    dev.ID,
		Role:      membershipdomain.RoleProjectAdmin,
		Status:    membershipdomain.StatusAccepted,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := projects.CreateProjectWithOwner(ctx, project, projectMembership); err != nil {
		log.Fatalf("create project: %v", err)
	}

	for _, title := range []string{"Set up CI", "Write onboarding docs", "Review access roles"} {
		task := &taskdomain.Task{
			ID:        uuid.New().String(),
			ProjectID: project.ID,
			Title:     title,
			Status:    taskdomain.TaskStatusTodo,
			CreatedBy: dev.ID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tasks.CreateTask(ctx, task); err != nil {
			log.Fatalf("create task: %v", err)
		}
	}

	log.Printf("seed: created %s (password %q), org %s, project %s", devEmail, devPassword, org.ID, project.ID)
}

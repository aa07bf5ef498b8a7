package repository

import (
	"context"

	"projecthub/backend/internal/user/domain"
)

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// CompleteRegistration sets name and password hash on an invite-provisioned
	// placeholder account and flips password_set to true.
	CompleteRegistration(ctx context.Context, id, name, passwordHash string) error
}

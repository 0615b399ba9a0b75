package port

import (
	"context"

	"github.com/Rista10/event-planner-application/internal/core/domain"
)

// UserRepository exposes persistence behavior for users.
type UserRepository interface {
	Create(ctx context.Context, user domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	SetEmailVerified(ctx context.Context, id string, verified bool) error
	SetTwoFactorEnabled(ctx context.Context, id string, enabled bool) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}

package ports

import (
	"context"

	"github.com/boltapp/marketplace-api/internal/core/domain"
)

// UserRepository defines the persistence interface for user accounts.
// Email uniqueness is enforced by the storage layer (unique index); the
// service-level existence check is only an early exit.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

package ports

import (
	"context"

	"github.com/boltapp/marketplace-api/internal/core/domain"
)

// TokenPair is an access/refresh token couple issued together.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User   *domain.User
	Tokens TokenPair
}

// RegisterInput carries the already-validated registration payload.
type RegisterInput struct {
	Role     domain.Role
	Name     string
	Email    string
	Password string
}

// UpdateProfileInput carries the mutable profile fields. Nil pointers mean
// "leave unchanged".
type UpdateProfileInput struct {
	UserID string
	Name   *string
	Phone  *string
	City   *string
}

// AuthService orchestrates registration, credential verification, and the
// token lifecycles built on top of the user store.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	VerifyEmail(ctx context.Context, token string) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	UpdateProfile(ctx context.Context, in UpdateProfileInput) (*domain.User, error)

	// GetUserByID is a pure lookup used by the middleware chain. It never
	// fails on a miss: the user is nil when absent.
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/boltapp/marketplace-api/internal/api/metrics"
	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
	"github.com/boltapp/marketplace-api/internal/token"
)

// AuthService implements registration, login, and the token lifecycles.
type AuthService struct {
	repo     ports.UserRepository
	codec    *token.Codec
	hasher   *PasswordHasher
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, codec *token.Codec, hasher *PasswordHasher, notifier ports.Notifier, log zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, codec: codec, hasher: hasher, notifier: notifier, log: log}
}

// validatePassword enforces the password policy: at least 8 characters, one
// uppercase letter, and one digit.
func validatePassword(password string) error {
	if utf8.RuneCountInString(password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}
	var hasUpper, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper {
		return fmt.Errorf("%w: password must contain an uppercase letter", domain.ErrInvalidInput)
	}
	if !hasDigit {
		return fmt.Errorf("%w: password must contain a digit", domain.ErrInvalidInput)
	}
	return nil
}

// Register creates a new account at pending_verification and returns the
// user with a fresh token pair. The email-verification token goes to the
// notification dispatcher, not to the caller.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", domain.ErrInvalidInput)
	}
	if in.Role != domain.RoleClient && in.Role != domain.RoleProfessional {
		return nil, fmt.Errorf("%w: role must be client or professional", domain.ErrInvalidInput)
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	email := domain.NormalizeEmail(in.Email)

	// Early exit; the unique index on email is the real authority and the
	// repository surfaces a duplicate insert as ErrEmailTaken.
	if existing, err := s.repo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, domain.ErrEmailTaken
	} else if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Role:         in.Role,
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Status:       domain.StatusPendingVerification,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.issuePair(created)
	if err != nil {
		return nil, err
	}

	s.dispatchVerificationEmail(created)
	metrics.RegistrationsTotal.WithLabelValues(string(created.Role)).Inc()
	s.log.Info().Str("user_id", created.ID).Str("role", string(created.Role)).Msg("user registered")

	return &ports.AuthResult{User: created, Tokens: pair}, nil
}

// Login verifies credentials and issues a new token pair. The same generic
// error covers both an unknown email and a wrong password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("failure").Inc()
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}
	if user.Status.Blocked() {
		metrics.LoginsTotal.WithLabelValues("blocked").Inc()
		return nil, domain.ErrAccountBlocked
	}

	now := time.Now().UTC()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.repo.Update(ctx, user); err != nil {
		s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}

	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &ports.AuthResult{User: user, Tokens: pair}, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. Every failure
// collapses to ErrInvalidRefreshToken towards the caller; the sub-reason
// stays in the logs.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, err := s.codec.Verify(token.PurposeRefresh, refreshToken)
	if err != nil {
		s.log.Warn().Err(err).Msg("refresh token rejected")
		return nil, domain.ErrInvalidRefreshToken
	}

	user, err := s.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Status.Blocked() {
		s.log.Warn().Str("user_id", claims.Subject).Msg("refresh rejected: user missing or blocked")
		return nil, domain.ErrInvalidRefreshToken
	}

	// The previous refresh token is not revoked; it stays usable until its
	// natural expiry.
	pair, err := s.issuePair(user)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// VerifyEmail consumes an email-verification token. Verifying an
// already-verified account succeeds without side effects.
func (s *AuthService) VerifyEmail(ctx context.Context, tokenString string) error {
	claims, err := s.codec.Verify(token.PurposeVerifyEmail, tokenString)
	if err != nil {
		return fmt.Errorf("%w: verification token rejected", domain.ErrInvalidInput)
	}

	user, err := s.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return err
	}
	if user == nil || domain.NormalizeEmail(claims.Email) != user.Email {
		return fmt.Errorf("%w: verification token does not match the account", domain.ErrInvalidInput)
	}
	if user.Status.Blocked() {
		return fmt.Errorf("%w: account is not eligible for verification", domain.ErrInvalidInput)
	}
	if user.EmailVerified {
		return nil
	}

	now := time.Now().UTC()
	user.EmailVerified = true
	user.EmailVerifiedAt = &now
	user.UpdatedAt = now
	// Only the initial promotion happens here. Reinstating a suspended
	// account is an admin action, never a side effect of verification.
	if user.Status == domain.StatusPendingVerification {
		user.Status = domain.StatusActive
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("email verified")
	return nil
}

// RequestPasswordReset always succeeds, whether or not the email belongs to
// an account, so the endpoint cannot be used to enumerate users.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repo.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil || user == nil {
		return nil
	}

	resetToken, err := s.codec.Issue(token.PurposeResetPassword, user.ID, token.Extra{Email: user.Email})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue reset token")
		return nil
	}
	s.notifier.Enqueue(ports.Notification{
		Kind:      ports.NotifyPasswordReset,
		Recipient: user.Email,
		Subject:   "Reset your password",
		Token:     resetToken,
		DedupKey:  "reset:" + user.ID,
	})
	return nil
}

// ResetPassword consumes a password-reset token and stores a new hash.
func (s *AuthService) ResetPassword(ctx context.Context, tokenString, newPassword string) error {
	claims, err := s.codec.Verify(token.PurposeResetPassword, tokenString)
	if err != nil {
		return fmt.Errorf("%w: reset token rejected", domain.ErrInvalidInput)
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.GetUserByID(ctx, claims.Subject)
	if err != nil {
		return err
	}
	if user == nil || domain.NormalizeEmail(claims.Email) != user.Email {
		return fmt.Errorf("%w: reset token does not match the account", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID).Msg("password reset")
	return nil
}

// ChangePassword re-hashes and stores a new password for an authenticated
// caller after verifying the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now().UTC()
	return s.repo.Update(ctx, user)
}

// UpdateProfile applies the mutable profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, in ports.UpdateProfileInput) (*domain.User, error) {
	user, err := s.GetUserByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", domain.ErrInvalidInput)
		}
		user.Name = *in.Name
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}
	if in.City != nil {
		user.City = *in.City
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID returns the user or nil when absent. Store failures other
// than a miss are surfaced.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issuePair(user *domain.User) (ports.TokenPair, error) {
	access, err := s.codec.Issue(token.PurposeAccess, user.ID, token.Extra{
		Email: user.Email,
		Role:  string(user.Role),
		Name:  user.Name,
	})
	if err != nil {
		return ports.TokenPair{}, err
	}
	refresh, err := s.codec.Issue(token.PurposeRefresh, user.ID, token.Extra{})
	if err != nil {
		return ports.TokenPair{}, err
	}
	return ports.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) dispatchVerificationEmail(user *domain.User) {
	verifyToken, err := s.codec.Issue(token.PurposeVerifyEmail, user.ID, token.Extra{Email: user.Email})
	if err != nil {
		s.log.Error().Err(err).Str("user_id", user.ID).Msg("failed to issue verification token")
		return
	}
	s.notifier.Enqueue(ports.Notification{
		Kind:      ports.NotifyVerifyEmail,
		Recipient: user.Email,
		Subject:   "Verify your email address",
		Token:     verifyToken,
		DedupKey:  "verify:" + user.ID,
	})
}

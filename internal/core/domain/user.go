package domain

import (
	"errors"
	"strings"
	"time"
)

// Role identifies what kind of actor a user is. Fixed at registration.
type Role string

const (
	RoleClient       Role = "client"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleClient, RoleProfessional, RoleAdmin:
		return true
	}
	return false
}

// AccountStatus represents the lifecycle state of a user account.
type AccountStatus string

const (
	StatusPendingVerification AccountStatus = "pending_verification"
	StatusActive              AccountStatus = "active"
	StatusSuspended           AccountStatus = "suspended"
	StatusInactive            AccountStatus = "inactive"
)

// validStatusTransitions defines the allowed account state machine transitions.
var validStatusTransitions = map[AccountStatus][]AccountStatus{
	StatusPendingVerification: {StatusActive, StatusSuspended, StatusInactive},
	StatusActive:              {StatusSuspended, StatusInactive},
	StatusSuspended:           {StatusActive, StatusInactive},
	StatusInactive:            {},
}

// CanTransitionTo reports whether moving from the current status to next is valid.
func (s AccountStatus) CanTransitionTo(next AccountStatus) bool {
	for _, allowed := range validStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Blocked reports whether the status denies new session issuance.
// Already-issued tokens are not revoked; they expire naturally.
func (s AccountStatus) Blocked() bool {
	return s == StatusSuspended || s == StatusInactive
}

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountBlocked      = errors.New("account suspended or inactive")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrEmailNotVerified    = errors.New("email not verified")
	ErrUserNotFound        = errors.New("user not found")
	ErrForbidden           = errors.New("access forbidden")
)

// User models an account in the marketplace.
type User struct {
	ID              string        `json:"id" bson:"_id,omitempty"`
	Role            Role          `json:"role" bson:"role"`
	Name            string        `json:"name" bson:"name"`
	Email           string        `json:"email" bson:"email"`
	PasswordHash    string        `json:"-" bson:"password_hash"`
	Status          AccountStatus `json:"status" bson:"status"`
	EmailVerified   bool          `json:"email_verified" bson:"email_verified"`
	EmailVerifiedAt *time.Time    `json:"email_verified_at,omitempty" bson:"email_verified_at,omitempty"`
	Phone           string        `json:"phone,omitempty" bson:"phone,omitempty"`
	City            string        `json:"city,omitempty" bson:"city,omitempty"`
	LastLoginAt     *time.Time    `json:"last_login_at,omitempty" bson:"last_login_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at" bson:"updated_at"`
}

// NormalizeEmail lowercases and trims an email so uniqueness checks and
// lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

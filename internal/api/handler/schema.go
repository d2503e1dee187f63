package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/boltapp/marketplace-api/internal/core/domain"
)

// successEnvelope is the canonical success shape:
// {"success":true,"data":{...}}. Errors never pass through here; the
// central error handler owns the failure envelope.
type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, successEnvelope{Success: true, Data: data})
}

// errorEnvelope documents the failure shape for swagger; the central error
// handler renders it.
type errorEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type paginationResponse struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// --- Auth ---

type registerRequest struct {
	Role     string `json:"role"     validate:"required,oneof=client professional"`
	Name     string `json:"name"     validate:"required"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type passwordResetConfirmRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,password"`
}

type authResponse struct {
	User         *domain.User `json:"user,omitempty"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
}

// --- Users ---

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,password"`
}

type updateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	City  *string `json:"city"`
}

// --- Listings ---

type createListingRequest struct {
	Title       string  `json:"title"       validate:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"    validate:"required"`
	City        string  `json:"city"`
	Price       float64 `json:"price"       validate:"required,gt=0"`
	Currency    string  `json:"currency"`
}

type updateListingRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	City        *string  `json:"city"`
	Price       *float64 `json:"price"`
	Active      *bool    `json:"active"`
}

type listListingsResponse struct {
	Items      []domain.Listing   `json:"items"`
	Pagination paginationResponse `json:"pagination"`
}

// --- Requests & proposals ---

type createRequestRequest struct {
	Title       string  `json:"title"       validate:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category"    validate:"required"`
	City        string  `json:"city"`
	Budget      float64 `json:"budget"      validate:"gte=0"`
}

type listRequestsResponse struct {
	Items      []domain.ServiceRequest `json:"items"`
	Pagination paginationResponse      `json:"pagination"`
}

type submitProposalRequest struct {
	Amount        float64 `json:"amount"         validate:"required,gt=0"`
	Message       string  `json:"message"`
	EstimatedDays int     `json:"estimated_days" validate:"gte=0"`
}

// --- Bookings ---

type updateBookingStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed in_progress completed cancelled"`
	Notes  string `json:"notes"`
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/boltapp/marketplace-api/internal/api/middleware"
	"github.com/boltapp/marketplace-api/internal/core/domain"
)

// errorEnvelope is the canonical error shape for all API errors:
// {"success":false,"error":"<kind>","message":"...","details":[...]}.
type errorEnvelope struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Message string   `json:"message,omitempty"`
	Details []string `json:"details,omitempty"`
}

// Error kinds consumed by clients. The 401-vs-403 split is a hard contract:
// 401 means no valid identity, 403 means a known identity without privilege.
const (
	kindValidation        = "VALIDATION_ERROR"
	kindConflict          = "CONFLICT"
	kindUnauthorized      = "UNAUTHORIZED"
	kindForbidden         = "FORBIDDEN"
	kindEmailNotVerified  = "EMAIL_NOT_VERIFIED"
	kindNotFound          = "NOT_FOUND"
	kindInvalidTransition = "INVALID_TRANSITION"
	kindInternal          = "INTERNAL_ERROR"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to deterministic status codes and the JSON envelope, logs every
// non-2xx outcome with request context, and never leaks internal error
// details outside development mode.
func NewHTTPErrorHandler(log zerolog.Logger, development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, kind, msg := classify(err, development)

		evt := log.Warn()
		if status >= http.StatusInternalServerError {
			evt = log.Error()
		}
		if user, ok := middleware.CurrentUser(c); ok {
			evt = evt.Str("user_id", user.ID)
		}
		evt.Err(err).
			Int("status", status).
			Str("method", c.Request().Method).
			Str("path", c.Path()).
			Msg("request failed")

		_ = c.JSON(status, errorEnvelope{Success: false, Error: kind, Message: msg})
	}
}

func classify(err error, development bool) (status int, kind, msg string) {
	// Echo's own errors: bind failures, 404 from the router, middleware
	// rejections raised as HTTPError.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, kindForStatus(he.Code), fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, kindValidation, err.Error()
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, kindConflict, "email already registered"
	case errors.Is(err, domain.ErrDuplicateProposal):
		return http.StatusConflict, kindConflict, "proposal already submitted for this request"
	case errors.Is(err, domain.ErrRequestClosed):
		return http.StatusConflict, kindConflict, "service request is closed"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, kindUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrAccountBlocked):
		return http.StatusUnauthorized, kindUnauthorized, "account suspended or inactive"
	case errors.Is(err, domain.ErrInvalidRefreshToken):
		return http.StatusUnauthorized, kindUnauthorized, "invalid refresh token"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, kindForbidden, "access forbidden"
	case errors.Is(err, domain.ErrEmailNotVerified):
		return http.StatusForbidden, kindEmailNotVerified, "email not verified"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, kindNotFound, "user not found"
	case errors.Is(err, domain.ErrListingNotFound):
		return http.StatusNotFound, kindNotFound, "listing not found"
	case errors.Is(err, domain.ErrRequestNotFound):
		return http.StatusNotFound, kindNotFound, "service request not found"
	case errors.Is(err, domain.ErrProposalNotFound):
		return http.StatusNotFound, kindNotFound, "proposal not found"
	case errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound, kindNotFound, "booking not found"
	case errors.Is(err, domain.ErrInvalidTransition):
		return http.StatusUnprocessableEntity, kindInvalidTransition, err.Error()
	}

	if development {
		return http.StatusInternalServerError, kindInternal, err.Error()
	}
	return http.StatusInternalServerError, kindInternal, "internal server error"
}

func kindForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return kindValidation
	case http.StatusUnauthorized:
		return kindUnauthorized
	case http.StatusForbidden:
		return kindForbidden
	case http.StatusNotFound:
		return kindNotFound
	case http.StatusConflict:
		return kindConflict
	case http.StatusUnprocessableEntity:
		return kindValidation
	default:
		return kindInternal
	}
}

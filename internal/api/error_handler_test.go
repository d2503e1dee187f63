package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/boltapp/marketplace-api/internal/core/domain"
)

func renderError(t *testing.T, err error, development bool) (int, errorEnvelope) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	NewHTTPErrorHandler(zerolog.Nop(), development)(err, c)

	var envelope errorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("invalid envelope json: %v", err)
	}
	return rec.Code, envelope
}

func TestHTTPErrorHandler_DomainErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{domain.ErrInvalidInput, http.StatusBadRequest, "VALIDATION_ERROR"},
		{fmt.Errorf("%w: details", domain.ErrInvalidInput), http.StatusBadRequest, "VALIDATION_ERROR"},
		{domain.ErrEmailTaken, http.StatusConflict, "CONFLICT"},
		{domain.ErrDuplicateProposal, http.StatusConflict, "CONFLICT"},
		{domain.ErrRequestClosed, http.StatusConflict, "CONFLICT"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrAccountBlocked, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrInvalidRefreshToken, http.StatusUnauthorized, "UNAUTHORIZED"},
		{domain.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{domain.ErrEmailNotVerified, http.StatusForbidden, "EMAIL_NOT_VERIFIED"},
		{domain.ErrUserNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrListingNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrRequestNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrProposalNotFound, http.StatusNotFound, "NOT_FOUND"},
		{domain.ErrBookingNotFound, http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w (from pending to completed)", domain.ErrInvalidTransition), http.StatusUnprocessableEntity, "INVALID_TRANSITION"},
		{errors.New("database exploded"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range cases {
		status, envelope := renderError(t, tc.err, false)
		if status != tc.status {
			t.Errorf("%v: expected status %d, got %d", tc.err, tc.status, status)
		}
		if envelope.Error != tc.kind {
			t.Errorf("%v: expected kind %q, got %q", tc.err, tc.kind, envelope.Error)
		}
		if envelope.Success {
			t.Errorf("%v: success must be false", tc.err)
		}
	}
}

func TestHTTPErrorHandler_EchoHTTPError(t *testing.T) {
	status, envelope := renderError(t, echo.NewHTTPError(http.StatusUnauthorized, "authentication required"), false)
	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if envelope.Error != "UNAUTHORIZED" || envelope.Message != "authentication required" {
		t.Fatalf("unexpected envelope: %+v", envelope)
	}
}

func TestHTTPErrorHandler_InternalDetailsHidden(t *testing.T) {
	secret := errors.New("password for db is hunter2")

	_, envelope := renderError(t, secret, false)
	if envelope.Message != "internal server error" {
		t.Fatalf("production mode must not leak internals, got %q", envelope.Message)
	}

	_, envelope = renderError(t, secret, true)
	if envelope.Message != secret.Error() {
		t.Fatalf("development mode should surface the error, got %q", envelope.Message)
	}
}

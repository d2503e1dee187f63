package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

// AuthHandler handles registration, login, and the token lifecycle routes.
type AuthHandler struct {
	service ports.AuthService
}

func NewAuthHandler(service ports.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// Register handles POST /v1/auth/register.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Registration details"
// @Success      201   {object}  successEnvelope{data=authResponse}
// @Failure      400   {object}  errorEnvelope
// @Failure      409   {object}  errorEnvelope
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.Register(c.Request().Context(), ports.RegisterInput{
		Role:     domain.Role(req.Role),
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, authResponse{
		User:         result.User,
		Token:        result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// Login handles POST /v1/auth/login.
//
// @Summary      Authenticate with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  successEnvelope{data=authResponse}
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, authResponse{
		User:         result.User,
		Token:        result.Tokens.AccessToken,
		RefreshToken: result.Tokens.RefreshToken,
	})
}

// Refresh handles POST /v1/auth/refresh.
//
// @Summary      Exchange a refresh token for a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      refreshRequest  true  "Refresh token"
// @Success      200   {object}  successEnvelope{data=authResponse}
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Router       /v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	pair, err := h.service.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, authResponse{
		Token:        pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// VerifyEmail handles POST /v1/auth/verify-email. The token is accepted in
// the body or as a query parameter so mail clients can link straight to it.
//
// @Summary      Verify an account's email address
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  query     string              false  "Verification token"
// @Param        body   body      verifyEmailRequest  false  "Verification token"
// @Success      200    {object}  successEnvelope
// @Failure      400    {object}  errorEnvelope
// @Failure      401    {object}  errorEnvelope
// @Router       /v1/auth/verify-email [post]
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req verifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	token := req.Token
	if token == "" {
		token = c.QueryParam("token")
	}
	if token == "" {
		return fmt.Errorf("%w: token is required", domain.ErrInvalidInput)
	}

	if err := h.service.VerifyEmail(c.Request().Context(), token); err != nil {
		return err
	}

	return respond(c, http.StatusOK, map[string]string{"message": "email verified"})
}

// RequestPasswordReset handles POST /v1/auth/password-reset/request. The response is
// identical whether or not the email is registered.
//
// @Summary      Request a password reset email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetRequest  true  "Account email"
// @Success      200   {object}  successEnvelope
// @Failure      400   {object}  errorEnvelope
// @Router       /v1/auth/password-reset/request [post]
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req passwordResetRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.service.RequestPasswordReset(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return respond(c, http.StatusOK, map[string]string{
		"message": "if the address is registered, a reset email has been sent",
	})
}

// ConfirmPasswordReset handles POST /v1/auth/password-reset/confirm.
//
// @Summary      Set a new password using a reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      passwordResetConfirmRequest  true  "Reset token and new password"
// @Success      200   {object}  successEnvelope
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Router       /v1/auth/password-reset/confirm [post]
func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var req passwordResetConfirmRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.service.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}

	return respond(c, http.StatusOK, map[string]string{"message": "password updated"})
}

package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/boltapp/marketplace-api/internal/api/middleware"
	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

// UserHandler handles the profile routes.
type UserHandler struct {
	service ports.AuthService
}

func NewUserHandler(service ports.AuthService) *UserHandler {
	return &UserHandler{service: service}
}

// Me handles GET /v1/users/me.
//
// @Summary      Get the authenticated user's profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  successEnvelope{data=domain.User}
// @Failure      401  {object}  errorEnvelope
// @Router       /v1/users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	return respond(c, http.StatusOK, user)
}

// ChangePassword handles PUT /v1/users/me/password.
//
// @Summary      Change the authenticated user's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  successEnvelope
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Router       /v1/users/me/password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.service.ChangePassword(c.Request().Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	return respond(c, http.StatusOK, map[string]string{"message": "password updated"})
}

// Get handles GET /v1/users/:id. Ownership is enforced by the middleware
// chain; admins may read any profile.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  successEnvelope{data=domain.User}
// @Failure      401  {object}  errorEnvelope
// @Failure      403  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /v1/users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.GetUserByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return respond(c, http.StatusOK, user)
}

// Update handles PUT /v1/users/:id.
//
// @Summary      Update a user's profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "User id"
// @Param        body  body      updateProfileRequest  true  "Fields to update"
// @Success      200   {object}  successEnvelope{data=domain.User}
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Failure      404   {object}  errorEnvelope
// @Router       /v1/users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), ports.UpdateProfileInput{
		UserID: c.Param("id"),
		Name:   req.Name,
		Phone:  req.Phone,
		City:   req.City,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, user)
}

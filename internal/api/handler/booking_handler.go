package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/boltapp/marketplace-api/internal/api/middleware"
	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

// BookingHandler handles booking routes and proposal acceptance.
type BookingHandler struct {
	service ports.BookingService
}

func NewBookingHandler(service ports.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

// AcceptProposal handles POST /v1/proposals/:id/accept. Accepting a proposal
// awards the request and creates the booking in one step.
//
// @Summary      Accept a proposal and create a booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Proposal id"
// @Success      201  {object}  successEnvelope{data=domain.Booking}
// @Failure      401  {object}  errorEnvelope
// @Failure      403  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Failure      409  {object}  errorEnvelope
// @Router       /v1/proposals/{id}/accept [post]
func (h *BookingHandler) AcceptProposal(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	booking, err := h.service.AcceptProposal(c.Request().Context(), ports.AcceptProposalInput{
		ProposalID: c.Param("id"),
		ActorID:    user.ID,
		ActorRole:  user.Role,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, booking)
}

// List handles GET /v1/bookings, returning the caller's bookings on either
// side of the deal.
//
// @Summary      List the authenticated user's bookings
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  successEnvelope{data=[]domain.Booking}
// @Failure      401  {object}  errorEnvelope
// @Router       /v1/bookings [get]
func (h *BookingHandler) List(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	bookings, err := h.service.ListForUser(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, bookings)
}

// Get handles GET /v1/bookings/:id.
//
// @Summary      Get a booking by id
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Booking id"
// @Success      200  {object}  successEnvelope{data=domain.Booking}
// @Failure      401  {object}  errorEnvelope
// @Failure      403  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /v1/bookings/{id} [get]
func (h *BookingHandler) Get(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	booking, err := h.service.Get(c.Request().Context(), c.Param("id"), user.ID, user.Role)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, booking)
}

// UpdateStatus handles PUT /v1/bookings/:id/status.
//
// @Summary      Advance a booking through its lifecycle
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                      true  "Booking id"
// @Param        body  body      updateBookingStatusRequest  true  "Target status"
// @Success      200   {object}  successEnvelope{data=domain.Booking}
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Failure      404   {object}  errorEnvelope
// @Failure      422   {object}  errorEnvelope
// @Router       /v1/bookings/{id}/status [put]
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req updateBookingStatusRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	booking, err := h.service.UpdateStatus(c.Request().Context(), ports.UpdateBookingStatusInput{
		BookingID: c.Param("id"),
		ActorID:   user.ID,
		ActorRole: user.Role,
		Status:    domain.BookingStatus(req.Status),
		Notes:     req.Notes,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, booking)
}

package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/boltapp/marketplace-api/internal/api/middleware"
	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

// RequestHandler handles service-request and proposal routes.
type RequestHandler struct {
	service ports.RequestService
}

func NewRequestHandler(service ports.RequestService) *RequestHandler {
	return &RequestHandler{service: service}
}

// Create handles POST /v1/requests.
//
// @Summary      Post a service request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRequestRequest  true  "Request details"
// @Success      201   {object}  successEnvelope{data=domain.ServiceRequest}
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Router       /v1/requests [post]
func (h *RequestHandler) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req createRequestRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	request, err := h.service.Create(c.Request().Context(), ports.CreateRequestInput{
		ClientID:    user.ID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		City:        req.City,
		Budget:      req.Budget,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, request)
}

// List handles GET /v1/requests.
//
// @Summary      Browse open service requests
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        category  query     string  false  "Filter by category"
// @Param        city      query     string  false  "Filter by city"
// @Param        status    query     string  false  "Filter by status"
// @Param        page      query     int     false  "Page number (1-based)"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  successEnvelope{data=listRequestsResponse}
// @Failure      401       {object}  errorEnvelope
// @Router       /v1/requests [get]
func (h *RequestHandler) List(c echo.Context) error {
	page, limit := pageParams(c)

	result, err := h.service.List(c.Request().Context(), ports.ListRequestsInput{
		Filter: ports.RequestFilter{
			Category: c.QueryParam("category"),
			City:     c.QueryParam("city"),
			Status:   domain.RequestStatus(c.QueryParam("status")),
		},
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, listRequestsResponse{
		Items: result.Items,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// Get handles GET /v1/requests/:id.
//
// @Summary      Get a service request by id
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  successEnvelope{data=domain.ServiceRequest}
// @Failure      401  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /v1/requests/{id} [get]
func (h *RequestHandler) Get(c echo.Context) error {
	request, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, request)
}

// SubmitProposal handles POST /v1/requests/:id/proposals.
//
// @Summary      Submit a proposal on a service request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Request id"
// @Param        body  body      submitProposalRequest  true  "Proposal details"
// @Success      201   {object}  successEnvelope{data=domain.Proposal}
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Failure      404   {object}  errorEnvelope
// @Failure      409   {object}  errorEnvelope
// @Router       /v1/requests/{id}/proposals [post]
func (h *RequestHandler) SubmitProposal(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req submitProposalRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	proposal, err := h.service.SubmitProposal(c.Request().Context(), ports.SubmitProposalInput{
		RequestID:      c.Param("id"),
		ProfessionalID: user.ID,
		Amount:         req.Amount,
		Message:        req.Message,
		EstimatedDays:  req.EstimatedDays,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, proposal)
}

// ListProposals handles GET /v1/requests/:id/proposals. Only the request
// owner and admins may read proposals.
//
// @Summary      List proposals on a service request
// @Tags         requests
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Request id"
// @Success      200  {object}  successEnvelope{data=[]domain.Proposal}
// @Failure      401  {object}  errorEnvelope
// @Failure      403  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /v1/requests/{id}/proposals [get]
func (h *RequestHandler) ListProposals(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	proposals, err := h.service.ListProposals(c.Request().Context(), c.Param("id"), user.ID, user.Role)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, proposals)
}

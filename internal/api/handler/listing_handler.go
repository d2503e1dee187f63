package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/boltapp/marketplace-api/internal/api/middleware"
	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

// ListingHandler handles the service-listing routes.
type ListingHandler struct {
	service ports.ListingService
}

func NewListingHandler(service ports.ListingService) *ListingHandler {
	return &ListingHandler{service: service}
}

// Create handles POST /v1/listings.
//
// @Summary      Publish a service listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createListingRequest  true  "Listing details"
// @Success      201   {object}  successEnvelope{data=domain.Listing}
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Router       /v1/listings [post]
func (h *ListingHandler) Create(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req createListingRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	listing, err := h.service.Create(c.Request().Context(), ports.CreateListingInput{
		ProfessionalID: user.ID,
		Title:          req.Title,
		Description:    req.Description,
		Category:       req.Category,
		City:           req.City,
		Price:          req.Price,
		Currency:       req.Currency,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, listing)
}

// List handles GET /v1/listings. It is a public route.
//
// @Summary      Browse service listings
// @Tags         listings
// @Produce      json
// @Param        category  query     string  false  "Filter by category"
// @Param        city      query     string  false  "Filter by city"
// @Param        page      query     int     false  "Page number (1-based)"
// @Param        limit     query     int     false  "Page size (max 100)"
// @Success      200       {object}  successEnvelope{data=listListingsResponse}
// @Router       /v1/listings [get]
func (h *ListingHandler) List(c echo.Context) error {
	page, limit := pageParams(c)

	result, err := h.service.List(c.Request().Context(), ports.ListListingsInput{
		Filter: ports.ListingFilter{
			Category: c.QueryParam("category"),
			City:     c.QueryParam("city"),
		},
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, listListingsResponse{
		Items: result.Items,
		Pagination: paginationResponse{
			Total:      result.Total,
			Page:       result.Page,
			Limit:      result.Limit,
			TotalPages: result.TotalPages,
		},
	})
}

// Get handles GET /v1/listings/:id.
//
// @Summary      Get a listing by id
// @Tags         listings
// @Produce      json
// @Param        id   path      string  true  "Listing id"
// @Success      200  {object}  successEnvelope{data=domain.Listing}
// @Failure      404  {object}  errorEnvelope
// @Router       /v1/listings/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	listing, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, listing)
}

// Update handles PUT /v1/listings/:id.
//
// @Summary      Update a listing
// @Tags         listings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Listing id"
// @Param        body  body      updateListingRequest  true  "Fields to update"
// @Success      200   {object}  successEnvelope{data=domain.Listing}
// @Failure      400   {object}  errorEnvelope
// @Failure      401   {object}  errorEnvelope
// @Failure      403   {object}  errorEnvelope
// @Failure      404   {object}  errorEnvelope
// @Router       /v1/listings/{id} [put]
func (h *ListingHandler) Update(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	var req updateListingRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid payload", domain.ErrInvalidInput)
	}

	listing, err := h.service.Update(c.Request().Context(), ports.UpdateListingInput{
		ListingID:   c.Param("id"),
		ActorID:     user.ID,
		ActorRole:   user.Role,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		City:        req.City,
		Price:       req.Price,
		Active:      req.Active,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, listing)
}

// Delete handles DELETE /v1/listings/:id.
//
// @Summary      Delete a listing
// @Tags         listings
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Listing id"
// @Success      204  "No Content"
// @Failure      401  {object}  errorEnvelope
// @Failure      403  {object}  errorEnvelope
// @Failure      404  {object}  errorEnvelope
// @Router       /v1/listings/{id} [delete]
func (h *ListingHandler) Delete(c echo.Context) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), user.ID, user.Role); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// pageParams reads the page/limit query parameters. Out-of-range values are
// normalized by the service layer.
func pageParams(c echo.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	return page, limit
}

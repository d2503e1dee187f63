package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// ListingService implements CRUD over service listings.
type ListingService struct {
	repo ports.ListingRepository
	log  zerolog.Logger
}

func NewListingService(repo ports.ListingRepository, log zerolog.Logger) *ListingService {
	return &ListingService{repo: repo, log: log}
}

func (s *ListingService) Create(ctx context.Context, in ports.CreateListingInput) (*domain.Listing, error) {
	if in.Title == "" || in.Category == "" || in.Price <= 0 {
		return nil, fmt.Errorf("%w: title, category, and a positive price are required", domain.ErrInvalidInput)
	}
	currency := in.Currency
	if currency == "" {
		currency = "BRL"
	}

	listing := &domain.Listing{
		ProfessionalID: in.ProfessionalID,
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		City:           in.City,
		Price:          in.Price,
		Currency:       currency,
		Active:         true,
	}

	created, err := s.repo.Create(ctx, listing)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("listing_id", created.ID).Str("professional_id", created.ProfessionalID).Msg("listing created")
	return created, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *ListingService) List(ctx context.Context, in ports.ListListingsInput) (*ports.ListListingsResult, error) {
	page, limit := normalizePage(in.Page, in.Limit)

	items, total, err := s.repo.List(ctx, in.Filter, page, limit)
	if err != nil {
		return nil, err
	}
	return &ports.ListListingsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

func (s *ListingService) Update(ctx context.Context, in ports.UpdateListingInput) (*domain.Listing, error) {
	listing, err := s.repo.FindByID(ctx, in.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.ProfessionalID != in.ActorID && in.ActorRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}

	if in.Title != nil {
		listing.Title = *in.Title
	}
	if in.Description != nil {
		listing.Description = *in.Description
	}
	if in.Category != nil {
		listing.Category = *in.Category
	}
	if in.City != nil {
		listing.City = *in.City
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalidInput)
		}
		listing.Price = *in.Price
	}
	if in.Active != nil {
		listing.Active = *in.Active
	}

	if err := s.repo.Update(ctx, listing); err != nil {
		return nil, err
	}
	return listing, nil
}

func (s *ListingService) Delete(ctx context.Context, id, actorID string, actorRole domain.Role) error {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if listing.ProfessionalID != actorID && actorRole != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

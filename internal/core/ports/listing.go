package ports

import (
	"context"

	"github.com/boltapp/marketplace-api/internal/core/domain"
)

// ListingRepository defines the persistence interface for service listings.
type ListingRepository interface {
	Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error)
	FindByID(ctx context.Context, id string) (*domain.Listing, error)
	List(ctx context.Context, filter ListingFilter, page, limit int) ([]domain.Listing, int64, error)
	Update(ctx context.Context, l *domain.Listing) error
	Delete(ctx context.Context, id string) error
}

// ListingFilter narrows List results. Empty fields match everything.
type ListingFilter struct {
	Category string
	City     string
}

type CreateListingInput struct {
	ProfessionalID string
	Title          string
	Description    string
	Category       string
	City           string
	Price          float64
	Currency       string
}

type UpdateListingInput struct {
	ListingID   string
	ActorID     string
	ActorRole   domain.Role
	Title       *string
	Description *string
	Category    *string
	City        *string
	Price       *float64
	Active      *bool
}

type ListListingsInput struct {
	Filter ListingFilter
	Page   int
	Limit  int
}

type ListListingsResult struct {
	Items      []domain.Listing
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type ListingService interface {
	Create(ctx context.Context, in CreateListingInput) (*domain.Listing, error)
	Get(ctx context.Context, id string) (*domain.Listing, error)
	List(ctx context.Context, in ListListingsInput) (*ListListingsResult, error)
	Update(ctx context.Context, in UpdateListingInput) (*domain.Listing, error)
	Delete(ctx context.Context, id, actorID string, actorRole domain.Role) error
}

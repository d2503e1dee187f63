package ports

import (
	"context"

	"github.com/boltapp/marketplace-api/internal/core/domain"
)

// BookingRepository defines the persistence interface for bookings.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error)
	FindByID(ctx context.Context, id string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Booking, error)
	Update(ctx context.Context, b *domain.Booking) error
}

type AcceptProposalInput struct {
	ProposalID string
	ActorID    string
	ActorRole  domain.Role
}

type UpdateBookingStatusInput struct {
	BookingID string
	ActorID   string
	ActorRole domain.Role
	Status    domain.BookingStatus
	Notes     string
}

type BookingService interface {
	AcceptProposal(ctx context.Context, in AcceptProposalInput) (*domain.Booking, error)
	Get(ctx context.Context, id, actorID string, actorRole domain.Role) (*domain.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, in UpdateBookingStatusInput) (*domain.Booking, error)
}

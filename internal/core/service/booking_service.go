package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/boltapp/marketplace-api/internal/api/metrics"
	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

// BookingService creates bookings from accepted proposals and drives their
// status state machine.
type BookingService struct {
	bookings ports.BookingRepository
	requests ports.RequestRepository
	users    ports.UserRepository
	notifier ports.Notifier
	log      zerolog.Logger
}

func NewBookingService(
	bookings ports.BookingRepository,
	requests ports.RequestRepository,
	users ports.UserRepository,
	notifier ports.Notifier,
	log zerolog.Logger,
) *BookingService {
	return &BookingService{
		bookings: bookings,
		requests: requests,
		users:    users,
		notifier: notifier,
		log:      log,
	}
}

// AcceptProposal turns a proposal into a pending booking, marks the request
// awarded, and notifies the professional.
func (s *BookingService) AcceptProposal(ctx context.Context, in ports.AcceptProposalInput) (*domain.Booking, error) {
	proposal, err := s.requests.FindProposalByID(ctx, in.ProposalID)
	if err != nil {
		return nil, err
	}
	request, err := s.requests.FindByID(ctx, proposal.RequestID)
	if err != nil {
		return nil, err
	}
	if request.ClientID != in.ActorID && in.ActorRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if request.Status != domain.RequestOpen {
		return nil, domain.ErrRequestClosed
	}

	now := time.Now().UTC()
	booking := &domain.Booking{
		RequestID:      request.ID,
		ProposalID:     proposal.ID,
		ClientID:       request.ClientID,
		ProfessionalID: proposal.ProfessionalID,
		Amount:         proposal.Amount,
		Status:         domain.BookingPending,
		StatusHistory: []domain.BookingHistoryEntry{
			{Status: domain.BookingPending, Timestamp: now, ActorID: in.ActorID},
		},
	}

	created, err := s.bookings.Create(ctx, booking)
	if err != nil {
		return nil, err
	}

	proposal.Accepted = true
	if err := s.requests.UpdateProposal(ctx, proposal); err != nil {
		s.log.Warn().Err(err).Str("proposal_id", proposal.ID).Msg("failed to flag proposal accepted")
	}
	request.Status = domain.RequestAwarded
	request.UpdatedAt = now
	if err := s.requests.Update(ctx, request); err != nil {
		s.log.Warn().Err(err).Str("request_id", request.ID).Msg("failed to mark request awarded")
	}

	s.notifyParty(ctx, created.ProfessionalID, created, "Your proposal was accepted")
	metrics.BookingsCreatedTotal.Inc()
	s.log.Info().Str("booking_id", created.ID).Str("request_id", request.ID).Msg("booking created")

	return created, nil
}

// Get returns a booking to one of its parties or an admin.
func (s *BookingService) Get(ctx context.Context, id, actorID string, actorRole domain.Role) (*domain.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !booking.IsParty(actorID) && actorRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return booking, nil
}

func (s *BookingService) ListForUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// UpdateStatus applies a state machine transition. Confirm, start, and
// complete belong to the professional; either party may cancel; admins may
// do anything.
func (s *BookingService) UpdateStatus(ctx context.Context, in ports.UpdateBookingStatusInput) (*domain.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, in.BookingID)
	if err != nil {
		return nil, err
	}
	if !booking.IsParty(in.ActorID) && in.ActorRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	if !s.transitionAllowedFor(booking, in) {
		return nil, domain.ErrForbidden
	}
	if !booking.Status.CanTransitionTo(in.Status) {
		return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, booking.Status, in.Status)
	}

	now := time.Now().UTC()
	booking.Status = in.Status
	booking.UpdatedAt = now
	booking.StatusHistory = append(booking.StatusHistory, domain.BookingHistoryEntry{
		Status:    in.Status,
		Timestamp: now,
		ActorID:   in.ActorID,
		Notes:     in.Notes,
	})

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, err
	}

	metrics.BookingTransitionsTotal.WithLabelValues(string(in.Status)).Inc()
	if in.Status == domain.BookingCompleted {
		s.notifyParty(ctx, booking.ClientID, booking, "Your booking was completed")
		s.notifyParty(ctx, booking.ProfessionalID, booking, "Booking marked as completed")
	}
	s.log.Info().Str("booking_id", booking.ID).Str("status", string(in.Status)).Msg("booking status updated")

	return booking, nil
}

func (s *BookingService) transitionAllowedFor(b *domain.Booking, in ports.UpdateBookingStatusInput) bool {
	if in.ActorRole == domain.RoleAdmin {
		return true
	}
	switch in.Status {
	case domain.BookingConfirmed, domain.BookingInProgress, domain.BookingCompleted:
		return in.ActorID == b.ProfessionalID
	case domain.BookingCancelled:
		return b.IsParty(in.ActorID)
	}
	return false
}

func (s *BookingService) notifyParty(ctx context.Context, userID string, b *domain.Booking, subject string) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("cannot notify booking party")
		return
	}
	s.notifier.Enqueue(ports.Notification{
		Kind:      ports.NotifyBookingUpdate,
		Recipient: user.Email,
		Subject:   subject,
		Body:      fmt.Sprintf("Booking %s is now %s.", b.ID, b.Status),
		DedupKey:  fmt.Sprintf("booking:%s:%s", b.ID, b.Status),
	})
}

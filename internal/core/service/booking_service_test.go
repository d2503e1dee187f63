package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

type stubBookingRepo struct {
	bookings map[string]*domain.Booking
	seq      int
}

func newStubBookingRepo() *stubBookingRepo {
	return &stubBookingRepo{bookings: make(map[string]*domain.Booking)}
}

func (r *stubBookingRepo) Create(_ context.Context, b *domain.Booking) (*domain.Booking, error) {
	copy := *b
	r.seq++
	copy.ID = fmt.Sprintf("book_%d", r.seq)
	r.bookings[copy.ID] = &copy
	clone := copy
	return &clone, nil
}

func (r *stubBookingRepo) FindByID(_ context.Context, id string) (*domain.Booking, error) {
	if b, ok := r.bookings[id]; ok {
		clone := *b
		return &clone, nil
	}
	return nil, domain.ErrBookingNotFound
}

func (r *stubBookingRepo) ListByUser(_ context.Context, userID string) ([]domain.Booking, error) {
	var items []domain.Booking
	for _, b := range r.bookings {
		if b.IsParty(userID) {
			items = append(items, *b)
		}
	}
	return items, nil
}

func (r *stubBookingRepo) Update(_ context.Context, b *domain.Booking) error {
	if _, ok := r.bookings[b.ID]; !ok {
		return domain.ErrBookingNotFound
	}
	clone := *b
	r.bookings[b.ID] = &clone
	return nil
}

type bookingFixture struct {
	svc      *BookingService
	bookings *stubBookingRepo
	requests *stubRequestRepo
	users    *stubUserRepo
	notifier *stubNotifier

	request  *domain.ServiceRequest
	proposal *domain.Proposal
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	bookings := newStubBookingRepo()
	requests := newStubRequestRepo()
	users := newStubUserRepo()
	notifier := &stubNotifier{}
	svc := NewBookingService(bookings, requests, users, notifier, zerolog.Nop())

	for id, email := range map[string]string{
		"client_1": "client@example.com",
		"pro_1":    "pro@example.com",
	} {
		u := &domain.User{Email: email, Role: domain.RoleClient}
		u.ID = id
		users.users[id] = u
	}

	request, err := requests.Create(context.Background(), &domain.ServiceRequest{
		ClientID: "client_1",
		Title:    "Paint the fence",
		Category: "painting",
		Status:   domain.RequestOpen,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	proposal, err := requests.CreateProposal(context.Background(), &domain.Proposal{
		RequestID:      request.ID,
		ProfessionalID: "pro_1",
		Amount:         200,
	})
	if err != nil {
		t.Fatalf("create proposal: %v", err)
	}

	return &bookingFixture{
		svc:      svc,
		bookings: bookings,
		requests: requests,
		users:    users,
		notifier: notifier,
		request:  request,
		proposal: proposal,
	}
}

func (f *bookingFixture) accept(t *testing.T) *domain.Booking {
	t.Helper()
	booking, err := f.svc.AcceptProposal(context.Background(), ports.AcceptProposalInput{
		ProposalID: f.proposal.ID,
		ActorID:    "client_1",
		ActorRole:  domain.RoleClient,
	})
	if err != nil {
		t.Fatalf("AcceptProposal: %v", err)
	}
	return booking
}

func TestBookingService_AcceptProposal(t *testing.T) {
	f := newBookingFixture(t)

	booking := f.accept(t)
	if booking.Status != domain.BookingPending {
		t.Fatalf("expected pending booking, got %q", booking.Status)
	}
	if booking.ClientID != "client_1" || booking.ProfessionalID != "pro_1" {
		t.Fatalf("unexpected parties: %+v", booking)
	}
	if booking.Amount != 200 {
		t.Fatalf("expected amount carried from proposal, got %v", booking.Amount)
	}
	if len(booking.StatusHistory) != 1 || booking.StatusHistory[0].Status != domain.BookingPending {
		t.Fatalf("expected initial history entry, got %+v", booking.StatusHistory)
	}

	// The request is awarded and the proposal flagged.
	request, _ := f.requests.FindByID(context.Background(), f.request.ID)
	if request.Status != domain.RequestAwarded {
		t.Fatalf("expected awarded request, got %q", request.Status)
	}
	proposal, _ := f.requests.FindProposalByID(context.Background(), f.proposal.ID)
	if !proposal.Accepted {
		t.Fatalf("expected proposal marked accepted")
	}

	// The professional hears about it.
	if len(f.notifier.sent) != 1 || f.notifier.sent[0].Recipient != "pro@example.com" {
		t.Fatalf("expected notification to the professional, got %+v", f.notifier.sent)
	}
}

func TestBookingService_AcceptProposal_Authorization(t *testing.T) {
	f := newBookingFixture(t)
	ctx := context.Background()

	if _, err := f.svc.AcceptProposal(ctx, ports.AcceptProposalInput{
		ProposalID: f.proposal.ID, ActorID: "pro_1", ActorRole: domain.RoleProfessional,
	}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner: expected ErrForbidden, got %v", err)
	}

	if _, err := f.svc.AcceptProposal(ctx, ports.AcceptProposalInput{
		ProposalID: "missing", ActorID: "client_1", ActorRole: domain.RoleClient,
	}); !errors.Is(err, domain.ErrProposalNotFound) {
		t.Fatalf("missing proposal: expected ErrProposalNotFound, got %v", err)
	}

	// Second accept hits the closed request.
	f.accept(t)
	if _, err := f.svc.AcceptProposal(ctx, ports.AcceptProposalInput{
		ProposalID: f.proposal.ID, ActorID: "client_1", ActorRole: domain.RoleClient,
	}); !errors.Is(err, domain.ErrRequestClosed) {
		t.Fatalf("closed request: expected ErrRequestClosed, got %v", err)
	}
}

func TestBookingService_UpdateStatus_Lifecycle(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.accept(t)
	ctx := context.Background()

	steps := []domain.BookingStatus{domain.BookingConfirmed, domain.BookingInProgress, domain.BookingCompleted}
	for _, next := range steps {
		updated, err := f.svc.UpdateStatus(ctx, ports.UpdateBookingStatusInput{
			BookingID: booking.ID,
			ActorID:   "pro_1",
			ActorRole: domain.RoleProfessional,
			Status:    next,
		})
		if err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
		if updated.Status != next {
			t.Fatalf("expected %s, got %s", next, updated.Status)
		}
	}

	stored, _ := f.bookings.FindByID(ctx, booking.ID)
	if len(stored.StatusHistory) != 4 {
		t.Fatalf("expected 4 history entries, got %d", len(stored.StatusHistory))
	}

	// Completion notifies both parties.
	var recipients []string
	for _, n := range f.notifier.sent {
		if n.Kind == ports.NotifyBookingUpdate && n.Subject != "Your proposal was accepted" {
			recipients = append(recipients, n.Recipient)
		}
	}
	if len(recipients) != 2 {
		t.Fatalf("expected completion notifications to both parties, got %v", recipients)
	}
}

func TestBookingService_UpdateStatus_InvalidTransition(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.accept(t)

	_, err := f.svc.UpdateStatus(context.Background(), ports.UpdateBookingStatusInput{
		BookingID: booking.ID,
		ActorID:   "pro_1",
		ActorRole: domain.RoleProfessional,
		Status:    domain.BookingCompleted,
	})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("pending -> completed: expected ErrInvalidTransition, got %v", err)
	}
}

func TestBookingService_UpdateStatus_ActorRules(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.accept(t)
	ctx := context.Background()

	// The client cannot confirm; that belongs to the professional.
	if _, err := f.svc.UpdateStatus(ctx, ports.UpdateBookingStatusInput{
		BookingID: booking.ID, ActorID: "client_1", ActorRole: domain.RoleClient, Status: domain.BookingConfirmed,
	}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("client confirm: expected ErrForbidden, got %v", err)
	}

	// A stranger cannot touch the booking at all.
	if _, err := f.svc.UpdateStatus(ctx, ports.UpdateBookingStatusInput{
		BookingID: booking.ID, ActorID: "stranger", ActorRole: domain.RoleProfessional, Status: domain.BookingCancelled,
	}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger: expected ErrForbidden, got %v", err)
	}

	// Either party may cancel.
	if _, err := f.svc.UpdateStatus(ctx, ports.UpdateBookingStatusInput{
		BookingID: booking.ID, ActorID: "client_1", ActorRole: domain.RoleClient, Status: domain.BookingCancelled,
	}); err != nil {
		t.Fatalf("client cancel: %v", err)
	}

	// Admins may drive any allowed transition.
	other := newBookingFixture(t)
	adminBooking := other.accept(t)
	if _, err := other.svc.UpdateStatus(ctx, ports.UpdateBookingStatusInput{
		BookingID: adminBooking.ID, ActorID: "admin_1", ActorRole: domain.RoleAdmin, Status: domain.BookingConfirmed,
	}); err != nil {
		t.Fatalf("admin confirm: %v", err)
	}
}

func TestBookingService_Get_PartyOnly(t *testing.T) {
	f := newBookingFixture(t)
	booking := f.accept(t)
	ctx := context.Background()

	if _, err := f.svc.Get(ctx, booking.ID, "client_1", domain.RoleClient); err != nil {
		t.Fatalf("client get: %v", err)
	}
	if _, err := f.svc.Get(ctx, booking.ID, "pro_1", domain.RoleProfessional); err != nil {
		t.Fatalf("professional get: %v", err)
	}
	if _, err := f.svc.Get(ctx, booking.ID, "stranger", domain.RoleClient); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger get: expected ErrForbidden, got %v", err)
	}
	if _, err := f.svc.Get(ctx, booking.ID, "anyone", domain.RoleAdmin); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if _, err := f.svc.Get(ctx, "missing", "client_1", domain.RoleClient); !errors.Is(err, domain.ErrBookingNotFound) {
		t.Fatalf("missing booking: expected ErrBookingNotFound, got %v", err)
	}
}

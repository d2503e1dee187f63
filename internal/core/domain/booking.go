package domain

import (
	"errors"
	"time"
)

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// validBookingTransitions defines the allowed state machine transitions.
var validBookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:    {BookingConfirmed, BookingCancelled},
	BookingConfirmed:  {BookingInProgress, BookingCancelled},
	BookingInProgress: {BookingCompleted},
}

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

// CanTransitionTo reports whether a transition from the current status to next is valid.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range validBookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// BookingHistoryEntry records a single status transition on a booking.
type BookingHistoryEntry struct {
	Status    BookingStatus `json:"status" bson:"status"`
	Timestamp time.Time     `json:"timestamp" bson:"timestamp"`
	ActorID   string        `json:"actor_id" bson:"actor_id"`
	Notes     string        `json:"notes,omitempty" bson:"notes,omitempty"`
}

// Booking is created when a client accepts a professional's proposal.
type Booking struct {
	ID             string                `json:"id" bson:"_id,omitempty"`
	RequestID      string                `json:"request_id" bson:"request_id"`
	ProposalID     string                `json:"proposal_id" bson:"proposal_id"`
	ClientID       string                `json:"client_id" bson:"client_id"`
	ProfessionalID string                `json:"professional_id" bson:"professional_id"`
	Amount         float64               `json:"amount" bson:"amount"`
	Status         BookingStatus         `json:"status" bson:"status"`
	StatusHistory  []BookingHistoryEntry `json:"status_history" bson:"status_history"`
	CreatedAt      time.Time             `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at" bson:"updated_at"`
}

// IsParty reports whether userID is the client or professional on the booking.
func (b *Booking) IsParty(userID string) bool {
	return userID == b.ClientID || userID == b.ProfessionalID
}

package domain

import (
	"errors"
	"time"
)

var (
	ErrRequestNotFound   = errors.New("service request not found")
	ErrRequestClosed     = errors.New("service request is closed")
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrDuplicateProposal = errors.New("proposal already submitted for this request")
)

// RequestStatus represents the lifecycle state of a service request.
type RequestStatus string

const (
	RequestOpen      RequestStatus = "open"
	RequestAwarded   RequestStatus = "awarded"
	RequestCancelled RequestStatus = "cancelled"
)

// ServiceRequest is a client's ask for a service to be performed.
type ServiceRequest struct {
	ID          string        `json:"id" bson:"_id,omitempty"`
	ClientID    string        `json:"client_id" bson:"client_id"`
	Title       string        `json:"title" bson:"title"`
	Description string        `json:"description" bson:"description"`
	Category    string        `json:"category" bson:"category"`
	City        string        `json:"city" bson:"city"`
	Budget      float64       `json:"budget" bson:"budget"`
	Status      RequestStatus `json:"status" bson:"status"`
	CreatedAt   time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" bson:"updated_at"`
}

// Proposal is a professional's offer on an open service request.
// One proposal per professional per request; the storage layer enforces
// the uniqueness with a compound index.
type Proposal struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	RequestID      string    `json:"request_id" bson:"request_id"`
	ProfessionalID string    `json:"professional_id" bson:"professional_id"`
	Amount         float64   `json:"amount" bson:"amount"`
	Message        string    `json:"message" bson:"message"`
	EstimatedDays  int       `json:"estimated_days" bson:"estimated_days"`
	Accepted       bool      `json:"accepted" bson:"accepted"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

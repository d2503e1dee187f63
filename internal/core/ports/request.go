package ports

import (
	"context"

	"github.com/boltapp/marketplace-api/internal/core/domain"
)

// RequestRepository defines the persistence interface for service requests
// and their proposals. A compound unique index on (request_id,
// professional_id) enforces one proposal per professional per request.
type RequestRepository interface {
	Create(ctx context.Context, r *domain.ServiceRequest) (*domain.ServiceRequest, error)
	FindByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	List(ctx context.Context, filter RequestFilter, page, limit int) ([]domain.ServiceRequest, int64, error)
	Update(ctx context.Context, r *domain.ServiceRequest) error

	CreateProposal(ctx context.Context, p *domain.Proposal) (*domain.Proposal, error)
	FindProposalByID(ctx context.Context, id string) (*domain.Proposal, error)
	ListProposalsByRequest(ctx context.Context, requestID string) ([]domain.Proposal, error)
	UpdateProposal(ctx context.Context, p *domain.Proposal) error
}

// RequestFilter narrows List results. Empty fields match everything.
type RequestFilter struct {
	Category string
	City     string
	Status   domain.RequestStatus
}

type CreateRequestInput struct {
	ClientID    string
	Title       string
	Description string
	Category    string
	City        string
	Budget      float64
}

type ListRequestsInput struct {
	Filter RequestFilter
	Page   int
	Limit  int
}

type ListRequestsResult struct {
	Items      []domain.ServiceRequest
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type SubmitProposalInput struct {
	RequestID      string
	ProfessionalID string
	Amount         float64
	Message        string
	EstimatedDays  int
}

type RequestService interface {
	Create(ctx context.Context, in CreateRequestInput) (*domain.ServiceRequest, error)
	Get(ctx context.Context, id string) (*domain.ServiceRequest, error)
	List(ctx context.Context, in ListRequestsInput) (*ListRequestsResult, error)
	SubmitProposal(ctx context.Context, in SubmitProposalInput) (*domain.Proposal, error)
	ListProposals(ctx context.Context, requestID, actorID string, actorRole domain.Role) ([]domain.Proposal, error)
}

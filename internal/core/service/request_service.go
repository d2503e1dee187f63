package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

// RequestService implements service requests and the proposals made on them.
type RequestService struct {
	repo ports.RequestRepository
	log  zerolog.Logger
}

func NewRequestService(repo ports.RequestRepository, log zerolog.Logger) *RequestService {
	return &RequestService{repo: repo, log: log}
}

func (s *RequestService) Create(ctx context.Context, in ports.CreateRequestInput) (*domain.ServiceRequest, error) {
	if in.Title == "" || in.Category == "" {
		return nil, fmt.Errorf("%w: title and category are required", domain.ErrInvalidInput)
	}
	if in.Budget < 0 {
		return nil, fmt.Errorf("%w: budget cannot be negative", domain.ErrInvalidInput)
	}

	request := &domain.ServiceRequest{
		ClientID:    in.ClientID,
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		City:        in.City,
		Budget:      in.Budget,
		Status:      domain.RequestOpen,
	}

	created, err := s.repo.Create(ctx, request)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("request_id", created.ID).Str("client_id", created.ClientID).Msg("service request created")
	return created, nil
}

func (s *RequestService) Get(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *RequestService) List(ctx context.Context, in ports.ListRequestsInput) (*ports.ListRequestsResult, error) {
	page, limit := normalizePage(in.Page, in.Limit)

	items, total, err := s.repo.List(ctx, in.Filter, page, limit)
	if err != nil {
		return nil, err
	}
	return &ports.ListRequestsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// SubmitProposal records a professional's offer on an open request. The
// storage layer's compound unique index is what actually prevents a second
// proposal from the same professional.
func (s *RequestService) SubmitProposal(ctx context.Context, in ports.SubmitProposalInput) (*domain.Proposal, error) {
	if in.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrInvalidInput)
	}

	request, err := s.repo.FindByID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	if request.Status != domain.RequestOpen {
		return nil, domain.ErrRequestClosed
	}
	if request.ClientID == in.ProfessionalID {
		return nil, fmt.Errorf("%w: cannot propose on your own request", domain.ErrInvalidInput)
	}

	proposal := &domain.Proposal{
		RequestID:      in.RequestID,
		ProfessionalID: in.ProfessionalID,
		Amount:         in.Amount,
		Message:        in.Message,
		EstimatedDays:  in.EstimatedDays,
	}

	created, err := s.repo.CreateProposal(ctx, proposal)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("proposal_id", created.ID).Str("request_id", in.RequestID).Msg("proposal submitted")
	return created, nil
}

// ListProposals is restricted to the request owner and admins.
func (s *RequestService) ListProposals(ctx context.Context, requestID, actorID string, actorRole domain.Role) ([]domain.Proposal, error) {
	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.ClientID != actorID && actorRole != domain.RoleAdmin {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListProposalsByRequest(ctx, requestID)
}

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

type stubRequestRepo struct {
	requests  map[string]*domain.ServiceRequest
	proposals map[string]*domain.Proposal
	seq       int
}

func newStubRequestRepo() *stubRequestRepo {
	return &stubRequestRepo{
		requests:  make(map[string]*domain.ServiceRequest),
		proposals: make(map[string]*domain.Proposal),
	}
}

func (r *stubRequestRepo) Create(_ context.Context, req *domain.ServiceRequest) (*domain.ServiceRequest, error) {
	copy := *req
	r.seq++
	copy.ID = fmt.Sprintf("req_%d", r.seq)
	r.requests[copy.ID] = &copy
	clone := copy
	return &clone, nil
}

func (r *stubRequestRepo) FindByID(_ context.Context, id string) (*domain.ServiceRequest, error) {
	if req, ok := r.requests[id]; ok {
		clone := *req
		return &clone, nil
	}
	return nil, domain.ErrRequestNotFound
}

func (r *stubRequestRepo) List(_ context.Context, filter ports.RequestFilter, page, limit int) ([]domain.ServiceRequest, int64, error) {
	var items []domain.ServiceRequest
	for _, req := range r.requests {
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Category != "" && req.Category != filter.Category {
			continue
		}
		items = append(items, *req)
	}
	return items, int64(len(items)), nil
}

func (r *stubRequestRepo) Update(_ context.Context, req *domain.ServiceRequest) error {
	if _, ok := r.requests[req.ID]; !ok {
		return domain.ErrRequestNotFound
	}
	clone := *req
	r.requests[req.ID] = &clone
	return nil
}

func (r *stubRequestRepo) CreateProposal(_ context.Context, p *domain.Proposal) (*domain.Proposal, error) {
	for _, existing := range r.proposals {
		if existing.RequestID == p.RequestID && existing.ProfessionalID == p.ProfessionalID {
			return nil, domain.ErrDuplicateProposal
		}
	}
	copy := *p
	r.seq++
	copy.ID = fmt.Sprintf("prop_%d", r.seq)
	r.proposals[copy.ID] = &copy
	clone := copy
	return &clone, nil
}

func (r *stubRequestRepo) FindProposalByID(_ context.Context, id string) (*domain.Proposal, error) {
	if p, ok := r.proposals[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, domain.ErrProposalNotFound
}

func (r *stubRequestRepo) ListProposalsByRequest(_ context.Context, requestID string) ([]domain.Proposal, error) {
	var items []domain.Proposal
	for _, p := range r.proposals {
		if p.RequestID == requestID {
			items = append(items, *p)
		}
	}
	return items, nil
}

func (r *stubRequestRepo) UpdateProposal(_ context.Context, p *domain.Proposal) error {
	if _, ok := r.proposals[p.ID]; !ok {
		return domain.ErrProposalNotFound
	}
	clone := *p
	r.proposals[p.ID] = &clone
	return nil
}

func createOpenRequest(t *testing.T, svc *RequestService, clientID string) *domain.ServiceRequest {
	t.Helper()
	request, err := svc.Create(context.Background(), ports.CreateRequestInput{
		ClientID: clientID,
		Title:    "Fix kitchen sink",
		Category: "plumbing",
		City:     "Lisbon",
		Budget:   150,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return request
}

func TestRequestService_Create(t *testing.T) {
	svc := NewRequestService(newStubRequestRepo(), zerolog.Nop())

	request := createOpenRequest(t, svc, "client_1")
	if request.Status != domain.RequestOpen {
		t.Fatalf("expected open status, got %q", request.Status)
	}
	if request.ID == "" {
		t.Fatalf("expected an id")
	}

	if _, err := svc.Create(context.Background(), ports.CreateRequestInput{ClientID: "client_1"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("missing fields: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.Create(context.Background(), ports.CreateRequestInput{
		ClientID: "client_1", Title: "x", Category: "y", Budget: -1,
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("negative budget: expected ErrInvalidInput, got %v", err)
	}
}

func TestRequestService_SubmitProposal(t *testing.T) {
	repo := newStubRequestRepo()
	svc := NewRequestService(repo, zerolog.Nop())
	request := createOpenRequest(t, svc, "client_1")
	ctx := context.Background()

	proposal, err := svc.SubmitProposal(ctx, ports.SubmitProposalInput{
		RequestID:      request.ID,
		ProfessionalID: "pro_1",
		Amount:         120,
		EstimatedDays:  3,
	})
	if err != nil {
		t.Fatalf("SubmitProposal: %v", err)
	}
	if proposal.ID == "" || proposal.Accepted {
		t.Fatalf("unexpected proposal: %+v", proposal)
	}

	// A second proposal from the same professional hits the uniqueness rule.
	if _, err := svc.SubmitProposal(ctx, ports.SubmitProposalInput{
		RequestID: request.ID, ProfessionalID: "pro_1", Amount: 100,
	}); !errors.Is(err, domain.ErrDuplicateProposal) {
		t.Fatalf("expected ErrDuplicateProposal, got %v", err)
	}

	if _, err := svc.SubmitProposal(ctx, ports.SubmitProposalInput{
		RequestID: request.ID, ProfessionalID: "client_1", Amount: 100,
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("own request: expected ErrInvalidInput, got %v", err)
	}

	if _, err := svc.SubmitProposal(ctx, ports.SubmitProposalInput{
		RequestID: request.ID, ProfessionalID: "pro_2", Amount: 0,
	}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("zero amount: expected ErrInvalidInput, got %v", err)
	}

	repo.requests[request.ID].Status = domain.RequestAwarded
	if _, err := svc.SubmitProposal(ctx, ports.SubmitProposalInput{
		RequestID: request.ID, ProfessionalID: "pro_2", Amount: 100,
	}); !errors.Is(err, domain.ErrRequestClosed) {
		t.Fatalf("awarded request: expected ErrRequestClosed, got %v", err)
	}

	if _, err := svc.SubmitProposal(ctx, ports.SubmitProposalInput{
		RequestID: "missing", ProfessionalID: "pro_2", Amount: 100,
	}); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Fatalf("missing request: expected ErrRequestNotFound, got %v", err)
	}
}

func TestRequestService_ListProposals_OwnerOnly(t *testing.T) {
	svc := NewRequestService(newStubRequestRepo(), zerolog.Nop())
	request := createOpenRequest(t, svc, "client_1")
	ctx := context.Background()

	if _, err := svc.SubmitProposal(ctx, ports.SubmitProposalInput{
		RequestID: request.ID, ProfessionalID: "pro_1", Amount: 100,
	}); err != nil {
		t.Fatalf("SubmitProposal: %v", err)
	}

	proposals, err := svc.ListProposals(ctx, request.ID, "client_1", domain.RoleClient)
	if err != nil {
		t.Fatalf("owner ListProposals: %v", err)
	}
	if len(proposals) != 1 {
		t.Fatalf("expected 1 proposal, got %d", len(proposals))
	}

	if _, err := svc.ListProposals(ctx, request.ID, "pro_1", domain.RoleProfessional); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("non-owner: expected ErrForbidden, got %v", err)
	}

	if _, err := svc.ListProposals(ctx, request.ID, "someone", domain.RoleAdmin); err != nil {
		t.Fatalf("admin ListProposals: %v", err)
	}
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/boltapp/marketplace-api/internal/core/domain"
	"github.com/boltapp/marketplace-api/internal/core/ports"
)

const (
	collectionRequests  = "service_requests"
	collectionProposals = "proposals"
)

type RequestRepository struct {
	requests  *mongo.Collection
	proposals *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{
		requests:  db.Collection(collectionRequests),
		proposals: db.Collection(collectionProposals),
	}
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.ServiceRequest) (*domain.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	req.CreatedAt = now
	req.UpdatedAt = now
	if _, err := r.requests.InsertOne(ctx, req); err != nil {
		return nil, fmt.Errorf("insert request: %w", err)
	}
	return req, nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var req domain.ServiceRequest
	if err := r.requests.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return &req, nil
}

func (r *RequestRepository) List(ctx context.Context, filter ports.RequestFilter, page, limit int) ([]domain.ServiceRequest, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.City != "" {
		query["city"] = filter.City
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}

	total, err := r.requests.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.requests.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	defer cursor.Close(ctx)

	var items []domain.ServiceRequest
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode requests: %w", err)
	}
	return items, total, nil
}

func (r *RequestRepository) Update(ctx context.Context, req *domain.ServiceRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.requests.ReplaceOne(ctx, bson.M{"_id": req.ID}, req)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

// CreateProposal inserts a proposal. The compound unique index on
// (request_id, professional_id) turns a second proposal from the same
// professional into ErrDuplicateProposal.
func (r *RequestRepository) CreateProposal(ctx context.Context, p *domain.Proposal) (*domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	if _, err := r.proposals.InsertOne(ctx, p); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateProposal
		}
		return nil, fmt.Errorf("insert proposal: %w", err)
	}
	return p, nil
}

func (r *RequestRepository) FindProposalByID(ctx context.Context, id string) (*domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Proposal
	if err := r.proposals.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProposalNotFound
		}
		return nil, fmt.Errorf("find proposal: %w", err)
	}
	return &p, nil
}

func (r *RequestRepository) ListProposalsByRequest(ctx context.Context, requestID string) ([]domain.Proposal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cursor, err := r.proposals.Find(ctx, bson.M{"request_id": requestID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	defer cursor.Close(ctx)

	var items []domain.Proposal
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode proposals: %w", err)
	}
	return items, nil
}

func (r *RequestRepository) UpdateProposal(ctx context.Context, p *domain.Proposal) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.proposals.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return fmt.Errorf("update proposal: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrProposalNotFound
	}
	return nil
}

func ensureRequestIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := db.Collection(collectionRequests).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "city", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}); err != nil {
		return err
	}

	_, err := db.Collection(collectionProposals).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "request_id", Value: 1}, {Key: "professional_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

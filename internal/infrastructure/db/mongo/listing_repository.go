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

const collectionListings = "listings"

type ListingRepository struct {
	col *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{col: db.Collection(collectionListings)}
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) (*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.CreatedAt = now
	l.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, l); err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	return l, nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var l domain.Listing
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("find listing: %w", err)
	}
	return &l, nil
}

func (r *ListingRepository) List(ctx context.Context, filter ports.ListingFilter, page, limit int) ([]domain.Listing, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{"active": true}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.City != "" {
		query["city"] = filter.City
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count listings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cursor, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	defer cursor.Close(ctx)

	var items []domain.Listing
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode listings: %w", err)
	}
	return items, total, nil
}

func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	l.UpdatedAt = time.Now().UTC()
	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": l.ID}, l)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func ensureListingIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := db.Collection(collectionListings).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "professional_id", Value: 1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "city", Value: 1}}},
	})
	return err
}

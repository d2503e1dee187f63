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
)

const collectionBookings = "bookings"

type BookingRepository struct {
	col *mongo.Collection
}

func NewBookingRepository(db *mongo.Database) *BookingRepository {
	return &BookingRepository{col: db.Collection(collectionBookings)}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	now := time.Now().UTC()
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, b); err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return b, nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var b domain.Booking
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &b, nil
}

// ListByUser returns bookings where the user is either party, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]domain.Booking, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": []bson.M{
		{"client_id": userID},
		{"professional_id": userID},
	}}

	cursor, err := r.col.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var items []domain.Booking
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return items, nil
}

func (r *BookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func ensureBookingIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := db.Collection(collectionBookings).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "client_id", Value: 1}}},
		{Keys: bson.D{{Key: "professional_id", Value: 1}}},
		{Keys: bson.D{{Key: "proposal_id", Value: 1}}},
	})
	return err
}

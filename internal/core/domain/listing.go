package domain

import (
	"errors"
	"time"
)

var ErrListingNotFound = errors.New("listing not found")

// Listing is a service offering published by a professional.
type Listing struct {
	ID             string    `json:"id" bson:"_id,omitempty"`
	ProfessionalID string    `json:"professional_id" bson:"professional_id"`
	Title          string    `json:"title" bson:"title"`
	Description    string    `json:"description" bson:"description"`
	Category       string    `json:"category" bson:"category"`
	City           string    `json:"city" bson:"city"`
	Price          float64   `json:"price" bson:"price"`
	Currency       string    `json:"currency" bson:"currency"`
	Active         bool      `json:"active" bson:"active"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

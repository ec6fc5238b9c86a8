package model

import "time"

// BusinessID is the fixed document id of the business-settings singleton.
// There is exactly one restaurant; the settings live in a single document
// rather than in "whatever document happens to be first".
const BusinessID = "business_settings"

// Business holds the restaurant-wide settings read on every request path.
type Business struct {
	ID          string    `bson:"_id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	Phone       string    `bson:"phone,omitempty" json:"phone,omitempty"`
	Address     string    `bson:"address,omitempty" json:"address,omitempty"`
	Open        bool      `bson:"open" json:"open"`
	OpeningHour int       `bson:"opening_hour" json:"opening_hour"`
	ClosingHour int       `bson:"closing_hour" json:"closing_hour"`
	DeliveryFee float64   `bson:"delivery_fee" json:"delivery_fee"`
	MinOrder    float64   `bson:"min_order" json:"min_order"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// DefaultBusiness returns the document seeded on first access.
func DefaultBusiness() *Business {
	return &Business{
		ID:          BusinessID,
		Name:        "Tavola",
		Open:        true,
		OpeningHour: 10,
		ClosingHour: 23,
		DeliveryFee: 3.50,
		MinOrder:    10,
		UpdatedAt:   time.Now().UTC(),
	}
}

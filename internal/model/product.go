package model

import "time"

// ProductStats are the order-derived aggregates on a product. They are
// mutated only by the post-order aggregator, via additive increments.
type ProductStats struct {
	SalesCount   int64   `bson:"sales_count" json:"sales_count"`
	TotalRevenue float64 `bson:"total_revenue" json:"total_revenue"`
	Rating       float64 `bson:"rating" json:"rating"`
}

// Product is a menu item.
type Product struct {
	ID          string       `bson:"_id" json:"id"`
	Name        string       `bson:"name" json:"name"`
	Description string       `bson:"description,omitempty" json:"description,omitempty"`
	Category    string       `bson:"category" json:"category"`
	Price       float64      `bson:"price" json:"price"`
	ImageURL    string       `bson:"image_url,omitempty" json:"image_url,omitempty"`
	Available   bool         `bson:"available" json:"available"`
	Stats       ProductStats `bson:"stats" json:"stats"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at"`
}

// ProductFilter narrows a product list query. The zero value lists
// everything, newest first.
type ProductFilter struct {
	Category  string
	Available *bool
	Search    string
	SortBy    string
	Page      int
	Limit     int
}

// StatsDelta is one product's share of a delivered order, applied as a
// single additive update.
type StatsDelta struct {
	Quantity int64
	Revenue  float64
}

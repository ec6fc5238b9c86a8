package model

import "time"

// Order frequency classes.
const (
	FrequencyOccasional = "occasional"
	FrequencyRegular    = "regular"
	FrequencyFrequent   = "frequent"
)

// Preferred order-time buckets.
const (
	OrderTimeMorning   = "morning"
	OrderTimeAfternoon = "afternoon"
	OrderTimeEvening   = "evening"
	OrderTimeNight     = "night"
)

// OrderedItem is one entry of a customer's most-ordered list.
type OrderedItem struct {
	ProductID   string    `bson:"product_id" json:"product_id"`
	Name        string    `bson:"name" json:"name"`
	Count       int64     `bson:"count" json:"count"`
	TotalSpent  float64   `bson:"total_spent" json:"total_spent"`
	LastOrdered time.Time `bson:"last_ordered" json:"last_ordered"`
}

// CategoryCount is one entry of a customer's favorite-categories list.
type CategoryCount struct {
	Category string `bson:"category" json:"category"`
	Count    int64  `bson:"count" json:"count"`
}

// OrderingBehavior is the per-customer aggregate maintained incrementally
// by the post-order aggregator.
type OrderingBehavior struct {
	TotalOrders        int64           `bson:"total_orders" json:"total_orders"`
	TotalSpent         float64         `bson:"total_spent" json:"total_spent"`
	AverageOrderValue  float64         `bson:"average_order_value" json:"average_order_value"`
	AvgItemsPerOrder   float64         `bson:"avg_items_per_order" json:"avg_items_per_order"`
	MostOrderedItems   []OrderedItem   `bson:"most_ordered_items" json:"most_ordered_items"`
	FavoriteCategories []CategoryCount `bson:"favorite_categories" json:"favorite_categories"`
	OrderFrequency     string          `bson:"order_frequency" json:"order_frequency"`
	PreferredOrderTime string          `bson:"preferred_order_time" json:"preferred_order_time"`
	LastOrderDate      *time.Time      `bson:"last_order_date,omitempty" json:"last_order_date,omitempty"`
}

// Customer is a registered customer.
type Customer struct {
	ID        string           `bson:"_id" json:"id"`
	Name      string           `bson:"name" json:"name"`
	Email     string           `bson:"email,omitempty" json:"email,omitempty"`
	Phone     string           `bson:"phone,omitempty" json:"phone,omitempty"`
	Behavior  OrderingBehavior `bson:"behavior" json:"behavior"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time        `bson:"updated_at" json:"updated_at"`
}

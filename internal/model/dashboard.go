package model

import "time"

// TodayStats summarizes today's orders.
type TodayStats struct {
	Revenue      float64          `bson:"revenue" json:"revenue"`
	OrderCount   int64            `bson:"order_count" json:"order_count"`
	StatusCounts map[string]int64 `bson:"status_counts" json:"status_counts"`
	AverageOrder float64          `bson:"average_order" json:"average_order"`
}

// RevenuePoint is one day of the weekly revenue chart.
type RevenuePoint struct {
	Date    string  `bson:"date" json:"date"`
	Revenue float64 `bson:"revenue" json:"revenue"`
	Orders  int64   `bson:"orders" json:"orders"`
}

// HourlyPoint is one business hour of today's sales chart. Only paid
// orders count toward hourly revenue.
type HourlyPoint struct {
	Hour    int     `bson:"hour" json:"hour"`
	Revenue float64 `bson:"revenue" json:"revenue"`
	Orders  int64   `bson:"orders" json:"orders"`
}

// TopProduct is one row of the best-sellers aggregation.
type TopProduct struct {
	ProductID string  `bson:"product_id" json:"product_id"`
	Name      string  `bson:"name" json:"name"`
	Quantity  int64   `bson:"quantity" json:"quantity"`
	Revenue   float64 `bson:"revenue" json:"revenue"`
}

// Activity is one row of the recent-activity feed.
type Activity struct {
	OrderID   string    `bson:"order_id" json:"order_id"`
	Status    string    `bson:"status" json:"status"`
	Total     float64   `bson:"total" json:"total"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// SystemStatus is a live probe of the store and cache. It is never cached.
type SystemStatus struct {
	Database string    `json:"database"`
	Cache    string    `json:"cache"`
	Time     time.Time `json:"time"`
}

// DashboardOverview is the combined dashboard view.
type DashboardOverview struct {
	Today         TodayStats     `json:"today"`
	WeeklyRevenue []RevenuePoint `json:"weekly_revenue"`
	HourlySales   []HourlyPoint  `json:"hourly_sales"`
	TopProducts   []TopProduct   `json:"top_products"`
	Recent        []Activity     `json:"recent_activity"`
	System        SystemStatus   `json:"system"`
	GeneratedAt   time.Time      `json:"generated_at"`
}

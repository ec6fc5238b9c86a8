package repository

import (
	"context"
	"time"

	"tavola-rest-api/internal/model"
)

// RepoError is a repository-level error.
type RepoError string

func (e RepoError) Error() string { return string(e) }

// ErrNotFound indicates the requested document does not exist.
const ErrNotFound RepoError = "not found"

// ErrDuplicate indicates a unique-key conflict on insert.
const ErrDuplicate RepoError = "already exists"

// BusinessRepository stores the business-settings singleton.
type BusinessRepository interface {
	// Get returns the settings, seeding the default document on first
	// access.
	Get(ctx context.Context) (*model.Business, error)

	// Update replaces the settings document.
	Update(ctx context.Context, b *model.Business) error
}

// ProductRepository stores menu items.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	GetByID(ctx context.Context, id string) (*model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error)

	// IncrementStats applies additive sales/revenue deltas across all
	// given products in one batched round-trip.
	IncrementStats(ctx context.Context, deltas map[string]model.StatsDelta) error

	// SalesCounts returns the current sales counts of the given products.
	// Missing ids are absent from the result, not an error.
	SalesCounts(ctx context.Context, ids []string) (map[string]int64, error)

	// SetRatings writes recomputed ratings in one batched round-trip.
	SetRatings(ctx context.Context, ratings map[string]float64) error
}

// CouponRepository stores discount codes.
type CouponRepository interface {
	Create(ctx context.Context, c *model.Coupon) error
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	Update(ctx context.Context, c *model.Coupon) error
	Delete(ctx context.Context, code string) error
	List(ctx context.Context, f model.CouponFilter) ([]model.Coupon, int64, error)
	IncrementUsage(ctx context.Context, code string) error
}

// CustomerRepository stores customers and their ordering behavior.
type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	UpdateBehavior(ctx context.Context, id string, b model.OrderingBehavior) error
}

// OrderRepository stores orders and serves the dashboard aggregations.
type OrderRepository interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id string) (*model.Order, error)
	List(ctx context.Context, f model.OrderFilter) ([]model.Order, int64, error)

	// UpdateStatus transitions an order, stamping delivered_at on the
	// terminal delivered transition.
	UpdateStatus(ctx context.Context, id, status string, deliveredAt *time.Time) error

	// SetPaid marks an order as paid.
	SetPaid(ctx context.Context, id string) error

	// Dashboard aggregations.
	TodayStats(ctx context.Context, dayStart time.Time) (*model.TodayStats, error)
	WeeklyRevenue(ctx context.Context, from time.Time) ([]model.RevenuePoint, error)
	HourlySales(ctx context.Context, dayStart time.Time) ([]model.HourlyPoint, error)
	TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error)
	Recent(ctx context.Context, limit int) ([]model.Activity, error)
}

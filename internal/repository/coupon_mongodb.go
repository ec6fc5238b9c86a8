package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tavola-rest-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCouponRepository stores discount codes. Codes are stored upper-case
// so lookups are case-insensitive.
type MongoCouponRepository struct {
	coll *mongo.Collection
}

// NewMongoCouponRepository creates the coupon repository.
func NewMongoCouponRepository(m *Mongo) *MongoCouponRepository {
	return &MongoCouponRepository{coll: m.collection(collCoupons)}
}

// Create inserts a coupon.
func (r *MongoCouponRepository) Create(ctx context.Context, c *model.Coupon) error {
	now := time.Now().UTC()
	c.Code = strings.ToUpper(c.Code)
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("coupon code %s: %w", c.Code, ErrDuplicate)
		}
		return fmt.Errorf("failed to insert coupon: %w", err)
	}
	return nil
}

// GetByCode returns one coupon.
func (r *MongoCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var c model.Coupon
	err := r.coll.FindOne(ctx, bson.M{"code": strings.ToUpper(code)}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return &c, nil
}

// Update replaces a coupon's editable fields.
func (r *MongoCouponRepository) Update(ctx context.Context, c *model.Coupon) error {
	c.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"type":         c.Type,
		"value":        c.Value,
		"min_order":    c.MinOrder,
		"max_discount": c.MaxDiscount,
		"usage_limit":  c.UsageLimit,
		"active":       c.Active,
		"expires_at":   c.ExpiresAt,
		"updated_at":   c.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"code": strings.ToUpper(c.Code)}, update)
	if err != nil {
		return fmt.Errorf("failed to update coupon: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a coupon.
func (r *MongoCouponRepository) Delete(ctx context.Context, code string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"code": strings.ToUpper(code)})
	if err != nil {
		return fmt.Errorf("failed to delete coupon: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a filtered, paginated page of coupons plus the total count.
func (r *MongoCouponRepository) List(ctx context.Context, f model.CouponFilter) ([]model.Coupon, int64, error) {
	filter := bson.M{}
	if f.Active != nil {
		filter["active"] = *f.Active
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count coupons: %w", err)
	}

	page, limit := normalizePage(f.Page, f.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list coupons: %w", err)
	}
	defer cur.Close(ctx)

	coupons := make([]model.Coupon, 0, limit)
	if err := cur.All(ctx, &coupons); err != nil {
		return nil, 0, fmt.Errorf("failed to decode coupons: %w", err)
	}
	return coupons, total, nil
}

// IncrementUsage bumps the redemption counter.
func (r *MongoCouponRepository) IncrementUsage(ctx context.Context, code string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"code": strings.ToUpper(code)},
		bson.M{"$inc": bson.M{"used_count": 1}})
	if err != nil {
		return fmt.Errorf("failed to increment coupon usage: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

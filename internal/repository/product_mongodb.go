package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tavola-rest-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoProductRepository stores menu items.
type MongoProductRepository struct {
	coll *mongo.Collection
}

// NewMongoProductRepository creates the product repository.
func NewMongoProductRepository(m *Mongo) *MongoProductRepository {
	return &MongoProductRepository{coll: m.collection(collProducts)}
}

// Create inserts a product.
func (r *MongoProductRepository) Create(ctx context.Context, p *model.Product) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, p); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

// GetByID returns one product.
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// Update replaces everything except the order-derived stats, which belong
// to the aggregator.
func (r *MongoProductRepository) Update(ctx context.Context, p *model.Product) error {
	p.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"name":        p.Name,
		"description": p.Description,
		"category":    p.Category,
		"price":       p.Price,
		"image_url":   p.ImageURL,
		"available":   p.Available,
		"updated_at":  p.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": p.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product.
func (r *MongoProductRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns a filtered, paginated page of products plus the total count.
func (r *MongoProductRepository) List(ctx context.Context, f model.ProductFilter) ([]model.Product, int64, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Available != nil {
		filter["available"] = *f.Available
	}
	if f.Search != "" {
		filter["name"] = bson.M{"$regex": f.Search, "$options": "i"}
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	sort := bson.D{{Key: "created_at", Value: -1}}
	switch f.SortBy {
	case "price":
		sort = bson.D{{Key: "price", Value: 1}}
	case "rating":
		sort = bson.D{{Key: "stats.rating", Value: -1}}
	case "sales":
		sort = bson.D{{Key: "stats.sales_count", Value: -1}}
	}

	page, limit := normalizePage(f.Page, f.Limit)
	opts := options.Find().
		SetSort(sort).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer cur.Close(ctx)

	products := make([]model.Product, 0, limit)
	if err := cur.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, total, nil
}

// IncrementStats applies additive sales/revenue deltas for all products
// of one delivered order in a single unordered bulk write.
func (r *MongoProductRepository) IncrementStats(ctx context.Context, deltas map[string]model.StatsDelta) error {
	if len(deltas) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(deltas))
	for id, d := range deltas {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$inc": bson.M{
				"stats.sales_count":   d.Quantity,
				"stats.total_revenue": d.Revenue,
			}}))
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := r.coll.BulkWrite(ctx, models, opts); err != nil {
		return fmt.Errorf("failed to increment product stats: %w", err)
	}
	return nil
}

// SalesCounts returns the current sales counts of the given products.
func (r *MongoProductRepository) SalesCounts(ctx context.Context, ids []string) (map[string]int64, error) {
	if len(ids) == 0 {
		return map[string]int64{}, nil
	}

	opts := options.Find().SetProjection(bson.M{"stats.sales_count": 1})
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read sales counts: %w", err)
	}
	defer cur.Close(ctx)

	counts := make(map[string]int64, len(ids))
	for cur.Next(ctx) {
		var doc struct {
			ID    string `bson:"_id"`
			Stats struct {
				SalesCount int64 `bson:"sales_count"`
			} `bson:"stats"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode sales count: %w", err)
		}
		counts[doc.ID] = doc.Stats.SalesCount
	}
	return counts, cur.Err()
}

// SetRatings writes recomputed ratings for the touched products in a
// second unordered bulk write.
func (r *MongoProductRepository) SetRatings(ctx context.Context, ratings map[string]float64) error {
	if len(ratings) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(ratings))
	for id, rating := range ratings {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": bson.M{"stats.rating": rating}}))
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := r.coll.BulkWrite(ctx, models, opts); err != nil {
		return fmt.Errorf("failed to set product ratings: %w", err)
	}
	return nil
}

// normalizePage clamps pagination to sane bounds.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

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

// MongoOrderRepository stores orders and serves the grouped aggregations
// backing the dashboard.
type MongoOrderRepository struct {
	coll *mongo.Collection
}

// NewMongoOrderRepository creates the order repository.
func NewMongoOrderRepository(m *Mongo) *MongoOrderRepository {
	return &MongoOrderRepository{coll: m.collection(collOrders)}
}

// Create inserts an order.
func (r *MongoOrderRepository) Create(ctx context.Context, o *model.Order) error {
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// GetByID returns one order.
func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*model.Order, error) {
	var o model.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

// List returns a filtered, paginated page of orders plus the total count.
func (r *MongoOrderRepository) List(ctx context.Context, f model.OrderFilter) ([]model.Order, int64, error) {
	filter := bson.M{}
	if f.CustomerID != "" {
		filter["customer_id"] = f.CustomerID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.From != nil || f.To != nil {
		rangeFilter := bson.M{}
		if f.From != nil {
			rangeFilter["$gte"] = *f.From
		}
		if f.To != nil {
			rangeFilter["$lt"] = *f.To
		}
		filter["created_at"] = rangeFilter
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	page, limit := normalizePage(f.Page, f.Limit)
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cur.Close(ctx)

	orders := make([]model.Order, 0, limit)
	if err := cur.All(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, total, nil
}

// UpdateStatus transitions an order, stamping delivered_at on the
// terminal delivered transition.
func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id, status string, deliveredAt *time.Time) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if deliveredAt != nil {
		set["delivered_at"] = *deliveredAt
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPaid marks an order as paid.
func (r *MongoOrderRepository) SetPaid(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"paid": true, "updated_at": time.Now().UTC()}})
	if err != nil {
		return fmt.Errorf("failed to mark order paid: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// TodayStats groups today's orders by status and composes revenue and
// counts. Cancelled orders count toward the status breakdown but not
// toward revenue.
func (r *MongoOrderRepository) TodayStats(ctx context.Context, dayStart time.Time) (*model.TodayStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"created_at": bson.M{"$gte": dayStart}}}},
		{{Key: "$group", Value: bson.M{
			"_id":     "$status",
			"count":   bson.M{"$sum": 1},
			"revenue": bson.M{"$sum": "$total"},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate today stats: %w", err)
	}
	defer cur.Close(ctx)

	stats := &model.TodayStats{StatusCounts: make(map[string]int64)}
	var billable int64
	for cur.Next(ctx) {
		var row struct {
			Status  string  `bson:"_id"`
			Count   int64   `bson:"count"`
			Revenue float64 `bson:"revenue"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode today stats: %w", err)
		}
		stats.StatusCounts[row.Status] = row.Count
		stats.OrderCount += row.Count
		if row.Status != model.OrderStatusCancelled {
			stats.Revenue += row.Revenue
			billable += row.Count
		}
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("today stats cursor: %w", err)
	}
	if billable > 0 {
		stats.AverageOrder = stats.Revenue / float64(billable)
	}
	return stats, nil
}

// WeeklyRevenue buckets non-cancelled orders per day since from.
func (r *MongoOrderRepository) WeeklyRevenue(ctx context.Context, from time.Time) ([]model.RevenuePoint, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"created_at": bson.M{"$gte": from},
			"status":     bson.M{"$ne": model.OrderStatusCancelled},
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$created_at"}},
			"revenue": bson.M{"$sum": "$total"},
			"orders":  bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate weekly revenue: %w", err)
	}
	defer cur.Close(ctx)

	var points []model.RevenuePoint
	for cur.Next(ctx) {
		var row struct {
			Date    string  `bson:"_id"`
			Revenue float64 `bson:"revenue"`
			Orders  int64   `bson:"orders"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode weekly revenue: %w", err)
		}
		points = append(points, model.RevenuePoint{Date: row.Date, Revenue: row.Revenue, Orders: row.Orders})
	}
	return points, cur.Err()
}

// HourlySales buckets today's paid orders by hour.
func (r *MongoOrderRepository) HourlySales(ctx context.Context, dayStart time.Time) ([]model.HourlyPoint, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{
			"created_at": bson.M{"$gte": dayStart},
			"paid":       true,
		}}},
		{{Key: "$group", Value: bson.M{
			"_id":     bson.M{"$hour": "$created_at"},
			"revenue": bson.M{"$sum": "$total"},
			"orders":  bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate hourly sales: %w", err)
	}
	defer cur.Close(ctx)

	var points []model.HourlyPoint
	for cur.Next(ctx) {
		var row struct {
			Hour    int     `bson:"_id"`
			Revenue float64 `bson:"revenue"`
			Orders  int64   `bson:"orders"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode hourly sales: %w", err)
		}
		points = append(points, model.HourlyPoint{Hour: row.Hour, Revenue: row.Revenue, Orders: row.Orders})
	}
	return points, cur.Err()
}

// TopProducts unwinds delivered orders' line items and ranks products by
// quantity sold.
func (r *MongoOrderRepository) TopProducts(ctx context.Context, limit int) ([]model.TopProduct, error) {
	if limit < 1 {
		limit = 5
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"status": model.OrderStatusDelivered}}},
		{{Key: "$unwind", Value: "$items"}},
		{{Key: "$group", Value: bson.M{
			"_id":      "$items.product_id",
			"name":     bson.M{"$first": "$items.name"},
			"quantity": bson.M{"$sum": "$items.quantity"},
			"revenue":  bson.M{"$sum": bson.M{"$multiply": []interface{}{"$items.price", "$items.quantity"}}},
		}}},
		{{Key: "$sort", Value: bson.M{"quantity": -1}}},
		{{Key: "$limit", Value: limit}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate top products: %w", err)
	}
	defer cur.Close(ctx)

	var top []model.TopProduct
	for cur.Next(ctx) {
		var row struct {
			ProductID string  `bson:"_id"`
			Name      string  `bson:"name"`
			Quantity  int64   `bson:"quantity"`
			Revenue   float64 `bson:"revenue"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode top product: %w", err)
		}
		top = append(top, model.TopProduct{ProductID: row.ProductID, Name: row.Name, Quantity: row.Quantity, Revenue: row.Revenue})
	}
	return top, cur.Err()
}

// Recent returns the newest orders as an activity feed.
func (r *MongoOrderRepository) Recent(ctx context.Context, limit int) ([]model.Activity, error) {
	if limit < 1 {
		limit = 10
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"status": 1, "total": 1, "created_at": 1})

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent orders: %w", err)
	}
	defer cur.Close(ctx)

	var feed []model.Activity
	for cur.Next(ctx) {
		var row struct {
			ID        string    `bson:"_id"`
			Status    string    `bson:"status"`
			Total     float64   `bson:"total"`
			CreatedAt time.Time `bson:"created_at"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode activity: %w", err)
		}
		feed = append(feed, model.Activity{OrderID: row.ID, Status: row.Status, Total: row.Total, CreatedAt: row.CreatedAt})
	}
	return feed, cur.Err()
}

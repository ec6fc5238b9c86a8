package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Collection names.
const (
	collBusiness  = "business"
	collProducts  = "products"
	collCoupons   = "coupons"
	collCustomers = "customers"
	collOrders    = "orders"
)

// Mongo wraps the client and database shared by all repositories. It is
// constructed once at startup and closed at shutdown by the composition
// root; nothing holds a connection at package scope.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongo connects to MongoDB and verifies the connection.
func NewMongo(ctx context.Context, uri, database string, connectTimeout time.Duration, logger *zap.Logger) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.Info("mongodb connected", zap.String("database", database))
	return &Mongo{
		client: client,
		db:     client.Database(database),
		logger: logger,
	}, nil
}

// Ping verifies the connection is still alive.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

func (m *Mongo) collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// EnsureIndexes creates the indexes the query paths rely on. Index
// creation failures are logged, not fatal: the queries still work, just
// slower.
func (m *Mongo) EnsureIndexes(ctx context.Context) {
	specs := map[string][]mongo.IndexModel{
		collProducts: {
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "available", Value: 1}}},
		},
		collCoupons: {
			{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		collOrders: {
			{Keys: bson.D{{Key: "customer_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
	}
	for coll, models := range specs {
		if _, err := m.collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			m.logger.Warn("index creation failed", zap.String("collection", coll), zap.Error(err))
		}
	}
}

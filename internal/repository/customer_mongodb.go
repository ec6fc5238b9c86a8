package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tavola-rest-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoCustomerRepository stores customers.
type MongoCustomerRepository struct {
	coll *mongo.Collection
}

// NewMongoCustomerRepository creates the customer repository.
func NewMongoCustomerRepository(m *Mongo) *MongoCustomerRepository {
	return &MongoCustomerRepository{coll: m.collection(collCustomers)}
}

// Create inserts a customer with empty ordering behavior.
func (r *MongoCustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

// GetByID returns one customer.
func (r *MongoCustomerRepository) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

// UpdateBehavior persists the customer's recomputed ordering behavior as
// one single-document update.
func (r *MongoCustomerRepository) UpdateBehavior(ctx context.Context, id string, b model.OrderingBehavior) error {
	update := bson.M{"$set": bson.M{
		"behavior":   b,
		"updated_at": time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update customer behavior: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

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

// MongoBusinessRepository stores the settings singleton under a fixed
// document id.
type MongoBusinessRepository struct {
	coll *mongo.Collection
}

// NewMongoBusinessRepository creates the business repository.
func NewMongoBusinessRepository(m *Mongo) *MongoBusinessRepository {
	return &MongoBusinessRepository{coll: m.collection(collBusiness)}
}

// Get returns the settings document, seeding the default on first access.
// Seeding is store policy: readers above this layer never see not-found
// for the singleton and never cache a sentinel.
func (r *MongoBusinessRepository) Get(ctx context.Context) (*model.Business, error) {
	var b model.Business
	err := r.coll.FindOne(ctx, bson.M{"_id": model.BusinessID}).Decode(&b)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to get business settings: %w", err)
	}

	seed := model.DefaultBusiness()
	opts := options.Update().SetUpsert(true)
	// SetOnInsert keeps a concurrent writer's document intact if two
	// first-reads race.
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": model.BusinessID},
		bson.M{"$setOnInsert": seed}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to seed business settings: %w", err)
	}

	if err := r.coll.FindOne(ctx, bson.M{"_id": model.BusinessID}).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to read seeded business settings: %w", err)
	}
	return &b, nil
}

// Update replaces the settings document.
func (r *MongoBusinessRepository) Update(ctx context.Context, b *model.Business) error {
	b.ID = model.BusinessID
	b.UpdatedAt = time.Now().UTC()

	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": model.BusinessID}, b, opts); err != nil {
		return fmt.Errorf("failed to update business settings: %w", err)
	}
	return nil
}

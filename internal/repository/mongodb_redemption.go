package repository

import (
	"context"

	"coupon-studio/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// mongodbRedemptionRepository implements RedemptionRepository using MongoDB
type mongodbRedemptionRepository struct {
	collection *mongo.Collection
}

// NewRedemptionRepository creates a new MongoDB-based redemption repository
func NewRedemptionRepository(db *mongo.Database) RedemptionRepository {
	return &mongodbRedemptionRepository{
		collection: db.Collection("redemptions"),
	}
}

// Insert records a successful coupon application
func (r *mongodbRedemptionRepository) Insert(ctx context.Context, redemption *model.Redemption) error {
	_, err := r.collection.InsertOne(ctx, redemption)
	return err
}

// ListByCode retrieves all redemptions for a specific coupon code
func (r *mongodbRedemptionRepository) ListByCode(ctx context.Context, code string) ([]*model.Redemption, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"code": code})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var redemptions []*model.Redemption
	if err := cursor.All(ctx, &redemptions); err != nil {
		return nil, err
	}

	return redemptions, nil
}

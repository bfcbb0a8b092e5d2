package repository

import (
	"context"

	"coupon-studio/internal/model"
	apperrors "coupon-studio/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongodbCouponRepository implements CouponRepository using MongoDB
type mongodbCouponRepository struct {
	collection *mongo.Collection
}

// NewCouponRepository creates a new MongoDB-based coupon repository
func NewCouponRepository(db *mongo.Database) CouponRepository {
	return &mongodbCouponRepository{
		collection: db.Collection("coupons"),
	}
}

// Insert creates a new coupon, relying on the unique code index for
// duplicate detection
func (r *mongodbCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	_, err := r.collection.InsertOne(ctx, coupon)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.ErrDuplicateCode
		}
		return err
	}

	return nil
}

// GetByCode retrieves a coupon by its normalized code
func (r *mongodbCouponRepository) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.ErrCouponNotFound
		}
		return nil, err
	}

	return &coupon, nil
}

// ListAll returns all coupons in insertion order
func (r *mongodbCouponRepository) ListAll(ctx context.Context) ([]*model.Coupon, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	coupons := []*model.Coupon{}
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, err
	}

	return coupons, nil
}

// ConsumeUse atomically increments the usage counter while it is below
// maxUses. The filter guards the counter bound so two concurrent callers
// can never both take the last usage slot.
func (r *mongodbCouponRepository) ConsumeUse(ctx context.Context, code string, maxUses *int64) (*model.Coupon, error) {
	filter := bson.M{"code": code}
	if maxUses != nil {
		filter["uses"] = bson.M{"$lt": *maxUses} // only update while a slot remains
	}

	var coupon model.Coupon
	err := r.collection.FindOneAndUpdate(
		ctx,
		filter,
		bson.M{"$inc": bson.M{"uses": 1}},
		options.FindOneAndUpdate().
			SetReturnDocument(options.After).
			SetUpsert(false),
	).Decode(&coupon)

	if err != nil {
		if err == mongo.ErrNoDocuments {
			// The guarded update matched nothing: either the coupon is
			// gone or the counter hit its bound. A fresh read decides.
			lookupErr := r.collection.FindOne(ctx, bson.M{"code": code}).Err()
			if lookupErr == mongo.ErrNoDocuments {
				return nil, apperrors.ErrCouponNotFound
			}
			if lookupErr != nil {
				return nil, lookupErr
			}
			return nil, apperrors.ErrCouponExhausted
		}
		return nil, err
	}

	return &coupon, nil
}

// Deactivate clears the coupon's active flag
func (r *mongodbCouponRepository) Deactivate(ctx context.Context, code string) error {
	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"code": code},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrCouponNotFound
	}

	return nil
}

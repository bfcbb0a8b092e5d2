package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB wraps the MongoDB client and database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect establishes a connection to MongoDB
func Connect(ctx context.Context, uri, dbName string) (*MongoDB, error) {
	clientOptions := options.Client().ApplyURI(uri)

	// Set connection timeout
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)

	mongoDB := &MongoDB{
		Client:   client,
		Database: db,
	}

	// Create indexes
	if err := mongoDB.CreateIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return mongoDB, nil
}

// CreateIndexes creates all necessary indexes for the application
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	// Unique index on coupons.code; codes are stored normalized so this
	// enforces case-insensitive uniqueness
	couponsCollection := m.Database.Collection("coupons")
	couponCodeIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("coupon_code_unique"),
	}
	if _, err := couponsCollection.Indexes().CreateOne(ctx, couponCodeIndex); err != nil {
		return fmt.Errorf("failed to create coupon code index: %w", err)
	}

	// Indexes on redemptions for the detail endpoint's audit lookups
	redemptionsCollection := m.Database.Collection("redemptions")
	redemptionCodeIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "code", Value: 1}},
		Options: options.Index().SetName("redemption_code_index"),
	}
	if _, err := redemptionsCollection.Indexes().CreateOne(ctx, redemptionCodeIndex); err != nil {
		return fmt.Errorf("failed to create redemption code index: %w", err)
	}

	couponIDIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "coupon_id", Value: 1}},
		Options: options.Index().SetName("redemption_coupon_id_index"),
	}
	if _, err := redemptionsCollection.Indexes().CreateOne(ctx, couponIDIndex); err != nil {
		return fmt.Errorf("failed to create redemption coupon_id index: %w", err)
	}

	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	ProductsCollection = "products"
	CouponsCollection  = "coupons"
	CartsCollection    = "carts"
	OrdersCollection   = "orders"
)

// MongoDB wraps the MongoDB client and database
type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect establishes a connection to MongoDB
func Connect(ctx context.Context, uri, dbName string, timeout time.Duration) (*MongoDB, error) {
	clientOptions := options.Client().ApplyURI(uri)

	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	mongoDB := &MongoDB{
		Client:   client,
		Database: client.Database(dbName),
	}

	if err := mongoDB.CreateIndexes(ctx); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return mongoDB, nil
}

// CreateIndexes creates all necessary indexes for the application
func (m *MongoDB) CreateIndexes(ctx context.Context) error {
	indexes := []struct {
		collection string
		model      mongo.IndexModel
	}{
		{
			// product ids are caller-visible strings, not ObjectIDs
			collection: ProductsCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("product_id_unique"),
			},
		},
		{
			collection: CouponsCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "code", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("coupon_code_unique"),
			},
		},
		{
			// lets coupon deletion clear selections without a collection scan
			collection: CartsCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "selected_coupon", Value: 1}},
				Options: options.Index().SetName("cart_selected_coupon_index").SetSparse(true),
			},
		},
		{
			collection: OrdersCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("order_number_unique"),
			},
		},
		{
			collection: OrdersCollection,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "session_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("order_session_index"),
			},
		},
	}

	for _, idx := range indexes {
		if _, err := m.Database.Collection(idx.collection).Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("failed to create %s index on %s: %w", *idx.model.Options.Name, idx.collection, err)
		}
	}

	return nil
}

// Disconnect closes the MongoDB connection
func (m *MongoDB) Disconnect(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

package repository

import (
	"context"
	"storefront/internal/model"
	"storefront/pkg/database"
	pkgerrors "storefront/pkg/errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongodbOrderRepository implements OrderRepository using MongoDB
type mongodbOrderRepository struct {
	collection *mongo.Collection
}

// NewOrderRepository creates a new MongoDB-based order repository
func NewOrderRepository(db *mongo.Database) OrderRepository {
	return &mongodbOrderRepository{
		collection: db.Collection(database.OrdersCollection),
	}
}

// CreateOrder records a completed order
func (r *mongodbOrderRepository) CreateOrder(ctx context.Context, order *model.Order) error {
	_, err := r.collection.InsertOne(ctx, order)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "order number already used")
		}
		return err
	}

	return nil
}

// GetOrdersBySession retrieves all orders for a cart session, newest first
func (r *mongodbOrderRepository) GetOrdersBySession(ctx context.Context, sessionID string) ([]*model.Order, error) {
	cursor, err := r.collection.Find(
		ctx,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []*model.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}

	return orders, nil
}

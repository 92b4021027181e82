package repository

import (
	"context"
	"errors"
	"storefront/internal/model"
	"storefront/pkg/database"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// mongodbCartRepository implements CartRepository using MongoDB, one document per session
type mongodbCartRepository struct {
	collection *mongo.Collection
}

// NewCartRepository creates a new MongoDB-based cart repository
func NewCartRepository(db *mongo.Database) CartRepository {
	return &mongodbCartRepository{
		collection: db.Collection(database.CartsCollection),
	}
}

func (r *mongodbCartRepository) GetCart(ctx context.Context, sessionID string) (*model.CartSession, error) {
	var cart model.CartSession
	err := r.collection.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return emptySession(sessionID), nil
		}
		return nil, err
	}
	if cart.Lines == nil {
		cart.Lines = []model.CartLine{}
	}

	return &cart, nil
}

func (r *mongodbCartRepository) SaveCart(ctx context.Context, cart *model.CartSession) error {
	_, err := r.collection.ReplaceOne(
		ctx,
		bson.M{"_id": cart.ID},
		cart,
		options.Replace().SetUpsert(true),
	)
	return err
}

func (r *mongodbCartRepository) DeleteCart(ctx context.Context, sessionID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": sessionID})
	return err
}

// ClearCouponSelection unsets the selection in one atomic update per document
func (r *mongodbCartRepository) ClearCouponSelection(ctx context.Context, code string) (int64, error) {
	result, err := r.collection.UpdateMany(
		ctx,
		bson.M{"selected_coupon": code},
		bson.M{
			"$unset": bson.M{"selected_coupon": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return 0, err
	}

	return result.ModifiedCount, nil
}

package repository

import (
	"context"
	"errors"
	"storefront/internal/model"
	"storefront/pkg/database"
	pkgerrors "storefront/pkg/errors"

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
		collection: db.Collection(database.CouponsCollection),
	}
}

func (r *mongodbCouponRepository) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	coupons := []model.Coupon{}
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, err
	}

	return coupons, nil
}

// GetCouponByCode retrieves a coupon by its code
func (r *mongodbCouponRepository) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	var coupon model.Coupon
	err := r.collection.FindOne(ctx, bson.M{"code": code}).Decode(&coupon)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.ErrCouponNotFound
		}
		return nil, err
	}

	return &coupon, nil
}

// CreateCoupon creates a new coupon
func (r *mongodbCouponRepository) CreateCoupon(ctx context.Context, coupon *model.Coupon) error {
	_, err := r.collection.InsertOne(ctx, coupon)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pkgerrors.ErrCouponAlreadyExists
		}
		return err
	}

	return nil
}

func (r *mongodbCouponRepository) DeleteCoupon(ctx context.Context, code string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"code": code})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return pkgerrors.ErrCouponNotFound
	}

	return nil
}

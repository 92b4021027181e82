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

// mongodbProductRepository implements ProductRepository using MongoDB
type mongodbProductRepository struct {
	collection *mongo.Collection
}

// NewProductRepository creates a new MongoDB-based product repository
func NewProductRepository(db *mongo.Database) ProductRepository {
	return &mongodbProductRepository{
		collection: db.Collection(database.ProductsCollection),
	}
}

func (r *mongodbProductRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := []model.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}

	return products, nil
}

// GetProduct retrieves a product by its id
func (r *mongodbProductRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	err := r.collection.FindOne(ctx, bson.M{"id": id}).Decode(&product)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pkgerrors.ErrProductNotFound
		}
		return nil, err
	}

	return &product, nil
}

func (r *mongodbProductRepository) GetProductsByIDs(ctx context.Context, ids []string) (map[string]model.Product, error) {
	found := make(map[string]model.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var product model.Product
		if err := cursor.Decode(&product); err != nil {
			return nil, err
		}
		found[product.ID] = product
	}

	return found, cursor.Err()
}

func (r *mongodbProductRepository) CreateProduct(ctx context.Context, product *model.Product) error {
	_, err := r.collection.InsertOne(ctx, product)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return pkgerrors.New(pkgerrors.CodeConflict, "product already exists")
		}
		return err
	}

	return nil
}

func (r *mongodbProductRepository) UpdateProduct(ctx context.Context, product *model.Product) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"id": product.ID}, product)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return pkgerrors.ErrProductNotFound
	}

	return nil
}

func (r *mongodbProductRepository) DeleteProduct(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return pkgerrors.ErrProductNotFound
	}

	return nil
}

package repository

import (
	"context"
	"storefront/internal/model"
)

// ProductRepository defines the interface for product catalog operations
type ProductRepository interface {
	// ListProducts returns every product in creation order
	ListProducts(ctx context.Context) ([]model.Product, error)

	// GetProduct retrieves a product by its id
	GetProduct(ctx context.Context, id string) (*model.Product, error)

	// GetProductsByIDs resolves a set of ids; unknown ids are absent from the result
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]model.Product, error)

	CreateProduct(ctx context.Context, product *model.Product) error

	// UpdateProduct replaces the stored product with the same id
	UpdateProduct(ctx context.Context, product *model.Product) error

	DeleteProduct(ctx context.Context, id string) error
}

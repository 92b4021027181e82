package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	"storefront/internal/validation"
	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
)

// ProductService handles the product catalog. Writes run on the catalog queue.
type ProductService struct {
	products  repository.ProductRepository
	queue     *Serializer
	validator *validatorv10.Validate
	log       *logger.Logger
	now       func() time.Time
}

// NewProductService creates a new product service
func NewProductService(products repository.ProductRepository, queue *Serializer, v *validatorv10.Validate, log *logger.Logger) (*ProductService, error) {
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if queue == nil {
		return nil, fmt.Errorf("serializer required")
	}
	if v == nil {
		v = validation.New()
	}
	if log == nil {
		log = logger.Nop()
	}
	return &ProductService{
		products:  products,
		queue:     queue,
		validator: v,
		log:       log,
		now:       time.Now,
	}, nil
}

// ListProducts returns the catalog ordered by stock, largest first, narrowed
// to products whose name or description contains search (case-insensitive)
// when search is not blank.
func (s *ProductService) ListProducts(ctx context.Context, search string) ([]model.Product, error) {
	stored, err := s.products.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	products := pricing.SortByStock(stored)

	term := strings.ToLower(strings.TrimSpace(search))
	if term == "" {
		return products, nil
	}
	matched := make([]model.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Description), term) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return s.products.GetProduct(ctx, id)
}

// CreateProduct validates req and stores it under a fresh p-<uuid> id.
func (s *ProductService) CreateProduct(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	product := &model.Product{
		ID:            "p-" + uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		Stock:         req.Stock,
		Discounts:     append([]model.Discount{}, req.Discounts...),
		IsRecommended: req.IsRecommended,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if product.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}

	err := s.queue.Do(ctx, productCatalogKey, func(ctx context.Context) error {
		return s.products.CreateProduct(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithField(ctx, "product_id", product.ID), "product created")
	return product, nil
}

// UpdateProduct applies the non-nil fields of req to the stored product.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *model.UpdateProductRequest) (*model.Product, error) {
	if err := validation.Struct(s.validator, req); err != nil {
		return nil, err
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}

	var updated model.Product
	err := s.queue.Do(ctx, productCatalogKey, func(ctx context.Context) error {
		current, err := s.products.GetProduct(ctx, id)
		if err != nil {
			return err
		}
		updated = req.Apply(*current)
		updated.UpdatedAt = s.now().UTC()
		return s.products.UpdateProduct(ctx, &updated)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(s.log.WithField(ctx, "product_id", id), "product updated")
	return &updated, nil
}

// DeleteProduct removes a product. Carts holding it drop the line on their next load.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	err := s.queue.Do(ctx, productCatalogKey, func(ctx context.Context) error {
		return s.products.DeleteProduct(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info(s.log.WithField(ctx, "product_id", id), "product deleted")
	return nil
}

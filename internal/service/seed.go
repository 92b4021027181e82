package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/pkg/logger"
)

// DefaultProducts is the starter catalog loaded into an empty store.
func DefaultProducts(now time.Time) []model.Product {
	return []model.Product{
		{
			ID:          "p1",
			Name:        "Product 1",
			Description: "Best seller with bulk pricing",
			Price:       10000,
			Stock:       20,
			Discounts: []model.Discount{
				{Quantity: 10, Rate: 0.1},
				{Quantity: 20, Rate: 0.2},
			},
			CreatedAt: now,
			UpdatedAt: now,
		},
		{
			ID:          "p2",
			Name:        "Product 2",
			Description: "Recommended pick",
			Price:       20000,
			Stock:       20,
			Discounts: []model.Discount{
				{Quantity: 10, Rate: 0.15},
			},
			IsRecommended: true,
			CreatedAt:     now.Add(time.Millisecond),
			UpdatedAt:     now.Add(time.Millisecond),
		},
		{
			ID:          "p3",
			Name:        "Product 3",
			Description: "Large item with deep volume discounts",
			Price:       30000,
			Stock:       20,
			Discounts: []model.Discount{
				{Quantity: 10, Rate: 0.2},
				{Quantity: 30, Rate: 0.25},
			},
			CreatedAt: now.Add(2 * time.Millisecond),
			UpdatedAt: now.Add(2 * time.Millisecond),
		},
	}
}

// DefaultCoupons is the starter coupon catalog loaded into an empty store.
func DefaultCoupons(now time.Time) []model.Coupon {
	return []model.Coupon{
		{Code: "AMOUNT5000", Name: "5,000 won off", DiscountType: model.DiscountTypeAmount, DiscountValue: 5000, CreatedAt: now},
		{Code: "PERCENT10", Name: "10% off", DiscountType: model.DiscountTypePercentage, DiscountValue: 10, CreatedAt: now.Add(time.Millisecond)},
	}
}

// SeedCatalog loads the starter catalogs into whichever of the two stores is empty.
func SeedCatalog(ctx context.Context, products repository.ProductRepository, coupons repository.CouponRepository, log *logger.Logger) error {
	now := time.Now().UTC()

	existingProducts, err := products.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}
	if len(existingProducts) == 0 {
		for _, p := range DefaultProducts(now) {
			if err := products.CreateProduct(ctx, &p); err != nil {
				return fmt.Errorf("seed product %s: %w", p.ID, err)
			}
		}
		log.Info(ctx, "seeded product catalog")
	}

	existingCoupons, err := coupons.ListCoupons(ctx)
	if err != nil {
		return fmt.Errorf("list coupons: %w", err)
	}
	if len(existingCoupons) == 0 {
		for _, c := range DefaultCoupons(now) {
			if err := coupons.CreateCoupon(ctx, &c); err != nil {
				return fmt.Errorf("seed coupon %s: %w", c.Code, err)
			}
		}
		log.Info(ctx, "seeded coupon catalog")
	}

	return nil
}

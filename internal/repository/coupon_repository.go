package repository

import (
	"context"
	"storefront/internal/model"
)

// CouponRepository defines the interface for coupon catalog operations
type CouponRepository interface {
	// ListCoupons returns every coupon in creation order
	ListCoupons(ctx context.Context) ([]model.Coupon, error)

	// GetCouponByCode retrieves a coupon by its code
	GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error)

	// CreateCoupon creates a new coupon
	// Returns ErrCouponAlreadyExists if the code is taken
	CreateCoupon(ctx context.Context, coupon *model.Coupon) error

	// DeleteCoupon removes a coupon by its code
	DeleteCoupon(ctx context.Context, code string) error
}

package model

import (
	"time"
)

// DiscountType distinguishes flat-amount from percentage coupons
type DiscountType string

const (
	DiscountTypeAmount     DiscountType = "amount"
	DiscountTypePercentage DiscountType = "percentage"
)

// Coupon represents a coupon in the catalog
type Coupon struct {
	Code          string       `bson:"code" json:"code"`
	Name          string       `bson:"name" json:"name"`
	DiscountType  DiscountType `bson:"discount_type" json:"discount_type"`
	DiscountValue int64        `bson:"discount_value" json:"discount_value"` // currency units, or 0-100 for percentage
	CreatedAt     time.Time    `bson:"created_at" json:"created_at"`
}

// CreateCouponRequest represents the admin request to add a coupon
type CreateCouponRequest struct {
	Code          string       `json:"code" validate:"required,coupon_code"`
	Name          string       `json:"name" validate:"required,max=100"`
	DiscountType  DiscountType `json:"discount_type" validate:"required,oneof=amount percentage"`
	DiscountValue int64        `json:"discount_value" validate:"gte=0"`
}

// ApplyCouponRequest selects a coupon for a cart. An empty code clears the selection.
type ApplyCouponRequest struct {
	Code string `json:"code"`
}

// CouponResponse is a coupon decorated for display
type CouponResponse struct {
	Coupon
	Label string `json:"label"`
}

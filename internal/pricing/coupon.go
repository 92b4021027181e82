package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

// DefaultPercentageCouponMinTotal is the default selection gate for percentage coupons.
const DefaultPercentageCouponMinTotal int64 = 10000

// ApplyCoupon returns amount after the coupon. A nil coupon leaves it unchanged.
// The result is never negative.
func ApplyCoupon(amount int64, coupon *model.Coupon) int64 {
	if coupon == nil {
		return amount
	}

	var result int64
	switch coupon.DiscountType {
	case model.DiscountTypeAmount:
		result = amount - coupon.DiscountValue
	case model.DiscountTypePercentage:
		factor := one.Sub(decimal.NewFromInt(coupon.DiscountValue).Div(oneHundred))
		result = roundHalfUp(decimal.NewFromInt(amount).Mul(factor))
	default:
		return amount
	}

	if result < 0 {
		return 0
	}
	return result
}

func CouponDiscountAmount(amount int64, coupon *model.Coupon) int64 {
	return amount - ApplyCoupon(amount, coupon)
}

// CanApplyCoupon is the selection-time gate: a percentage coupon needs the
// pre-coupon total to reach minTotal. ApplyCoupon itself never checks this.
func CanApplyCoupon(preCouponTotal int64, coupon *model.Coupon, minTotal int64) bool {
	if coupon == nil {
		return true
	}
	if coupon.DiscountType == model.DiscountTypePercentage && preCouponTotal < minTotal {
		return false
	}
	return true
}

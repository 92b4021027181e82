// Package pricing holds the pure pricing rules of the storefront: quantity
// tier discounts, the cart-wide bulk bonus, coupons and cart totals. Every
// function works on values it is given and returns new values; nothing here
// touches storage or shared state.
package pricing

import (
	"github.com/shopspring/decimal"

	"storefront/internal/model"
)

// BulkPurchaseQuantity is the line quantity that unlocks the bulk bonus for the whole cart.
const BulkPurchaseQuantity = 10

var (
	bulkBonus  = decimal.RequireFromString("0.05")
	maxRate    = decimal.RequireFromString("0.5")
	half       = decimal.RequireFromString("0.5")
	one        = decimal.NewFromInt(1)
	oneHundred = decimal.NewFromInt(100)
)

// HasBulkPurchase reports whether any line in the cart has at least BulkPurchaseQuantity units.
func HasBulkPurchase(cart []model.CartItem) bool {
	for _, item := range cart {
		if item.Quantity >= BulkPurchaseQuantity {
			return true
		}
	}
	return false
}

// MaxDiscountRate returns the best rate among tiers regardless of threshold.
// Used for catalog badges ("up to N% off").
func MaxDiscountRate(tiers []model.Discount) decimal.Decimal {
	best := decimal.Zero
	for _, tier := range tiers {
		if rate := decimal.NewFromFloat(tier.Rate); rate.GreaterThan(best) {
			best = rate
		}
	}
	return best
}

func MaxDiscountPercent(tiers []model.Discount) int64 {
	return roundHalfUp(MaxDiscountRate(tiers).Mul(oneHundred))
}

// MaxApplicableDiscount returns the discount rate for one cart line.
//
// The base rate is the highest rate among the product's tiers whose threshold
// the line quantity meets. When cart is non-nil and any of its lines (the
// priced line included) reaches BulkPurchaseQuantity, 0.05 is added. The
// result is capped at 0.5. Pass a nil cart to price a line without the bulk bonus.
func MaxApplicableDiscount(item model.CartItem, cart []model.CartItem) decimal.Decimal {
	base := decimal.Zero
	for _, tier := range item.Product.Discounts {
		if item.Quantity < tier.Quantity {
			continue
		}
		if rate := decimal.NewFromFloat(tier.Rate); rate.GreaterThan(base) {
			base = rate
		}
	}

	if cart != nil && HasBulkPurchase(cart) {
		base = base.Add(bulkBonus)
	}

	return decimal.Min(base, maxRate)
}

// DiscountedLineTotal is price × quantity × (1 − rate), rounded half-up once.
func DiscountedLineTotal(item model.CartItem, cart []model.CartItem) int64 {
	rate := MaxApplicableDiscount(item, cart)
	return roundHalfUp(lineGross(item).Mul(one.Sub(rate)))
}

// AppliedDiscountPercent is the effective discount of a line in whole percent.
// It is derived from the rounded line total, so it can differ from the rate by rounding.
func AppliedDiscountPercent(item model.CartItem, cart []model.CartItem) int64 {
	gross := lineGross(item)
	if gross.IsZero() {
		return 0
	}
	discounted := decimal.NewFromInt(DiscountedLineTotal(item, cart))
	return roundHalfUp(one.Sub(discounted.Div(gross)).Mul(oneHundred))
}

func lineGross(item model.CartItem) decimal.Decimal {
	return decimal.NewFromInt(item.Product.Price).Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// roundHalfUp rounds toward +Inf on a tie, the same as floor(x + 0.5).
func roundHalfUp(d decimal.Decimal) int64 {
	return d.Add(half).Floor().IntPart()
}

package pricing

import (
	"storefront/internal/model"
)

// CalculateCartTotal recomputes the cart totals from scratch. Line discounts
// are evaluated against the whole cart, so the bulk bonus applies to every
// line once any line qualifies; the coupon applies to the discounted sum.
func CalculateCartTotal(cart []model.CartItem, coupon *model.Coupon) model.CartTotal {
	var before, after int64
	for _, item := range cart {
		before += item.Product.Price * int64(item.Quantity)
		after += DiscountedLineTotal(item, cart)
	}

	after = ApplyCoupon(after, coupon)

	return model.CartTotal{
		TotalBeforeDiscount: before,
		TotalAfterDiscount:  after,
		TotalDiscount:       before - after,
	}
}

// PreCouponTotal is the cart total after line discounts, before any coupon.
func PreCouponTotal(cart []model.CartItem) int64 {
	return CalculateCartTotal(cart, nil).TotalAfterDiscount
}

// ItemTotal is the discounted total of one line priced against the whole cart.
func ItemTotal(item model.CartItem, cart []model.CartItem) int64 {
	return DiscountedLineTotal(item, cart)
}

// ItemCount is the number of units across all lines.
func ItemCount(cart []model.CartItem) int {
	count := 0
	for _, item := range cart {
		count += item.Quantity
	}
	return count
}

// AddItem returns a new cart with one more unit of product. Stock is not
// checked here; callers gate on RemainingStock first.
func AddItem(cart []model.CartItem, product model.Product) []model.CartItem {
	next := make([]model.CartItem, 0, len(cart)+1)
	found := false
	for _, item := range cart {
		if item.Product.ID == product.ID {
			item.Quantity++
			found = true
		}
		next = append(next, item)
	}
	if !found {
		next = append(next, model.CartItem{Product: product, Quantity: 1})
	}
	return next
}

// RemoveItem returns a new cart without the line for productID.
func RemoveItem(cart []model.CartItem, productID string) []model.CartItem {
	next := make([]model.CartItem, 0, len(cart))
	for _, item := range cart {
		if item.Product.ID != productID {
			next = append(next, item)
		}
	}
	return next
}

// SetQuantity returns a new cart with the line's quantity replaced. A
// quantity of zero or less removes the line. Unknown ids leave the cart as is.
func SetQuantity(cart []model.CartItem, productID string, quantity int) []model.CartItem {
	if quantity <= 0 {
		return RemoveItem(cart, productID)
	}
	next := make([]model.CartItem, len(cart))
	for i, item := range cart {
		if item.Product.ID == productID {
			item.Quantity = quantity
		}
		next[i] = item
	}
	return next
}

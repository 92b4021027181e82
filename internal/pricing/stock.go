package pricing

import (
	"cmp"
	"slices"

	"storefront/internal/model"
)

// RemainingStock is the product's stock minus what the cart already holds.
// It goes negative only if the cart and catalog disagree.
func RemainingStock(product model.Product, cart []model.CartItem) int {
	return product.Stock - QuantityInCart(product.ID, cart)
}

func IsOutOfStock(product model.Product, cart []model.CartItem) bool {
	return RemainingStock(product, cart) <= 0
}

func QuantityInCart(productID string, cart []model.CartItem) int {
	for _, item := range cart {
		if item.Product.ID == productID {
			return item.Quantity
		}
	}
	return 0
}

// SortByStock returns a copy ordered by stock, largest first. Ties keep their order.
func SortByStock(products []model.Product) []model.Product {
	sorted := slices.Clone(products)
	slices.SortStableFunc(sorted, func(a, b model.Product) int {
		return cmp.Compare(b.Stock, a.Stock)
	})
	return sorted
}

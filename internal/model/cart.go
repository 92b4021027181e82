package model

import "time"

// CartItem is one product/quantity line of a resolved cart.
type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// CartTotal is always recomputed from the cart and selected coupon; it is never stored.
type CartTotal struct {
	TotalBeforeDiscount int64 `bson:"total_before_discount" json:"total_before_discount"`
	TotalAfterDiscount  int64 `bson:"total_after_discount" json:"total_after_discount"`
	TotalDiscount       int64 `bson:"total_discount" json:"total_discount"`
}

// CartLine is the persisted form of a cart line
type CartLine struct {
	ProductID string `bson:"product_id" json:"product_id"`
	Quantity  int    `bson:"quantity" json:"quantity"`
}

// CartSession is the persisted snapshot of one shopper's cart and coupon selection
type CartSession struct {
	ID             string     `bson:"_id" json:"id"`
	Lines          []CartLine `bson:"lines" json:"lines"`
	SelectedCoupon string     `bson:"selected_coupon,omitempty" json:"selected_coupon,omitempty"`
	UpdatedAt      time.Time  `bson:"updated_at" json:"updated_at"`
}

// AddToCartRequest represents the request to add one unit of a product
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required"`
}

// UpdateQuantityRequest sets a line's quantity; zero or less removes the line
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

// CartLineView is a resolved cart line with its computed pricing
type CartLineView struct {
	Product         Product `json:"product"`
	Quantity        int     `json:"quantity"`
	LineTotal       int64   `json:"line_total"`
	DiscountPercent int64   `json:"discount_percent"`
	RemainingStock  int     `json:"remaining_stock"`
	DisplayTotal    string  `json:"display_total"`
}

// CartView is the response for cart reads and mutations
type CartView struct {
	SessionID      string         `json:"session_id"`
	Items          []CartLineView `json:"items"`
	ItemCount      int            `json:"item_count"`
	SelectedCoupon *Coupon        `json:"selected_coupon"`
	CouponDiscount int64          `json:"coupon_discount"`
	Totals         CartTotal      `json:"totals"`
}

// MutationResult reports a cart mutation that business rules may refuse.
type MutationResult struct {
	Applied bool      `json:"applied"`
	Reason  string    `json:"reason,omitempty"`
	Cart    *CartView `json:"cart"`
}

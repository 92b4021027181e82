package model

import (
	"time"
)

// OrderLine is a priced line frozen at order completion
type OrderLine struct {
	ProductID string `bson:"product_id" json:"product_id"`
	Name      string `bson:"name" json:"name"`
	UnitPrice int64  `bson:"unit_price" json:"unit_price"`
	Quantity  int    `bson:"quantity" json:"quantity"`
	LineTotal int64  `bson:"line_total" json:"line_total"`
}

// Order represents a completed checkout of a cart session
type Order struct {
	ID         string      `bson:"_id" json:"id"`
	Number     string      `bson:"number" json:"number"` // ORD-<unix millis>-<id prefix>
	SessionID  string      `bson:"session_id" json:"session_id"`
	Lines      []OrderLine `bson:"lines" json:"lines"`
	CouponCode string      `bson:"coupon_code,omitempty" json:"coupon_code,omitempty"`
	Totals     CartTotal   `bson:"totals" json:"totals"`
	CreatedAt  time.Time   `bson:"created_at" json:"created_at"`
}

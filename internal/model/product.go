package model

import "time"

// Discount is a quantity tier: lines with at least Quantity units get Rate off.
type Discount struct {
	Quantity int     `bson:"quantity" json:"quantity" validate:"gt=0"`
	Rate     float64 `bson:"rate" json:"rate" validate:"gte=0,lte=1"` // fraction, 0.1 = 10%
}

// Product represents a catalog entry
type Product struct {
	ID            string     `bson:"id" json:"id"`
	Name          string     `bson:"name" json:"name"`
	Description   string     `bson:"description,omitempty" json:"description,omitempty"`
	Price         int64      `bson:"price" json:"price"` // smallest currency unit
	Stock         int        `bson:"stock" json:"stock"`
	Discounts     []Discount `bson:"discounts" json:"discounts"`
	IsRecommended bool       `bson:"is_recommended" json:"is_recommended"`
	CreatedAt     time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at" json:"updated_at"`
}

// CreateProductRequest represents the admin request to add a product
type CreateProductRequest struct {
	Name          string     `json:"name" validate:"required,max=200"`
	Description   string     `json:"description" validate:"max=2000"`
	Price         int64      `json:"price" validate:"gte=0"`
	Stock         int        `json:"stock" validate:"gte=0,lte=9999"`
	Discounts     []Discount `json:"discounts" validate:"dive"`
	IsRecommended bool       `json:"is_recommended"`
}

// UpdateProductRequest is a partial update; nil fields are left untouched.
type UpdateProductRequest struct {
	Name          *string     `json:"name" validate:"omitempty,min=1,max=200"`
	Description   *string     `json:"description" validate:"omitempty,max=2000"`
	Price         *int64      `json:"price" validate:"omitempty,gte=0"`
	Stock         *int        `json:"stock" validate:"omitempty,gte=0,lte=9999"`
	Discounts     *[]Discount `json:"discounts" validate:"omitempty,dive"`
	IsRecommended *bool       `json:"is_recommended"`
}

// Apply returns a copy of p with the non-nil fields of req applied.
func (req *UpdateProductRequest) Apply(p Product) Product {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.Discounts != nil {
		p.Discounts = append([]Discount(nil), (*req.Discounts)...)
	}
	if req.IsRecommended != nil {
		p.IsRecommended = *req.IsRecommended
	}
	return p
}

// ProductResponse is a catalog entry decorated for display
type ProductResponse struct {
	Product
	DisplayPrice       string   `json:"display_price"`
	MaxDiscountPercent int64    `json:"max_discount_percent"`
	DiscountLabels     []string `json:"discount_labels"`
	RemainingStock     *int     `json:"remaining_stock,omitempty"`
	SoldOut            bool     `json:"sold_out"`
}

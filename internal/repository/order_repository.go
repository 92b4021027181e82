package repository

import (
	"context"
	"storefront/internal/model"
)

// OrderRepository defines the interface for completed order records
type OrderRepository interface {
	// CreateOrder records a completed order
	CreateOrder(ctx context.Context, order *model.Order) error

	// GetOrdersBySession retrieves all orders placed from a cart session, newest first
	GetOrdersBySession(ctx context.Context, sessionID string) ([]*model.Order, error)
}

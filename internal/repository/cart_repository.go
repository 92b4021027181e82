package repository

import (
	"context"
	"storefront/internal/model"
)

// CartRepository stores one snapshot per cart session
type CartRepository interface {
	// GetCart returns the session snapshot, or an empty session if none is stored
	GetCart(ctx context.Context, sessionID string) (*model.CartSession, error)

	// SaveCart replaces the stored snapshot
	SaveCart(ctx context.Context, cart *model.CartSession) error

	// DeleteCart drops the snapshot; deleting a missing session is not an error
	DeleteCart(ctx context.Context, sessionID string) error

	// ClearCouponSelection unselects code in every session that selected it
	// and returns how many sessions changed
	ClearCouponSelection(ctx context.Context, code string) (int64, error)
}

func emptySession(sessionID string) *model.CartSession {
	return &model.CartSession{ID: sessionID, Lines: []model.CartLine{}}
}

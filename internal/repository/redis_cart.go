package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"storefront/internal/model"
	redispkg "storefront/pkg/redis"
	"time"

	"github.com/redis/go-redis/v9"
)

const cartScope = "cart"

// redisCartRepository stores each session as a JSON snapshot with a sliding TTL
type redisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCartRepository creates a Redis-backed cart repository. A zero ttl keeps carts forever.
func NewRedisCartRepository(client *redis.Client, ttl time.Duration) CartRepository {
	return &redisCartRepository{client: client, ttl: ttl}
}

func (r *redisCartRepository) GetCart(ctx context.Context, sessionID string) (*model.CartSession, error) {
	raw, err := r.client.Get(ctx, redispkg.Key(cartScope, sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return emptySession(sessionID), nil
		}
		return nil, fmt.Errorf("get cart %s: %w", sessionID, err)
	}
	return decodeCart(sessionID, raw)
}

func (r *redisCartRepository) SaveCart(ctx context.Context, cart *model.CartSession) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart %s: %w", cart.ID, err)
	}
	if err := r.client.Set(ctx, redispkg.Key(cartScope, cart.ID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("save cart %s: %w", cart.ID, err)
	}
	return nil
}

func (r *redisCartRepository) DeleteCart(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, redispkg.Key(cartScope, sessionID)).Err()
}

// ClearCouponSelection scans every cart key and rewrites the ones holding code.
// Each rewrite is guarded by WATCH so a concurrent save is never clobbered.
func (r *redisCartRepository) ClearCouponSelection(ctx context.Context, code string) (int64, error) {
	var cleared int64
	iter := r.client.Scan(ctx, 0, redispkg.Key(cartScope, "*"), 100).Iterator()
	for iter.Next(ctx) {
		changed, err := r.clearKey(ctx, iter.Val(), code)
		if err != nil {
			return cleared, err
		}
		if changed {
			cleared++
		}
	}
	if err := iter.Err(); err != nil {
		return cleared, fmt.Errorf("scan carts: %w", err)
	}
	return cleared, nil
}

func (r *redisCartRepository) clearKey(ctx context.Context, key, code string) (bool, error) {
	changed := false
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		cart, err := decodeCart("", raw)
		if err != nil {
			return err
		}
		if cart.SelectedCoupon != code {
			return nil
		}
		cart.SelectedCoupon = ""
		cart.UpdatedAt = time.Now().UTC()
		updated, err := json.Marshal(cart)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		if err == nil {
			changed = true
		}
		return err
	}

	for attempt := 0; attempt < 3; attempt++ {
		err := r.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return false, fmt.Errorf("clear coupon on %s: %w", key, err)
		}
		return changed, nil
	}
	return false, fmt.Errorf("clear coupon on %s: too much contention", key)
}

func decodeCart(sessionID string, raw []byte) (*model.CartSession, error) {
	var cart model.CartSession
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	if cart.ID == "" {
		cart.ID = sessionID
	}
	if cart.Lines == nil {
		cart.Lines = []model.CartLine{}
	}
	return &cart, nil
}

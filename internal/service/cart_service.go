package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/metrics"
	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	pkgerrors "storefront/pkg/errors"
	"storefront/pkg/logger"
)

type txRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CartServiceParams wires a CartService.
type CartServiceParams struct {
	Carts    repository.CartRepository
	Products repository.ProductRepository
	Coupons  repository.CouponRepository
	Orders   repository.OrderRepository
	Tx       txRunner
	Queue    *Serializer
	Metrics  *metrics.StorefrontMetrics
	Logger   *logger.Logger

	// PercentageCouponMinTotal gates percentage coupons on the pre-coupon total.
	PercentageCouponMinTotal int64
}

// CartService runs every cart operation for a session on that session's queue.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	coupons  repository.CouponRepository
	orders   repository.OrderRepository
	tx       txRunner
	queue    *Serializer
	metrics  *metrics.StorefrontMetrics
	log      *logger.Logger
	minTotal int64
	now      func() time.Time
}

// NewCartService creates a new cart service
func NewCartService(p CartServiceParams) (*CartService, error) {
	if p.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if p.Products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if p.Coupons == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	if p.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if p.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if p.Queue == nil {
		return nil, fmt.Errorf("serializer required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.PercentageCouponMinTotal < 0 {
		return nil, fmt.Errorf("percentage coupon threshold must not be negative")
	}
	return &CartService{
		carts:    p.Carts,
		products: p.Products,
		coupons:  p.Coupons,
		orders:   p.Orders,
		tx:       p.Tx,
		queue:    p.Queue,
		metrics:  p.Metrics,
		log:      p.Logger,
		minTotal: p.PercentageCouponMinTotal,
		now:      time.Now,
	}, nil
}

// cartState is a session resolved against the catalogs.
type cartState struct {
	session *model.CartSession
	items   []model.CartItem
	coupon  *model.Coupon
	// stale is set when lines or the coupon selection pointed at deleted catalog entries.
	stale bool
}

func (s *CartService) load(ctx context.Context, sessionID string) (*cartState, error) {
	session, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	ids := make([]string, 0, len(session.Lines))
	for _, line := range session.Lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.products.GetProductsByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart products")
	}

	state := &cartState{session: session, items: make([]model.CartItem, 0, len(session.Lines))}
	for _, line := range session.Lines {
		product, ok := products[line.ProductID]
		if !ok || line.Quantity <= 0 {
			state.stale = true
			continue
		}
		state.items = append(state.items, model.CartItem{Product: product, Quantity: line.Quantity})
	}

	if session.SelectedCoupon != "" {
		coupon, err := s.coupons.GetCouponByCode(ctx, session.SelectedCoupon)
		switch {
		case err == nil:
			state.coupon = coupon
		case pkgerrors.Is(err, pkgerrors.ErrCouponNotFound):
			state.stale = true
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load selected coupon")
		}
	}

	if state.stale {
		s.log.Warn(s.log.WithSessionID(ctx, sessionID), "cart references deleted catalog entries")
	}
	return state, nil
}

func (s *CartService) save(ctx context.Context, state *cartState) error {
	lines := make([]model.CartLine, 0, len(state.items))
	for _, item := range state.items {
		lines = append(lines, model.CartLine{ProductID: item.Product.ID, Quantity: item.Quantity})
	}
	session := &model.CartSession{
		ID:        state.session.ID,
		Lines:     lines,
		UpdatedAt: s.now().UTC(),
	}
	if state.coupon != nil {
		session.SelectedCoupon = state.coupon.Code
	}
	if err := s.carts.SaveCart(ctx, session); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save cart")
	}
	return nil
}

func (s *CartService) view(state *cartState) *model.CartView {
	lines := make([]model.CartLineView, 0, len(state.items))
	for _, item := range state.items {
		total := pricing.ItemTotal(item, state.items)
		lines = append(lines, model.CartLineView{
			Product:         item.Product,
			Quantity:        item.Quantity,
			LineTotal:       total,
			DiscountPercent: pricing.AppliedDiscountPercent(item, state.items),
			RemainingStock:  pricing.RemainingStock(item.Product, state.items),
			DisplayTotal:    pricing.FormatPrice(total),
		})
	}
	return &model.CartView{
		SessionID:      state.session.ID,
		Items:          lines,
		ItemCount:      pricing.ItemCount(state.items),
		SelectedCoupon: state.coupon,
		CouponDiscount: pricing.CouponDiscountAmount(pricing.PreCouponTotal(state.items), state.coupon),
		Totals:         pricing.CalculateCartTotal(state.items, state.coupon),
	}
}

// mutate runs fn on the session's queue with the freshly loaded cart.
func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(ctx context.Context, state *cartState) error) error {
	if strings.TrimSpace(sessionID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	ctx = s.log.WithSessionID(ctx, sessionID)
	return s.queue.Do(ctx, sessionID, func(ctx context.Context) error {
		state, err := s.load(ctx, sessionID)
		if err != nil {
			return err
		}
		return fn(ctx, state)
	})
}

// GetCart returns the session's cart with its lines priced against the current catalog.
func (s *CartService) GetCart(ctx context.Context, sessionID string) (*model.CartView, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	state, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(state), nil
}

// AddToCart adds one unit of productID. It reports false, leaving the cart
// untouched, when the cart already holds all of the product's stock.
func (s *CartService) AddToCart(ctx context.Context, sessionID, productID string) (bool, error) {
	applied := false
	err := s.mutate(ctx, sessionID, func(ctx context.Context, state *cartState) error {
		product, err := s.products.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if pricing.IsOutOfStock(*product, state.items) {
			return nil
		}
		state.items = pricing.AddItem(state.items, *product)
		if err := s.save(ctx, state); err != nil {
			return err
		}
		applied = true
		return nil
	})
	s.recordMutation("add", applied, err)
	return applied, err
}

// RemoveFromCart drops the line for productID. Removing an absent line is a no-op.
func (s *CartService) RemoveFromCart(ctx context.Context, sessionID, productID string) error {
	err := s.mutate(ctx, sessionID, func(ctx context.Context, state *cartState) error {
		state.items = pricing.RemoveItem(state.items, productID)
		return s.save(ctx, state)
	})
	s.recordMutation("remove", true, err)
	return err
}

// UpdateQuantity sets the line's quantity. Zero or less removes the line.
// A quantity above the product's stock is refused with false.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, productID string, quantity int) (bool, error) {
	applied := false
	err := s.mutate(ctx, sessionID, func(ctx context.Context, state *cartState) error {
		if quantity <= 0 {
			state.items = pricing.RemoveItem(state.items, productID)
			if err := s.save(ctx, state); err != nil {
				return err
			}
			applied = true
			return nil
		}

		product, err := s.products.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if pricing.QuantityInCart(productID, state.items) == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart")
		}
		if quantity > product.Stock {
			return nil
		}
		state.items = pricing.SetQuantity(state.items, productID, quantity)
		if err := s.save(ctx, state); err != nil {
			return err
		}
		applied = true
		return nil
	})
	s.recordMutation("update_quantity", applied, err)
	return applied, err
}

// ApplyCoupon selects code for the session. An empty code clears the
// selection. A percentage coupon is refused with false while the cart's
// pre-coupon total is below the configured minimum.
func (s *CartService) ApplyCoupon(ctx context.Context, sessionID, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		if err := s.RemoveCoupon(ctx, sessionID); err != nil {
			return false, err
		}
		return true, nil
	}

	applied := false
	discountType := ""
	err := s.mutate(ctx, sessionID, func(ctx context.Context, state *cartState) error {
		coupon, err := s.coupons.GetCouponByCode(ctx, code)
		if err != nil {
			return err
		}
		discountType = string(coupon.DiscountType)
		if !pricing.CanApplyCoupon(pricing.PreCouponTotal(state.items), coupon, s.minTotal) {
			return nil
		}
		state.coupon = coupon
		if err := s.save(ctx, state); err != nil {
			return err
		}
		applied = true
		return nil
	})
	s.metrics.IncCouponApplication(discountType, outcome(applied, err))
	return applied, err
}

// RemoveCoupon clears the session's coupon selection.
func (s *CartService) RemoveCoupon(ctx context.Context, sessionID string) error {
	err := s.mutate(ctx, sessionID, func(ctx context.Context, state *cartState) error {
		state.coupon = nil
		return s.save(ctx, state)
	})
	s.recordMutation("remove_coupon", true, err)
	return err
}

// CompleteOrder empties the cart and its coupon selection, then records the
// priced cart as an order. If the order cannot be stored the cart is put
// back, so a retry never produces a second order. An empty cart is refused
// with ErrCartEmpty.
func (s *CartService) CompleteOrder(ctx context.Context, sessionID string) (*model.Order, error) {
	var order *model.Order
	err := s.mutate(ctx, sessionID, func(ctx context.Context, state *cartState) error {
		if len(state.items) == 0 {
			return pkgerrors.ErrCartEmpty
		}

		order = s.newOrder(state)
		return s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.carts.DeleteCart(ctx, state.session.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
			}
			if err := s.orders.CreateOrder(ctx, order); err != nil {
				if restoreErr := s.save(ctx, state); restoreErr != nil {
					s.log.Error(ctx, "restore cart after failed checkout", restoreErr)
				}
				return err
			}
			return nil
		})
	})
	if err != nil {
		s.recordMutation("checkout", false, err)
		return nil, err
	}

	s.recordMutation("checkout", true, nil)
	s.metrics.ObserveOrder(order.Totals.TotalAfterDiscount)
	s.log.Info(s.log.WithFields(ctx, map[string]any{
		"session_id":   sessionID,
		"order_number": order.Number,
		"total":        order.Totals.TotalAfterDiscount,
	}), "order completed")
	return order, nil
}

// ListOrders returns the session's completed orders, newest first.
func (s *CartService) ListOrders(ctx context.Context, sessionID string) ([]*model.Order, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	orders, err := s.orders.GetOrdersBySession(ctx, sessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	if orders == nil {
		orders = []*model.Order{}
	}
	return orders, nil
}

func (s *CartService) newOrder(state *cartState) *model.Order {
	now := s.now().UTC()
	id := uuid.NewString()

	lines := make([]model.OrderLine, 0, len(state.items))
	for _, item := range state.items {
		lines = append(lines, model.OrderLine{
			ProductID: item.Product.ID,
			Name:      item.Product.Name,
			UnitPrice: item.Product.Price,
			Quantity:  item.Quantity,
			LineTotal: pricing.ItemTotal(item, state.items),
		})
	}

	order := &model.Order{
		ID:        id,
		Number:    fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), id[:6]),
		SessionID: state.session.ID,
		Lines:     lines,
		Totals:    pricing.CalculateCartTotal(state.items, state.coupon),
		CreatedAt: now,
	}
	if state.coupon != nil {
		order.CouponCode = state.coupon.Code
	}
	return order
}

func (s *CartService) recordMutation(operation string, applied bool, err error) {
	s.metrics.IncCartMutation(operation, outcome(applied, err))
}

func outcome(applied bool, err error) string {
	switch {
	case err != nil:
		return metrics.OutcomeError
	case applied:
		return metrics.OutcomeApplied
	default:
		return metrics.OutcomeRejected
	}
}

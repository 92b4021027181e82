package repository

import (
	"context"
	"slices"
	"storefront/internal/model"
	pkgerrors "storefront/pkg/errors"
	"sync"
	"time"
)

// The in-memory repositories are the default driver and the fakes used in
// tests. Every read and write copies, so callers never share state with the store.

type memoryProductRepository struct {
	mu       sync.RWMutex
	order    []string
	products map[string]model.Product
}

func NewMemoryProductRepository() ProductRepository {
	return &memoryProductRepository{products: make(map[string]model.Product)}
}

func cloneProduct(p model.Product) model.Product {
	p.Discounts = slices.Clone(p.Discounts)
	return p
}

func (r *memoryProductRepository) ListProducts(ctx context.Context) ([]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]model.Product, 0, len(r.order))
	for _, id := range r.order {
		products = append(products, cloneProduct(r.products[id]))
	}
	return products, nil
}

func (r *memoryProductRepository) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, pkgerrors.ErrProductNotFound
	}
	p = cloneProduct(p)
	return &p, nil
}

func (r *memoryProductRepository) GetProductsByIDs(ctx context.Context, ids []string) (map[string]model.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	found := make(map[string]model.Product, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			found[id] = cloneProduct(p)
		}
	}
	return found, nil
}

func (r *memoryProductRepository) CreateProduct(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "product already exists")
	}
	r.products[product.ID] = cloneProduct(*product)
	r.order = append(r.order, product.ID)
	return nil
}

func (r *memoryProductRepository) UpdateProduct(ctx context.Context, product *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return pkgerrors.ErrProductNotFound
	}
	r.products[product.ID] = cloneProduct(*product)
	return nil
}

func (r *memoryProductRepository) DeleteProduct(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return pkgerrors.ErrProductNotFound
	}
	delete(r.products, id)
	r.order = slices.DeleteFunc(r.order, func(existing string) bool { return existing == id })
	return nil
}

type memoryCouponRepository struct {
	mu      sync.RWMutex
	coupons []model.Coupon
}

func NewMemoryCouponRepository() CouponRepository {
	return &memoryCouponRepository{}
}

func (r *memoryCouponRepository) ListCoupons(ctx context.Context) ([]model.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Clone(r.coupons), nil
}

func (r *memoryCouponRepository) GetCouponByCode(ctx context.Context, code string) (*model.Coupon, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.coupons {
		if c.Code == code {
			return &c, nil
		}
	}
	return nil, pkgerrors.ErrCouponNotFound
}

func (r *memoryCouponRepository) CreateCoupon(ctx context.Context, coupon *model.Coupon) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.coupons {
		if c.Code == coupon.Code {
			return pkgerrors.ErrCouponAlreadyExists
		}
	}
	r.coupons = append(r.coupons, *coupon)
	return nil
}

func (r *memoryCouponRepository) DeleteCoupon(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	before := len(r.coupons)
	r.coupons = slices.DeleteFunc(r.coupons, func(c model.Coupon) bool { return c.Code == code })
	if len(r.coupons) == before {
		return pkgerrors.ErrCouponNotFound
	}
	return nil
}

type memoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string]model.CartSession
}

func NewMemoryCartRepository() CartRepository {
	return &memoryCartRepository{carts: make(map[string]model.CartSession)}
}

func cloneSession(s model.CartSession) *model.CartSession {
	s.Lines = slices.Clone(s.Lines)
	if s.Lines == nil {
		s.Lines = []model.CartLine{}
	}
	return &s
}

func (r *memoryCartRepository) GetCart(ctx context.Context, sessionID string) (*model.CartSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.carts[sessionID]
	if !ok {
		return emptySession(sessionID), nil
	}
	return cloneSession(s), nil
}

func (r *memoryCartRepository) SaveCart(ctx context.Context, cart *model.CartSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[cart.ID] = *cloneSession(*cart)
	return nil
}

func (r *memoryCartRepository) DeleteCart(ctx context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.carts, sessionID)
	return nil
}

func (r *memoryCartRepository) ClearCouponSelection(ctx context.Context, code string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var cleared int64
	now := time.Now().UTC()
	for id, s := range r.carts {
		if s.SelectedCoupon != code {
			continue
		}
		s.SelectedCoupon = ""
		s.UpdatedAt = now
		r.carts[id] = s
		cleared++
	}
	return cleared, nil
}

type memoryOrderRepository struct {
	mu     sync.RWMutex
	orders []model.Order
}

func NewMemoryOrderRepository() OrderRepository {
	return &memoryOrderRepository{}
}

func (r *memoryOrderRepository) CreateOrder(ctx context.Context, order *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range r.orders {
		if o.Number == order.Number {
			return pkgerrors.New(pkgerrors.CodeConflict, "order number already used")
		}
	}
	o := *order
	o.Lines = slices.Clone(order.Lines)
	r.orders = append(r.orders, o)
	return nil
}

func (r *memoryOrderRepository) GetOrdersBySession(ctx context.Context, sessionID string) ([]*model.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []*model.Order
	for i := len(r.orders) - 1; i >= 0; i-- {
		if r.orders[i].SessionID != sessionID {
			continue
		}
		o := r.orders[i]
		o.Lines = slices.Clone(o.Lines)
		orders = append(orders, &o)
	}
	return orders, nil
}

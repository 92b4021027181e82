package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/model"
	"storefront/internal/pricing"
	"storefront/internal/repository"
	pkgerrors "storefront/pkg/errors"
)

type countingTx struct {
	calls atomic.Int32
}

func (c *countingTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	c.calls.Add(1)
	return fn(ctx)
}

type testStore struct {
	products repository.ProductRepository
	coupons  repository.CouponRepository
	carts    repository.CartRepository
	orders   repository.OrderRepository
	tx       *countingTx
	cart     *CartService
	coupon   *CouponService
}

func newTestStore(t *testing.T, products ...model.Product) *testStore {
	t.Helper()

	st := &testStore{
		products: repository.NewMemoryProductRepository(),
		coupons:  repository.NewMemoryCouponRepository(),
		carts:    repository.NewMemoryCartRepository(),
		orders:   repository.NewMemoryOrderRepository(),
		tx:       &countingTx{},
	}
	ctx := context.Background()
	for _, p := range products {
		require.NoError(t, st.products.CreateProduct(ctx, &p))
	}
	for _, c := range DefaultCoupons(time.Now()) {
		require.NoError(t, st.coupons.CreateCoupon(ctx, &c))
	}

	queue := NewSerializer(nil)
	cart, err := NewCartService(CartServiceParams{
		Carts:                    st.carts,
		Products:                 st.products,
		Coupons:                  st.coupons,
		Orders:                   st.orders,
		Tx:                       st.tx,
		Queue:                    queue,
		PercentageCouponMinTotal: pricing.DefaultPercentageCouponMinTotal,
	})
	require.NoError(t, err)
	coupon, err := NewCouponService(st.coupons, st.carts, st.tx, queue, nil, nil)
	require.NoError(t, err)

	st.cart = cart
	st.coupon = coupon
	return st
}

func testProduct(id string, price int64, stock int, tiers ...model.Discount) model.Product {
	return model.Product{ID: id, Name: "Product " + id, Price: price, Stock: stock, Discounts: tiers}
}

func TestNewCartServiceRequiresDependencies(t *testing.T) {
	_, err := NewCartService(CartServiceParams{})
	require.Error(t, err)

	_, err = NewCartService(CartServiceParams{
		Carts:                    repository.NewMemoryCartRepository(),
		Products:                 repository.NewMemoryProductRepository(),
		Coupons:                  repository.NewMemoryCouponRepository(),
		Orders:                   repository.NewMemoryOrderRepository(),
		Tx:                       &countingTx{},
		Queue:                    NewSerializer(nil),
		PercentageCouponMinTotal: -1,
	})
	require.Error(t, err)
}

func TestAddToCartStopsAtStock(t *testing.T) {
	st := newTestStore(t, testProduct("p1", 10000, 2))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		applied, err := st.cart.AddToCart(ctx, "s1", "p1")
		require.NoError(t, err)
		assert.True(t, applied)
	}

	applied, err := st.cart.AddToCart(ctx, "s1", "p1")
	require.NoError(t, err)
	assert.False(t, applied)

	view, err := st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	assert.Equal(t, 0, view.Items[0].RemainingStock)
	assert.Equal(t, 2, view.ItemCount)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	st := newTestStore(t)

	applied, err := st.cart.AddToCart(context.Background(), "s1", "missing")
	assert.False(t, applied)
	assert.ErrorIs(t, err, pkgerrors.ErrProductNotFound)
}

func TestCartRequiresSessionID(t *testing.T) {
	st := newTestStore(t, testProduct("p1", 10000, 2))

	_, err := st.cart.AddToCart(context.Background(), " ", "p1")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = st.cart.GetCart(context.Background(), "")
	require.Error(t, err)
}

func TestUpdateQuantity(t *testing.T) {
	st := newTestStore(t, testProduct("p1", 10000, 5), testProduct("p2", 1000, 5))
	ctx := context.Background()

	_, err := st.cart.AddToCart(ctx, "s1", "p1")
	require.NoError(t, err)

	applied, err := st.cart.UpdateQuantity(ctx, "s1", "p1", 5)
	require.NoError(t, err)
	assert.True(t, applied)

	applied, err = st.cart.UpdateQuantity(ctx, "s1", "p1", 6)
	require.NoError(t, err)
	assert.False(t, applied)

	view, err := st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 5, view.Items[0].Quantity)

	_, err = st.cart.UpdateQuantity(ctx, "s1", "p2", 2)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = st.cart.UpdateQuantity(ctx, "s1", "missing", 2)
	assert.ErrorIs(t, err, pkgerrors.ErrProductNotFound)

	applied, err = st.cart.UpdateQuantity(ctx, "s1", "p1", 0)
	require.NoError(t, err)
	assert.True(t, applied)

	view, err = st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestRemoveFromCart(t *testing.T) {
	st := newTestStore(t, testProduct("p1", 10000, 5), testProduct("p2", 1000, 5))
	ctx := context.Background()

	_, _ = st.cart.AddToCart(ctx, "s1", "p1")
	_, _ = st.cart.AddToCart(ctx, "s1", "p2")

	require.NoError(t, st.cart.RemoveFromCart(ctx, "s1", "p1"))
	require.NoError(t, st.cart.RemoveFromCart(ctx, "s1", "never-added"))

	view, err := st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "p2", view.Items[0].Product.ID)
}

func TestCartTotalsApplyBulkBonusAcrossLines(t *testing.T) {
	st := newTestStore(t,
		testProduct("p1", 10000, 20, model.Discount{Quantity: 10, Rate: 0.1}),
		testProduct("p2", 20000, 20, model.Discount{Quantity: 10, Rate: 0.15}),
	)
	ctx := context.Background()

	_, _ = st.cart.AddToCart(ctx, "s1", "p1")
	_, _ = st.cart.AddToCart(ctx, "s1", "p2")
	_, err := st.cart.UpdateQuantity(ctx, "s1", "p1", 10)
	require.NoError(t, err)
	_, err = st.cart.UpdateQuantity(ctx, "s1", "p2", 2)
	require.NoError(t, err)

	view, err := st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, view.Items, 2)

	assert.Equal(t, int64(85000), view.Items[0].LineTotal)
	assert.Equal(t, int64(15), view.Items[0].DiscountPercent)
	assert.Equal(t, "₩85,000", view.Items[0].DisplayTotal)
	assert.Equal(t, int64(38000), view.Items[1].LineTotal)
	assert.Equal(t, int64(5), view.Items[1].DiscountPercent)

	assert.Equal(t, model.CartTotal{
		TotalBeforeDiscount: 140000,
		TotalAfterDiscount:  123000,
		TotalDiscount:       17000,
	}, view.Totals)
}

func TestApplyCouponPercentageGate(t *testing.T) {
	st := newTestStore(t, testProduct("p1", 6000, 10))
	ctx := context.Background()

	_, _ = st.cart.AddToCart(ctx, "s1", "p1")

	applied, err := st.cart.ApplyCoupon(ctx, "s1", "PERCENT10")
	require.NoError(t, err)
	assert.False(t, applied)

	view, err := st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, view.SelectedCoupon)
	assert.Equal(t, int64(6000), view.Totals.TotalAfterDiscount)

	// Amount coupons are never gated and clamp at zero.
	applied, err = st.cart.ApplyCoupon(ctx, "s1", "AMOUNT5000")
	require.NoError(t, err)
	assert.True(t, applied)

	view, err = st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), view.Totals.TotalAfterDiscount)
	assert.Equal(t, int64(5000), view.CouponDiscount)

	_, _ = st.cart.AddToCart(ctx, "s1", "p1")

	// 12000 before the coupon: the gate ignores the selected amount coupon.
	applied, err = st.cart.ApplyCoupon(ctx, "s1", "PERCENT10")
	require.NoError(t, err)
	assert.True(t, applied)

	view, err = st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, view.SelectedCoupon)
	assert.Equal(t, "PERCENT10", view.SelectedCoupon.Code)
	assert.Equal(t, int64(10800), view.Totals.TotalAfterDiscount)
}

func TestApplyCouponUnknownAndClear(t *testing.T) {
	st := newTestStore(t, testProduct("p1", 6000, 10))
	ctx := context.Background()

	_, err := st.cart.ApplyCoupon(ctx, "s1", "NOPE")
	assert.ErrorIs(t, err, pkgerrors.ErrCouponNotFound)

	applied, err := st.cart.ApplyCoupon(ctx, "s1", "AMOUNT5000")
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = st.cart.ApplyCoupon(ctx, "s1", "")
	require.NoError(t, err)
	assert.True(t, applied)

	view, err := st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, view.SelectedCoupon)

	_, _ = st.cart.ApplyCoupon(ctx, "s1", "AMOUNT5000")
	require.NoError(t, st.cart.RemoveCoupon(ctx, "s1"))
	view, err = st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, view.SelectedCoupon)
}

func TestDeletedCatalogEntriesDropOutOfCart(t *testing.T) {
	st := newTestStore(t, testProduct("p1", 6000, 10), testProduct("p2", 1000, 10))
	ctx := context.Background()

	_, _ = st.cart.AddToCart(ctx, "s1", "p1")
	_, _ = st.cart.AddToCart(ctx, "s1", "p2")
	_, _ = st.cart.ApplyCoupon(ctx, "s1", "AMOUNT5000")

	require.NoError(t, st.products.DeleteProduct(ctx, "p1"))
	require.NoError(t, st.coupons.DeleteCoupon(ctx, "AMOUNT5000"))

	view, err := st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "p2", view.Items[0].Product.ID)
	assert.Nil(t, view.SelectedCoupon)
	assert.Equal(t, int64(1000), view.Totals.TotalAfterDiscount)

	// The next mutation persists the cleaned snapshot.
	_, err = st.cart.AddToCart(ctx, "s1", "p2")
	require.NoError(t, err)
	session, err := st.carts.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []model.CartLine{{ProductID: "p2", Quantity: 2}}, session.Lines)
	assert.Empty(t, session.SelectedCoupon)
}

func TestCompleteOrder(t *testing.T) {
	st := newTestStore(t, testProduct("p1", 10000, 20, model.Discount{Quantity: 10, Rate: 0.1}))
	ctx := context.Background()

	_, err := st.cart.CompleteOrder(ctx, "s1")
	assert.ErrorIs(t, err, pkgerrors.ErrCartEmpty)

	_, _ = st.cart.AddToCart(ctx, "s1", "p1")
	_, err = st.cart.UpdateQuantity(ctx, "s1", "p1", 10)
	require.NoError(t, err)
	applied, err := st.cart.ApplyCoupon(ctx, "s1", "PERCENT10")
	require.NoError(t, err)
	require.True(t, applied)

	order, err := st.cart.CompleteOrder(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(order.Number, "ORD-"))
	assert.Equal(t, "s1", order.SessionID)
	assert.Equal(t, "PERCENT10", order.CouponCode)
	require.Len(t, order.Lines, 1)
	assert.Equal(t, int64(85000), order.Lines[0].LineTotal)
	assert.Equal(t, int64(100000), order.Totals.TotalBeforeDiscount)
	assert.Equal(t, int64(76500), order.Totals.TotalAfterDiscount)
	assert.Equal(t, int32(1), st.tx.calls.Load())

	view, err := st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Nil(t, view.SelectedCoupon)

	orders, err := st.cart.ListOrders(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.Number, orders[0].Number)

	none, err := st.cart.ListOrders(ctx, "s2")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

type failingOrders struct {
	repository.OrderRepository
	err error
}

func (f failingOrders) CreateOrder(ctx context.Context, order *model.Order) error {
	return f.err
}

func TestCompleteOrderKeepsCartWhenOrderInsertFails(t *testing.T) {
	st := newTestStore(t, testProduct("p1", 10000, 20))
	ctx := context.Background()

	_, err := st.cart.AddToCart(ctx, "s1", "p1")
	require.NoError(t, err)
	applied, err := st.cart.ApplyCoupon(ctx, "s1", "AMOUNT5000")
	require.NoError(t, err)
	require.True(t, applied)

	insertErr := pkgerrors.New(pkgerrors.CodeDependency, "orders unavailable")
	broken, err := NewCartService(CartServiceParams{
		Carts:                    st.carts,
		Products:                 st.products,
		Coupons:                  st.coupons,
		Orders:                   failingOrders{OrderRepository: st.orders, err: insertErr},
		Tx:                       st.tx,
		Queue:                    NewSerializer(nil),
		PercentageCouponMinTotal: pricing.DefaultPercentageCouponMinTotal,
	})
	require.NoError(t, err)

	_, err = broken.CompleteOrder(ctx, "s1")
	require.ErrorIs(t, err, insertErr)

	view, err := st.cart.GetCart(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 1, view.Items[0].Quantity)
	require.NotNil(t, view.SelectedCoupon)
	assert.Equal(t, "AMOUNT5000", view.SelectedCoupon.Code)

	order, err := st.cart.CompleteOrder(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), order.Totals.TotalAfterDiscount)

	orders, err := st.cart.ListOrders(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestConcurrentAddsNeverExceedStock(t *testing.T) {
	st := newTestStore(t, testProduct("p1", 1000, 5))
	ctx := context.Background()

	var applied atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := st.cart.AddToCart(ctx, "shared", "p1")
			assert.NoError(t, err)
			if ok {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), applied.Load())
	view, err := st.cart.GetCart(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, 5, view.ItemCount)
}

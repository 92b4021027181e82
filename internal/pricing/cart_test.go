package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/model"
)

func sampleCart() []model.CartItem {
	return []model.CartItem{
		line(product("p1", 10000, 20, model.Discount{Quantity: 10, Rate: 0.1}), 10),
		line(product("p2", 20000, 20, model.Discount{Quantity: 10, Rate: 0.15}), 2),
	}
}

func TestCalculateCartTotal(t *testing.T) {
	t.Parallel()

	// p1: 100000 × (1 − 0.15) = 85000; p2 gets the bulk bonus only: 40000 × 0.95 = 38000
	tests := []struct {
		name   string
		coupon *model.Coupon
		want   model.CartTotal
	}{
		{
			name: "no coupon",
			want: model.CartTotal{TotalBeforeDiscount: 140000, TotalAfterDiscount: 123000, TotalDiscount: 17000},
		},
		{
			name:   "flat coupon",
			coupon: amountCoupon(5000),
			want:   model.CartTotal{TotalBeforeDiscount: 140000, TotalAfterDiscount: 118000, TotalDiscount: 22000},
		},
		{
			name:   "percentage coupon",
			coupon: percentCoupon(10),
			want:   model.CartTotal{TotalBeforeDiscount: 140000, TotalAfterDiscount: 110700, TotalDiscount: 29300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculateCartTotal(sampleCart(), tt.coupon))
		})
	}
}

func TestCalculateCartTotal_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, model.CartTotal{}, CalculateCartTotal(nil, amountCoupon(1000)))
}

func TestCalculateCartTotal_BeforeNeverBelowAfter(t *testing.T) {
	t.Parallel()

	coupons := []*model.Coupon{nil, amountCoupon(0), amountCoupon(999999), percentCoupon(0), percentCoupon(37), percentCoupon(100)}
	carts := [][]model.CartItem{
		{},
		{line(product("a", 1, 1), 1)},
		{line(product("a", 777, 50, model.Discount{Quantity: 3, Rate: 0.33}), 3), line(product("b", 0, 5), 2)},
		sampleCart(),
	}

	for _, cart := range carts {
		for _, coupon := range coupons {
			total := CalculateCartTotal(cart, coupon)
			require.GreaterOrEqual(t, total.TotalBeforeDiscount, total.TotalAfterDiscount)
			require.GreaterOrEqual(t, total.TotalDiscount, int64(0))
			require.Equal(t, total.TotalBeforeDiscount-total.TotalAfterDiscount, total.TotalDiscount)
		}
	}
}

func TestPreCouponTotal(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(123000), PreCouponTotal(sampleCart()))
}

func TestAddItem(t *testing.T) {
	t.Parallel()

	p := product("p1", 1000, 5)
	cart := []model.CartItem{line(product("p0", 10, 10), 2)}

	added := AddItem(cart, p)
	require.Len(t, added, 2)
	assert.Equal(t, 1, added[1].Quantity)
	assert.Len(t, cart, 1, "input cart must not change")

	again := AddItem(added, p)
	require.Len(t, again, 2, "adding an existing product must not duplicate the line")
	assert.Equal(t, 2, again[1].Quantity)
	assert.Equal(t, 1, added[1].Quantity, "previous snapshot must not change")
}

func TestRemoveItem(t *testing.T) {
	t.Parallel()

	cart := sampleCart()
	assert.Equal(t, cart, RemoveItem(cart, "missing"))

	removed := RemoveItem(cart, "p1")
	require.Len(t, removed, 1)
	assert.Equal(t, "p2", removed[0].Product.ID)
	assert.Len(t, cart, 2)
}

func TestSetQuantity(t *testing.T) {
	t.Parallel()

	cart := sampleCart()

	updated := SetQuantity(cart, "p2", 7)
	assert.Equal(t, 7, updated[1].Quantity)
	assert.Equal(t, 10, updated[0].Quantity)
	assert.Equal(t, 2, cart[1].Quantity, "input cart must not change")

	assert.Equal(t, cart, SetQuantity(cart, "missing", 3))

	for _, qty := range []int{0, -4} {
		removed := SetQuantity(cart, "p1", qty)
		require.Len(t, removed, 1)
		assert.Equal(t, "p2", removed[0].Product.ID)
	}
}

func TestAddThenZeroQuantityRoundTrip(t *testing.T) {
	t.Parallel()

	cart := sampleCart()
	p := product("fresh", 500, 3)

	assert.Equal(t, cart, SetQuantity(AddItem(cart, p), p.ID, 0))
	assert.Empty(t, SetQuantity(AddItem(nil, p), p.ID, 0))
}

func TestItemCountAndItemTotal(t *testing.T) {
	t.Parallel()

	cart := sampleCart()
	assert.Equal(t, 12, ItemCount(cart))
	assert.Equal(t, int64(85000), ItemTotal(cart[0], cart))
	assert.Equal(t, int64(38000), ItemTotal(cart[1], cart))
	assert.Equal(t, 0, ItemCount(nil))
}

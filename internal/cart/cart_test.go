package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviere_back_end/internal/coupon"
	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store/memory"
)

var now = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc      *Service
	carts    *memory.Carts
	products *memory.Products
	coupons  *coupon.Service
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{
		carts:    memory.NewCarts(),
		products: memory.NewProducts(),
	}
	f.coupons = coupon.NewService(memory.NewCoupons(), memory.NewCounter()).WithClock(func() time.Time { return now })
	f.svc = NewService(f.carts, f.products, f.coupons)

	require.NoError(t, f.products.Create(ctx, &models.Product{ID: 1, Name: "Cuaderno", Price: 45, Stock: 10, Photo: "cuaderno.png"}))
	require.NoError(t, f.products.Create(ctx, &models.Product{ID: 2, Name: "Lápiz", Price: 8, Stock: 50}))
	return f
}

func ptr[T any](v T) *T { return &v }

func TestGetCreatesEmptyCart(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	c, err := f.svc.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), c.UserID)
	assert.Empty(t, c.Items)
	assert.Nil(t, c.AppliedCoupon)

	again, err := f.svc.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, c.Items, again.Items)
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("same product twice yields one line with summed quantity", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.AddItem(ctx, 5, AddItemRequest{ProductID: 1, Quantity: 2})
		require.NoError(t, err)
		c, err := f.svc.AddItem(ctx, 5, AddItemRequest{ProductID: 1, Quantity: 3})
		require.NoError(t, err)

		require.Len(t, c.Items, 1)
		assert.Equal(t, 5, c.Items[0].Quantity)
		assert.Equal(t, "Cuaderno", c.Items[0].Name)
		assert.Equal(t, 45.0, c.Items[0].Price)
		assert.Equal(t, "cuaderno.png", c.Items[0].Photo)
	})

	t.Run("quantity must be positive", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.AddItem(ctx, 5, AddItemRequest{ProductID: 1, Quantity: 0})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})

	t.Run("unknown product", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.AddItem(ctx, 5, AddItemRequest{ProductID: 99, Quantity: 1})
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("absent product leaves the cart unchanged", func(t *testing.T) {
		f := setup(t)
		before, err := f.svc.AddItem(ctx, 5, AddItemRequest{ProductID: 1, Quantity: 2})
		require.NoError(t, err)

		after, err := f.svc.RemoveItem(ctx, 5, 2)
		require.NoError(t, err)
		assert.Equal(t, before.Items, after.Items)
	})

	t.Run("removes the matching line", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.AddItem(ctx, 5, AddItemRequest{ProductID: 1, Quantity: 2})
		require.NoError(t, err)
		_, err = f.svc.AddItem(ctx, 5, AddItemRequest{ProductID: 2, Quantity: 1})
		require.NoError(t, err)

		c, err := f.svc.RemoveItem(ctx, 5, 1)
		require.NoError(t, err)
		require.Len(t, c.Items, 1)
		assert.Equal(t, int64(2), c.Items[0].ProductID)
	})

	t.Run("missing cart", func(t *testing.T) {
		f := setup(t)
		_, err := f.svc.RemoveItem(ctx, 5, 1)
		assert.ErrorIs(t, err, ErrCartNotFound)
	})
}

func TestSetItemQuantity(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.SetItemQuantity(ctx, 5, 1, 3)
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, err = f.svc.AddItem(ctx, 5, AddItemRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	_, err = f.svc.SetItemQuantity(ctx, 5, 2, 3)
	assert.ErrorIs(t, err, ErrItemNotFound)

	c, err := f.svc.SetItemQuantity(ctx, 5, 1, 7)
	require.NoError(t, err)
	assert.Equal(t, 7, c.Items[0].Quantity)

	c, err = f.svc.SetItemQuantity(ctx, 5, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestReplaceMergesDuplicateLines(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	c, err := f.svc.Replace(ctx, 5, ReplaceRequest{Items: []models.CartItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 2, Quantity: 4},
		{ProductID: 1, Quantity: 2},
	}})
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Items[0].Quantity)

	_, err = f.svc.Replace(ctx, 5, ReplaceRequest{Items: []models.CartItem{{ProductID: 1, Quantity: -1}}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Clear(ctx, 5)
	assert.ErrorIs(t, err, ErrCartNotFound)

	_, err = f.svc.AddItem(ctx, 5, AddItemRequest{ProductID: 1, Quantity: 2})
	require.NoError(t, err)
	c, err := f.svc.Clear(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
}

func TestApplyCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a snapshot of the coupon", func(t *testing.T) {
		f := setup(t)
		_, err := f.coupons.Create(ctx, coupon.CreateCouponRequest{Code: "PROMO10", Discount: ptr(10.0), ExpirationDate: ptr(now.Add(time.Hour))})
		require.NoError(t, err)

		c, applied, err := f.svc.ApplyCoupon(ctx, 5, "PROMO10")
		require.NoError(t, err)
		assert.Equal(t, "PROMO10", applied.Code)
		require.NotNil(t, c.AppliedCoupon)
		assert.Equal(t, 10.0, c.AppliedCoupon.Discount)
	})

	t.Run("missing coupon leaves the cart unchanged", func(t *testing.T) {
		f := setup(t)
		before, err := f.svc.AddItem(ctx, 5, AddItemRequest{ProductID: 1, Quantity: 2})
		require.NoError(t, err)

		_, _, err = f.svc.ApplyCoupon(ctx, 5, "NOEXISTE")
		assert.ErrorIs(t, err, coupon.ErrCouponNotFound)

		after, err := f.carts.Get(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, before.Items, after.Items)
		assert.Nil(t, after.AppliedCoupon)
	})

	t.Run("expired coupon is rejected", func(t *testing.T) {
		f := setup(t)
		_, err := f.coupons.Create(ctx, coupon.CreateCouponRequest{Code: "VIEJO", Discount: ptr(10.0), ExpirationDate: ptr(now.Add(-time.Hour))})
		require.NoError(t, err)

		_, _, err = f.svc.ApplyCoupon(ctx, 5, "VIEJO")
		assert.ErrorIs(t, err, coupon.ErrCouponExpired)
	})
}

func TestReplaceResolvesCouponFromStore(t *testing.T) {
	ctx := context.Background()

	t.Run("client discount is replaced by the stored one", func(t *testing.T) {
		f := setup(t)
		_, err := f.coupons.Create(ctx, coupon.CreateCouponRequest{Code: "PROMO10", Discount: ptr(10.0), ExpirationDate: ptr(now.Add(time.Hour))})
		require.NoError(t, err)

		c, err := f.svc.Replace(ctx, 5, ReplaceRequest{
			Items:         []models.CartItem{{ProductID: 1, Quantity: 1}},
			AppliedCoupon: &models.Coupon{Code: "PROMO10", Discount: 100},
		})
		require.NoError(t, err)
		require.NotNil(t, c.AppliedCoupon)
		assert.Equal(t, 10.0, c.AppliedCoupon.Discount)
	})

	t.Run("unknown code is rejected and the cart is untouched", func(t *testing.T) {
		f := setup(t)
		before, err := f.svc.AddItem(ctx, 5, AddItemRequest{ProductID: 2, Quantity: 1})
		require.NoError(t, err)

		_, err = f.svc.Replace(ctx, 5, ReplaceRequest{
			Items:         []models.CartItem{{ProductID: 1, Quantity: 3}},
			AppliedCoupon: &models.Coupon{Code: "INVENTADO", Discount: 100},
		})
		assert.ErrorIs(t, err, coupon.ErrCouponNotFound)

		after, err := f.carts.Get(ctx, 5)
		require.NoError(t, err)
		assert.Equal(t, before.Items, after.Items)
		assert.Nil(t, after.AppliedCoupon)
	})

	t.Run("expired code is rejected", func(t *testing.T) {
		f := setup(t)
		_, err := f.coupons.Create(ctx, coupon.CreateCouponRequest{Code: "VIEJO", Discount: ptr(10.0), ExpirationDate: ptr(now.Add(-time.Hour))})
		require.NoError(t, err)

		_, err = f.svc.Replace(ctx, 5, ReplaceRequest{
			Items:         []models.CartItem{{ProductID: 1, Quantity: 1}},
			AppliedCoupon: &models.Coupon{Code: "VIEJO"},
		})
		assert.ErrorIs(t, err, coupon.ErrCouponExpired)
	})

	t.Run("empty code clears the coupon", func(t *testing.T) {
		f := setup(t)
		_, err := f.coupons.Create(ctx, coupon.CreateCouponRequest{Code: "PROMO10", Discount: ptr(10.0), ExpirationDate: ptr(now.Add(time.Hour))})
		require.NoError(t, err)
		_, _, err = f.svc.ApplyCoupon(ctx, 5, "PROMO10")
		require.NoError(t, err)

		c, err := f.svc.Replace(ctx, 5, ReplaceRequest{
			Items:         []models.CartItem{{ProductID: 1, Quantity: 1}},
			AppliedCoupon: &models.Coupon{Discount: 100},
		})
		require.NoError(t, err)
		assert.Nil(t, c.AppliedCoupon)
	})
}

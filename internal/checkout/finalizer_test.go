package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviere_back_end/internal/apperr"
	"reviere_back_end/internal/cart"
	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
	"reviere_back_end/internal/store/memory"
)

var now = time.Date(2026, 7, 15, 18, 30, 0, 0, time.UTC)

type fakeCoupons map[string]models.Coupon

func (c fakeCoupons) Redeemable(_ context.Context, code string) (*models.Coupon, error) {
	coupon, ok := c[code]
	if !ok {
		return nil, apperr.NotFound("Cupón no encontrado")
	}
	return &coupon, nil
}

type fakeUsers map[int64]string

func (u fakeUsers) UserName(_ context.Context, id int64) (string, error) {
	name, ok := u[id]
	if !ok {
		return "", apperr.NotFound("Usuario no encontrado")
	}
	return name, nil
}

type recordingNotifier struct{ receipts []models.Receipt }

func (n *recordingNotifier) ReceiptIssued(_ context.Context, r models.Receipt) {
	n.receipts = append(n.receipts, r)
}

type fixture struct {
	finalizer *Finalizer
	products  *memory.Products
	receipts  *memory.Receipts
	carts     *memory.Carts
	notifier  *recordingNotifier
}

func setup(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	f := fixture{
		products: memory.NewProducts(),
		receipts: memory.NewReceipts(),
		carts:    memory.NewCarts(),
		notifier: &recordingNotifier{},
	}
	coupons := fakeCoupons{"DIEZ": {ID: 1, Code: "DIEZ", Discount: 10}}
	f.finalizer = NewFinalizer(f.products, f.receipts, f.carts, memory.NewCounter(), coupons,
		WithClock(func() time.Time { return now }),
		WithNotifier(f.notifier),
		WithUsers(fakeUsers{5: "Ana"}),
	)

	require.NoError(t, f.products.Create(ctx, &models.Product{ID: 1, Name: "A", Price: 100, Stock: 10}))
	require.NoError(t, f.products.Create(ctx, &models.Product{ID: 2, Name: "B", Price: 50, Stock: 3}))
	return f
}

func (f fixture) stock(t *testing.T, id int64) int {
	t.Helper()
	p, err := f.products.Get(context.Background(), id)
	require.NoError(t, err)
	return p.Stock
}

func (f fixture) fillCart(t *testing.T, userID int64, coupon *models.Coupon) {
	t.Helper()
	_, err := f.carts.Mutate(context.Background(), userID, true, func(c *models.Cart) error {
		c.Items = []models.CartItem{{ProductID: 1, Quantity: 2, Name: "A", Price: 100}, {ProductID: 2, Quantity: 1, Name: "B", Price: 50}}
		c.AppliedCoupon = coupon
		return nil
	})
	require.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }

func order(userID int64) FinalizeRequest {
	return FinalizeRequest{
		UserID: userID,
		Lines:  []models.ReceiptLine{{ProductID: 1, Quantity: 2}, {ProductID: 2, Quantity: 1}},
	}
}

func TestFinalize(t *testing.T) {
	ctx := context.Background()

	t.Run("decrements stock, emits one receipt and clears the cart", func(t *testing.T) {
		f := setup(t)
		f.fillCart(t, 5, nil)

		receipt, err := f.finalizer.Finalize(ctx, order(5))
		require.NoError(t, err)

		assert.Equal(t, int64(1), receipt.ID)
		assert.Equal(t, "2 A, 1 B", receipt.Detail)
		assert.Equal(t, 250.0, receipt.TotalPrice)
		assert.Equal(t, now, receipt.EmittedAt)
		assert.Equal(t, 8, f.stock(t, 1))
		assert.Equal(t, 2, f.stock(t, 2))

		all, err := f.receipts.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)

		c, err := f.carts.Get(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, c.Items)
		assert.Nil(t, c.AppliedCoupon)

		assert.Len(t, f.notifier.receipts, 1)
	})

	t.Run("cart coupon snapshot is applied to the server total", func(t *testing.T) {
		f := setup(t)
		f.fillCart(t, 5, &models.Coupon{Code: "SNAP", Discount: 20})

		receipt, err := f.finalizer.Finalize(ctx, order(5))
		require.NoError(t, err)
		assert.Equal(t, 200.0, receipt.TotalPrice)
	})

	t.Run("requested coupon code is validated when the cart has none", func(t *testing.T) {
		f := setup(t)

		req := order(6)
		req.AppliedCoupon = &models.Coupon{Code: "DIEZ", Discount: 90}
		receipt, err := f.finalizer.Finalize(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 225.0, receipt.TotalPrice, "the stored discount wins over the client copy")

		req.AppliedCoupon = &models.Coupon{Code: "FALSO"}
		_, err = f.finalizer.Finalize(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidCoupon)
	})

	t.Run("client total mismatch keeps the server total", func(t *testing.T) {
		f := setup(t)
		req := order(5)
		req.Total = ptr(1.0)

		receipt, err := f.finalizer.Finalize(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, 250.0, receipt.TotalPrice)
	})

	t.Run("insufficient stock rolls back earlier reservations", func(t *testing.T) {
		f := setup(t)
		f.fillCart(t, 5, nil)
		req := order(5)
		req.Lines[1].Quantity = 4

		_, err := f.finalizer.Finalize(ctx, req)
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
		assert.Equal(t, 10, f.stock(t, 1))
		assert.Equal(t, 3, f.stock(t, 2))

		all, err := f.receipts.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)

		c, err := f.carts.Get(ctx, 5)
		require.NoError(t, err)
		assert.Len(t, c.Items, 2)
	})

	t.Run("missing product renders the placeholder and is skipped", func(t *testing.T) {
		f := setup(t)
		req := order(5)
		req.Lines = append(req.Lines, models.ReceiptLine{ProductID: 99, Quantity: 3})

		receipt, err := f.finalizer.Finalize(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "2 A, 1 B, 3 Producto no encontrado", receipt.Detail)
		assert.Equal(t, 250.0, receipt.TotalPrice)
	})

	t.Run("receipt write failure gives the stock back", func(t *testing.T) {
		f := setup(t)
		finalizer := NewFinalizer(f.products, failingReceipts{f.receipts}, f.carts, memory.NewCounter(), nil)

		_, err := finalizer.Finalize(ctx, order(5))
		assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
		assert.Equal(t, 10, f.stock(t, 1))
		assert.Equal(t, 3, f.stock(t, 2))
	})

	t.Run("validation", func(t *testing.T) {
		f := setup(t)
		_, err := f.finalizer.Finalize(ctx, FinalizeRequest{UserID: 5})
		assert.ErrorIs(t, err, ErrEmptyOrder)

		_, err = f.finalizer.Finalize(ctx, FinalizeRequest{Lines: order(5).Lines})
		assert.ErrorIs(t, err, ErrUserRequired)

		req := order(5)
		req.Lines[0].Quantity = 0
		_, err = f.finalizer.Finalize(ctx, req)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestFinalizeUsesStoredDiscountForReplacedCart(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	carts := cart.NewService(f.carts, f.products, fakeCoupons{"DIEZ": {ID: 1, Code: "DIEZ", Discount: 10}})

	_, err := carts.Replace(ctx, 5, cart.ReplaceRequest{
		Items:         []models.CartItem{{ProductID: 1, Quantity: 2}},
		AppliedCoupon: &models.Coupon{Code: "FALSO", Discount: 100},
	})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = carts.Replace(ctx, 5, cart.ReplaceRequest{
		Items:         []models.CartItem{{ProductID: 1, Quantity: 2}},
		AppliedCoupon: &models.Coupon{Code: "DIEZ", Discount: 100},
	})
	require.NoError(t, err)

	receipt, err := f.finalizer.Finalize(ctx, FinalizeRequest{UserID: 5, Lines: []models.ReceiptLine{{ProductID: 1, Quantity: 2}}})
	require.NoError(t, err)
	assert.Equal(t, 180.0, receipt.TotalPrice)
}

func TestQuoteCart(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, _, err := f.finalizer.QuoteCart(ctx, 5)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	f.fillCart(t, 5, &models.Coupon{Code: "SNAP", Discount: 10})
	q, lines, err := f.finalizer.QuoteCart(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, lines, 2)
	assert.Equal(t, "225", q.Total.String())
	assert.Equal(t, int64(22500), q.Cents())
}

func TestListViewsJoinsUserName(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	_, err := f.finalizer.Finalize(ctx, order(5))
	require.NoError(t, err)
	_, err = f.finalizer.Finalize(ctx, FinalizeRequest{UserID: 8, Lines: []models.ReceiptLine{{ProductID: 1, Quantity: 1}}})
	require.NoError(t, err)

	views, err := f.finalizer.ListViews(ctx)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "Ana", views[0].UserName)
	assert.Equal(t, MissingUserName, views[1].UserName)

	require.NoError(t, f.finalizer.Delete(ctx, views[0].ID))
	_, err = f.finalizer.Get(ctx, views[0].ID)
	assert.ErrorIs(t, err, ErrReceiptNotFound)
}

func TestPriceRoundsToCents(t *testing.T) {
	lines := []PricedLine{
		{ProductID: 1, Quantity: 3, UnitPrice: decimal.RequireFromString("19.99"), Found: true},
		{ProductID: 2, Quantity: 1, UnitPrice: decimal.Zero, Found: false},
	}
	q := Price(lines, &models.Coupon{Discount: 15})

	assert.Equal(t, "59.97", q.Subtotal.String())
	assert.Equal(t, "9", q.Discount.String())
	assert.Equal(t, "50.97", q.Total.String())
	assert.Equal(t, int64(5097), q.Cents())
	assert.Equal(t, 50.97, q.TotalFloat())
}

type failingReceipts struct{ store.ReceiptStore }

func (failingReceipts) Create(context.Context, *models.Receipt) error {
	return errors.New("write timeout")
}

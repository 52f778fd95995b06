package memory

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

func TestCounterConcurrentIDsAreDistinctAndDense(t *testing.T) {
	ctx := context.Background()
	counter := NewCounter()

	const n = 200
	ids := make([]int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := counter.NextID(ctx, store.NSProducts)
			assert.NoError(t, err)
			ids[i] = id
		}(i)
	}
	wg.Wait()

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id)
	}

	other, err := counter.NextID(ctx, store.NSOffers)
	require.NoError(t, err)
	assert.Equal(t, int64(1), other)
}

func TestProductsAdjustStockNeverNegative(t *testing.T) {
	ctx := context.Background()
	products := NewProducts()
	require.NoError(t, products.Create(ctx, &models.Product{ID: 1, Stock: 3}))

	stock, err := products.AdjustStock(ctx, 1, -2)
	require.NoError(t, err)
	assert.Equal(t, 1, stock)

	_, err = products.AdjustStock(ctx, 1, -2)
	assert.ErrorIs(t, err, store.ErrInsufficientStock)

	p, err := products.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stock)

	_, err = products.AdjustStock(ctx, 42, -1)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestProductsUpdatePriceRefusedOnOffer(t *testing.T) {
	ctx := context.Background()
	products := NewProducts()
	original := 100.0
	require.NoError(t, products.Create(ctx, &models.Product{ID: 1, Price: 80, OriginalPrice: &original, OnOffer: true}))

	err := products.UpdatePrice(ctx, 1, 90)
	assert.ErrorIs(t, err, store.ErrConditionFailed)
}

func TestOffersClaimIsExclusive(t *testing.T) {
	ctx := context.Background()
	offers := NewOffers()

	require.NoError(t, offers.ClaimProduct(ctx, 1, 10))
	require.NoError(t, offers.ClaimProduct(ctx, 1, 10), "re-claim by the holder is idempotent")
	assert.ErrorIs(t, offers.ClaimProduct(ctx, 1, 11), store.ErrAlreadyExists)

	require.NoError(t, offers.ReleaseProduct(ctx, 1, 11))
	assert.ErrorIs(t, offers.ClaimProduct(ctx, 1, 11), store.ErrAlreadyExists, "release by a non-holder is ignored")

	require.NoError(t, offers.ReleaseProduct(ctx, 1, 10))
	assert.NoError(t, offers.ClaimProduct(ctx, 1, 11))
}

func TestCartsMutate(t *testing.T) {
	ctx := context.Background()
	carts := NewCarts()

	_, err := carts.Mutate(ctx, 7, false, func(*models.Cart) error { return nil })
	assert.ErrorIs(t, err, store.ErrNotFound)

	updates, cancel, err := carts.Subscribe(ctx, 7)
	require.NoError(t, err)
	defer cancel()

	cart, err := carts.Mutate(ctx, 7, true, func(c *models.Cart) error {
		c.Items = append(c.Items, models.CartItem{ProductID: 1, Quantity: 2})
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)

	select {
	case <-updates:
	default:
		t.Fatal("expected a cart update notification")
	}

	cart.Items[0].Quantity = 99
	stored, err := carts.Get(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Items[0].Quantity, "returned carts must not alias stored state")
}

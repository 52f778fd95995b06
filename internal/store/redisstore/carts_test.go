package redisstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

func newCarts(t *testing.T) (*Carts, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCarts(client), mr
}

func addOne(productID int64) func(*models.Cart) error {
	return func(c *models.Cart) error {
		if i := c.Find(productID); i >= 0 {
			c.Items[i].Quantity++
			return nil
		}
		c.Items = append(c.Items, models.CartItem{ProductID: productID, Quantity: 1})
		return nil
	}
}

func TestMutateCreatesAndPersists(t *testing.T) {
	ctx := context.Background()
	carts, mr := newCarts(t)

	_, err := carts.Get(ctx, 7)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = carts.Mutate(ctx, 7, false, addOne(1))
	assert.ErrorIs(t, err, store.ErrNotFound)

	c, err := carts.Mutate(ctx, 7, true, addOne(1))
	require.NoError(t, err)
	assert.Equal(t, int64(7), c.UserID)

	got, err := carts.Get(ctx, 7)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 1, got.Items[0].Quantity)

	assert.True(t, mr.Exists("cart:7"))
	assert.Equal(t, time.Duration(0), mr.TTL("cart:7"), "carts never expire")
}

func TestConcurrentMutationsAreNotLost(t *testing.T) {
	ctx := context.Background()
	carts, _ := newCarts(t)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := carts.Mutate(ctx, 3, true, addOne(42))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := carts.Get(ctx, 3)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, n, c.Items[0].Quantity)
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	carts, _ := newCarts(t)

	updates, cancel, err := carts.Subscribe(ctx, 9)
	require.NoError(t, err)
	defer cancel()

	_, err = carts.Mutate(ctx, 9, true, addOne(1))
	require.NoError(t, err)

	select {
	case <-updates:
	case <-time.After(2 * time.Second):
		t.Fatal("no cart update received")
	}
}

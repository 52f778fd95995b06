// Package memory fournit des dépôts en mémoire, utilisés en mode STORE_DRIVER=memory
// et dans les tests des services.
package memory

import (
	"context"
	"sync"

	"reviere_back_end/internal/store"
)

// New retourne un jeu complet de dépôts partageant un même compteur.
func New() store.Stores {
	carts := NewCarts()
	return store.Stores{
		Counter:  NewCounter(),
		Products: NewProducts(),
		Offers:   NewOffers(),
		Coupons:  NewCoupons(),
		Carts:    carts,
		CartFeed: carts,
		Receipts: NewReceipts(),
		Reviews:  NewReviews(),
		Accounts: NewAccounts(),
		Catalogs: NewCollections(),
	}
}

type Counter struct {
	mu     sync.Mutex
	values map[string]int64
}

func NewCounter() *Counter {
	return &Counter{values: make(map[string]int64)}
}

func (c *Counter) NextID(ctx context.Context, namespace string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[namespace]++
	return c.values[namespace], nil
}

// Current retourne la dernière valeur allouée, sans l'incrémenter.
func (c *Counter) Current(namespace string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[namespace]
}

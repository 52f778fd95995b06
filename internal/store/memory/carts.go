package memory

import (
	"context"
	"sync"
	"time"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

type Carts struct {
	mu          sync.Mutex
	items       map[int64]models.Cart
	subscribers map[int64]map[chan struct{}]struct{}
}

func NewCarts() *Carts {
	return &Carts{
		items:       make(map[int64]models.Cart),
		subscribers: make(map[int64]map[chan struct{}]struct{}),
	}
}

func (s *Carts) Get(ctx context.Context, userID int64) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.items[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneCart(c), nil
}

func (s *Carts) Mutate(ctx context.Context, userID int64, create bool, fn func(*models.Cart) error) (*models.Cart, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var cart *models.Cart
	if cur, ok := s.items[userID]; ok {
		cart = cloneCart(cur)
	} else if create {
		cart = models.NewCart(userID)
	} else {
		return nil, store.ErrNotFound
	}

	if err := fn(cart); err != nil {
		return nil, err
	}
	cart.UpdatedAt = time.Now()
	s.items[userID] = *cloneCart(*cart)
	s.notify(userID)
	return cart, nil
}

// Subscribe retourne un canal notifié à chaque écriture du panier.
func (s *Carts) Subscribe(ctx context.Context, userID int64) (<-chan struct{}, func(), error) {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	if s.subscribers[userID] == nil {
		s.subscribers[userID] = make(map[chan struct{}]struct{})
	}
	s.subscribers[userID][ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers[userID], ch)
			s.mu.Unlock()
		})
	}
	return ch, cancel, nil
}

// notify suppose s.mu verrouillé.
func (s *Carts) notify(userID int64) {
	for ch := range s.subscribers[userID] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func cloneCart(c models.Cart) *models.Cart {
	out := c
	out.Items = append([]models.CartItem{}, c.Items...)
	if c.AppliedCoupon != nil {
		coupon := *c.AppliedCoupon
		out.AppliedCoupon = &coupon
	}
	return &out
}

package memory

import (
	"context"
	"sort"
	"sync"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

type Coupons struct {
	mu     sync.RWMutex
	items  map[int64]models.Coupon
	byCode map[string]int64
}

func NewCoupons() *Coupons {
	return &Coupons{items: make(map[int64]models.Coupon), byCode: make(map[string]int64)}
}

func (s *Coupons) Create(ctx context.Context, c *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byCode[c.Code]; ok {
		return store.ErrAlreadyExists
	}
	s.items[c.ID] = *c
	s.byCode[c.Code] = c.ID
	return nil
}

func (s *Coupons) Get(ctx context.Context, id int64) (*models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &c, nil
}

func (s *Coupons) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byCode[code]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := s.items[id]
	return &c, nil
}

func (s *Coupons) List(ctx context.Context) ([]models.Coupon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Coupon, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Coupons) Update(ctx context.Context, c *models.Coupon) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[c.ID]
	if !ok {
		return store.ErrNotFound
	}
	if cur.Code != c.Code {
		if _, taken := s.byCode[c.Code]; taken {
			return store.ErrAlreadyExists
		}
		delete(s.byCode, cur.Code)
		s.byCode[c.Code] = c.ID
	}
	s.items[c.ID] = *c
	return nil
}

func (s *Coupons) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.items[id]; ok {
		delete(s.byCode, c.Code)
		delete(s.items, id)
	}
	return nil
}

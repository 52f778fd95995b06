package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

type Products struct {
	mu    sync.RWMutex
	items map[int64]models.Product
}

func NewProducts() *Products {
	return &Products{items: make(map[int64]models.Product)}
}

func (s *Products) Create(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[p.ID]; ok {
		return store.ErrAlreadyExists
	}
	s.items[p.ID] = copyProduct(*p)
	return nil
}

func (s *Products) Get(ctx context.Context, id int64) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := copyProduct(p)
	return &out, nil
}

func (s *Products) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, 0, len(s.items))
	for _, p := range s.items {
		if filter.CompanyID != nil && p.CompanyID != *filter.CompanyID {
			continue
		}
		out = append(out, copyProduct(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Products) UpdateDetails(ctx context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[p.ID]
	if !ok {
		return store.ErrNotFound
	}
	cur.Name = p.Name
	cur.Description = p.Description
	cur.Category = p.Category
	cur.Photo = p.Photo
	cur.UpdatedAt = time.Now()
	s.items[p.ID] = cur
	return nil
}

func (s *Products) SetStock(ctx context.Context, id int64, stock int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	cur.Stock = stock
	cur.UpdatedAt = time.Now()
	s.items[id] = cur
	return nil
}

func (s *Products) UpdatePrice(ctx context.Context, id int64, price float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	if cur.OnOffer {
		return store.ErrConditionFailed
	}
	cur.Price = price
	cur.UpdatedAt = time.Now()
	s.items[id] = cur
	return nil
}

func (s *Products) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *Products) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[id]
	if !ok {
		return 0, store.ErrNotFound
	}
	next := cur.Stock + delta
	if next < 0 {
		return cur.Stock, store.ErrInsufficientStock
	}
	cur.Stock = next
	s.items[id] = cur
	return next, nil
}

func (s *Products) SetPricing(ctx context.Context, id int64, price float64, originalPrice *float64, onOffer bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.items[id]
	if !ok {
		return store.ErrNotFound
	}
	cur.Price = price
	cur.OriginalPrice = copyFloat(originalPrice)
	cur.OnOffer = onOffer
	cur.UpdatedAt = time.Now()
	s.items[id] = cur
	return nil
}

func copyProduct(p models.Product) models.Product {
	p.OriginalPrice = copyFloat(p.OriginalPrice)
	return p
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

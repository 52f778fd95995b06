package memory

import (
	"context"
	"sort"
	"sync"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

type Reviews struct {
	mu    sync.RWMutex
	items map[int64]models.Review
}

func NewReviews() *Reviews {
	return &Reviews{items: make(map[int64]models.Review)}
}

func (s *Reviews) Create(ctx context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[r.ID] = *r
	return nil
}

func (s *Reviews) Get(ctx context.Context, id int64) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *Reviews) List(ctx context.Context, productID *int64) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Review, 0, len(s.items))
	for _, r := range s.items {
		if productID != nil && r.ProductID != *productID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Reviews) Update(ctx context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.ID]; !ok {
		return store.ErrNotFound
	}
	s.items[r.ID] = *r
	return nil
}

func (s *Reviews) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

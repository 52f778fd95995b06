package memory

import (
	"context"
	"sort"
	"sync"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

type Receipts struct {
	mu    sync.RWMutex
	items map[int64]models.Receipt
}

func NewReceipts() *Receipts {
	return &Receipts{items: make(map[int64]models.Receipt)}
}

func (s *Receipts) Create(ctx context.Context, r *models.Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[r.ID]; ok {
		return store.ErrAlreadyExists
	}
	s.items[r.ID] = *r
	return nil
}

func (s *Receipts) Get(ctx context.Context, id int64) (*models.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &r, nil
}

func (s *Receipts) List(ctx context.Context) ([]models.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Receipt, 0, len(s.items))
	for _, r := range s.items {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Receipts) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

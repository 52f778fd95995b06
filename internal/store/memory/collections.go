package memory

import (
	"context"
	"sort"
	"sync"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

type Collections struct {
	mu    sync.RWMutex
	items map[int64]models.Collection
}

func NewCollections() *Collections {
	return &Collections{items: make(map[int64]models.Collection)}
}

func (s *Collections) Create(ctx context.Context, c *models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[c.ID] = copyCollection(*c)
	return nil
}

func (s *Collections) Get(ctx context.Context, id int64) (*models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := copyCollection(c)
	return &out, nil
}

func (s *Collections) List(ctx context.Context) ([]models.Collection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Collection, 0, len(s.items))
	for _, c := range s.items {
		out = append(out, copyCollection(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Collections) Update(ctx context.Context, c *models.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[c.ID]; !ok {
		return store.ErrNotFound
	}
	s.items[c.ID] = copyCollection(*c)
	return nil
}

func (s *Collections) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func copyCollection(c models.Collection) models.Collection {
	c.ProductIDs = append([]int64(nil), c.ProductIDs...)
	return c
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

type Offers struct {
	mu     sync.RWMutex
	items  map[int64]models.Offer
	claims map[int64]int64 // product_id -> offer_id
}

func NewOffers() *Offers {
	return &Offers{items: make(map[int64]models.Offer), claims: make(map[int64]int64)}
}

func (s *Offers) Create(ctx context.Context, o *models.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[o.ID]; ok {
		return store.ErrAlreadyExists
	}
	s.items[o.ID] = *o
	return nil
}

func (s *Offers) Get(ctx context.Context, id int64) (*models.Offer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &o, nil
}

func (s *Offers) List(ctx context.Context) ([]models.Offer, error) {
	return s.filter(func(models.Offer) bool { return true }), nil
}

func (s *Offers) ListByProduct(ctx context.Context, productID int64) ([]models.Offer, error) {
	return s.filter(func(o models.Offer) bool { return o.ProductID == productID }), nil
}

func (s *Offers) ListExpired(ctx context.Context, now time.Time) ([]models.Offer, error) {
	return s.filter(func(o models.Offer) bool { return o.Expired(now) }), nil
}

func (s *Offers) filter(keep func(models.Offer) bool) []models.Offer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Offer, 0, len(s.items))
	for _, o := range s.items {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Offers) Update(ctx context.Context, o *models.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[o.ID]; !ok {
		return store.ErrNotFound
	}
	s.items[o.ID] = *o
	return nil
}

func (s *Offers) Deactivate(ctx context.Context, id int64, endDate time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.items[id]
	if !ok || !o.Active || !o.EndDate.Equal(endDate) {
		return false, nil
	}
	o.Active = false
	o.UpdatedAt = time.Now()
	s.items[id] = o
	return true, nil
}

func (s *Offers) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

func (s *Offers) ClaimProduct(ctx context.Context, productID, offerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if holder, ok := s.claims[productID]; ok && holder != offerID {
		return store.ErrAlreadyExists
	}
	s.claims[productID] = offerID
	return nil
}

func (s *Offers) ReleaseProduct(ctx context.Context, productID, offerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.claims[productID] == offerID {
		delete(s.claims, productID)
	}
	return nil
}

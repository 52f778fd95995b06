package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/apperr"
	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

var ErrCollectionNotFound = apperr.NotFound("Catálogo no encontrado")

type CollectionRequest struct {
	Name        *string `json:"nombre"`
	Description *string `json:"descripcion"`
	ProductIDs  []int64 `json:"productos"`
}

// Collections gère les catalogues nommés. Les produits supprimés depuis
// restent référencés et sont ignorés à la lecture.
type Collections struct {
	collections store.CollectionStore
	products    store.ProductStore
	counter     store.Counter
	now         func() time.Time
}

func NewCollections(collections store.CollectionStore, products store.ProductStore, counter store.Counter) *Collections {
	return &Collections{collections: collections, products: products, counter: counter, now: time.Now}
}

func (s *Collections) Create(ctx context.Context, req CollectionRequest) (*models.CollectionView, error) {
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return nil, ErrNameRequired
	}
	id, err := s.counter.NextID(ctx, store.NSCatalogs)
	if err != nil {
		return nil, apperr.Upstream("allocate catalog id", err)
	}
	c := &models.Collection{
		ID:         id,
		Name:       strings.TrimSpace(*req.Name),
		ProductIDs: dedupe(req.ProductIDs),
		UpdatedAt:  s.now(),
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if err := s.collections.Create(ctx, c); err != nil {
		return nil, apperr.Upstream("create catalog", err)
	}
	log.WithField("catalog_id", id).Info("✅ Catalogue créé")
	return s.view(ctx, *c)
}

func (s *Collections) Get(ctx context.Context, id int64) (*models.CollectionView, error) {
	c, err := s.collections.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, apperr.Upstream("get catalog", err)
	}
	return s.view(ctx, *c)
}

func (s *Collections) List(ctx context.Context) ([]models.CollectionView, error) {
	all, err := s.collections.List(ctx)
	if err != nil {
		return nil, apperr.Upstream("list catalogs", err)
	}
	out := make([]models.CollectionView, 0, len(all))
	for _, c := range all {
		v, err := s.view(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *Collections) Update(ctx context.Context, id int64, req CollectionRequest) (*models.CollectionView, error) {
	c, err := s.collections.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrCollectionNotFound
		}
		return nil, apperr.Upstream("get catalog", err)
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, ErrNameRequired
		}
		c.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		c.Description = *req.Description
	}
	if req.ProductIDs != nil {
		c.ProductIDs = dedupe(req.ProductIDs)
	}
	c.UpdatedAt = s.now()
	if err := s.collections.Update(ctx, c); err != nil {
		return nil, apperr.Upstream("update catalog", err)
	}
	return s.view(ctx, *c)
}

func (s *Collections) Delete(ctx context.Context, id int64) error {
	if err := s.collections.Delete(ctx, id); err != nil {
		return apperr.Upstream("delete catalog", err)
	}
	log.WithField("catalog_id", id).Info("🗑️ Catalogue supprimé")
	return nil
}

func (s *Collections) view(ctx context.Context, c models.Collection) (*models.CollectionView, error) {
	v := &models.CollectionView{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		Products:    make([]models.CollectionProduct, 0, len(c.ProductIDs)),
		UpdatedAt:   c.UpdatedAt,
	}
	for _, pid := range c.ProductIDs {
		p, err := s.products.Get(ctx, pid)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperr.Upstream("resolve catalog product", err)
		}
		v.Products = append(v.Products, models.CollectionProduct{ID: p.ID, Name: p.Name})
	}
	return v, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

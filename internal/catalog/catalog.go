// Package catalog gère les fiches produit : création, lecture, mise à jour,
// suppression et ajustement atomique du stock. Le prix d'un produit en offre
// n'est modifiable que par le moteur d'offres.
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

var (
	ErrProductNotFound   = apperr.NotFound("Producto no encontrado")
	ErrCompanyRequired   = apperr.Validation("El id_empresa es obligatorio")
	ErrNameRequired      = apperr.Validation("El nombre es obligatorio")
	ErrInvalidPrice      = apperr.Validation("El precio debe ser mayor o igual a 0")
	ErrInvalidStock      = apperr.Validation("El stock debe ser mayor o igual a 0")
	ErrPriceLocked       = apperr.Conflict("No se puede cambiar el precio de un producto en oferta")
	ErrInsufficientStock = apperr.Conflict("Stock insuficiente")
)

// Indexer maintient l'index de recherche à jour.
type Indexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// Searcher retourne les ids des produits correspondant à une requête plein texte.
type Searcher interface {
	SearchProducts(ctx context.Context, query string, limit int) ([]int64, error)
}

// OfferDetacher retire les offres d'un produit avant sa suppression.
type OfferDetacher interface {
	DetachProduct(ctx context.Context, productID int64) error
}

type CreateProductRequest struct {
	CompanyID   *int64   `json:"id_empresa" form:"id_empresa"`
	Name        string   `json:"nombre" form:"nombre"`
	Description string   `json:"descripcion" form:"descripcion"`
	Price       *float64 `json:"precio" form:"precio"`
	Stock       *int     `json:"stock" form:"stock"`
	Category    string   `json:"categoria" form:"categoria"`
	Photo       string   `json:"foto" form:"-"`
}

func (r CreateProductRequest) Validate() error {
	if r.CompanyID == nil || *r.CompanyID <= 0 {
		return ErrCompanyRequired
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrNameRequired
	}
	if r.Price == nil || *r.Price < 0 {
		return ErrInvalidPrice
	}
	if r.Stock != nil && *r.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

// UpdateProductRequest ne contient que les champs à modifier.
type UpdateProductRequest struct {
	Name        *string  `json:"nombre" form:"nombre"`
	Description *string  `json:"descripcion" form:"descripcion"`
	Price       *float64 `json:"precio" form:"precio"`
	Stock       *int     `json:"stock" form:"stock"`
	Category    *string  `json:"categoria" form:"categoria"`
	Photo       *string  `json:"foto" form:"-"`
}

func (r UpdateProductRequest) Validate() error {
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		return ErrNameRequired
	}
	if r.Price != nil && *r.Price < 0 {
		return ErrInvalidPrice
	}
	if r.Stock != nil && *r.Stock < 0 {
		return ErrInvalidStock
	}
	return nil
}

type Option func(*Service)

func WithIndexer(ix Indexer) Option         { return func(s *Service) { s.indexer = ix } }
func WithSearcher(sr Searcher) Option       { return func(s *Service) { s.searcher = sr } }
func WithOffers(od OfferDetacher) Option    { return func(s *Service) { s.offers = od } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

type Service struct {
	products store.ProductStore
	counter  store.Counter
	indexer  Indexer
	searcher Searcher
	offers   OfferDetacher
	now      func() time.Time
}

func NewService(products store.ProductStore, counter store.Counter, opts ...Option) *Service {
	s := &Service{products: products, counter: counter, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, req CreateProductRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id, err := s.counter.NextID(ctx, store.NSProducts)
	if err != nil {
		return nil, apperr.Upstream("allocate product id", err)
	}

	now := s.now()
	p := &models.Product{
		ID:          id,
		CompanyID:   *req.CompanyID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       *req.Price,
		Category:    req.Category,
		Photo:       req.Photo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}

	if err := s.products.Create(ctx, p); err != nil {
		return nil, apperr.Upstream("create product", err)
	}

	log.WithFields(log.Fields{"product_id": p.ID, "company_id": p.CompanyID}).Info("✅ Produit créé")
	s.reindex(ctx, p.ID)
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, translate("get product", err)
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, companyID *int64) ([]models.Product, error) {
	products, err := s.products.List(ctx, store.ProductFilter{CompanyID: companyID})
	if err != nil {
		return nil, apperr.Upstream("list products", err)
	}
	return products, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, translate("get product", err)
	}

	priceChange := req.Price != nil && *req.Price != p.Price
	if priceChange && p.OnOffer {
		return nil, ErrPriceLocked
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Category != nil {
		p.Category = *req.Category
	}
	if req.Photo != nil {
		p.Photo = *req.Photo
	}
	if err := s.products.UpdateDetails(ctx, p); err != nil {
		return nil, translate("update product", err)
	}
	// Le stock n'est écrit que sur demande explicite pour ne pas écraser un
	// ajustement concurrent. Les écritures sont successives : un échec ici
	// laisse en place les champs déjà écrits.
	if req.Stock != nil {
		if err := s.products.SetStock(ctx, id, *req.Stock); err != nil {
			return nil, translate("update product stock", err)
		}
	}
	if priceChange {
		if err := s.products.UpdatePrice(ctx, id, *req.Price); err != nil {
			if errors.Is(err, store.ErrConditionFailed) {
				return nil, ErrPriceLocked
			}
			return nil, translate("update product price", err)
		}
	}

	log.WithField("product_id", id).Info("✅ Produit mis à jour")
	s.reindex(ctx, id)
	return s.Get(ctx, id)
}

// Delete retire d'abord les offres du produit, puis la fiche elle-même.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.products.Get(ctx, id); err != nil {
		return translate("get product", err)
	}

	if s.offers != nil {
		if err := s.offers.DetachProduct(ctx, id); err != nil {
			return err
		}
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return apperr.Upstream("delete product", err)
	}

	if s.indexer != nil {
		if err := s.indexer.DeleteProduct(ctx, id); err != nil {
			log.WithError(err).WithField("product_id", id).Warn("⚠️ Suppression de l'index échouée")
		}
	}
	log.WithField("product_id", id).Info("🗑️ Produit supprimé")
	return nil
}

// AdjustStock ajoute delta au stock sans jamais le rendre négatif.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	stock, err := s.products.AdjustStock(ctx, id, delta)
	switch {
	case err == nil:
		return stock, nil
	case errors.Is(err, store.ErrInsufficientStock):
		return stock, ErrInsufficientStock
	default:
		return 0, translate("adjust stock", err)
	}
}

// Search interroge l'index plein texte et relit les fiches depuis le stockage.
// Sans index configuré, un filtre simple sur le nom, la description et la catégorie est appliqué.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []models.Product{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	if s.searcher == nil {
		return s.searchLocal(ctx, query, limit)
	}

	ids, err := s.searcher.SearchProducts(ctx, query, limit)
	if err != nil {
		log.WithError(err).Warn("⚠️ Recherche Elasticsearch indisponible, filtre local")
		return s.searchLocal(ctx, query, limit)
	}

	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.products.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, apperr.Upstream("load search hit", err)
		}
		out = append(out, *p)
	}
	return out, nil
}

func (s *Service) searchLocal(ctx context.Context, query string, limit int) ([]models.Product, error) {
	all, err := s.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)
	out := make([]models.Product, 0)
	for _, p := range all {
		haystack := strings.ToLower(p.Name + " " + p.Description + " " + p.Category)
		if strings.Contains(haystack, needle) {
			out = append(out, p)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

// Reindex relit le produit et le renvoie à l'index ; les échecs sont seulement loggés.
func (s *Service) Reindex(ctx context.Context, id int64) {
	s.reindex(ctx, id)
}

func (s *Service) reindex(ctx context.Context, id int64) {
	if s.indexer == nil {
		return
	}
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return
	}
	if err := s.indexer.IndexProduct(ctx, *p); err != nil {
		log.WithError(err).WithField("product_id", id).Warn("⚠️ Indexation Elasticsearch échouée")
	}
}

func translate(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	return apperr.Upstream(op, err)
}

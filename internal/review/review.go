package review

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
	ErrReviewNotFound  = apperr.NotFound("Reseña no encontrada")
	ErrProductNotFound = apperr.NotFound("Producto no encontrado")
	ErrMissingFields   = apperr.Validation("La calificación y el comentario son obligatorios")
	ErrInvalidRating   = apperr.Validation("La calificación debe estar entre 1 y 5")
)

type ProductReader interface {
	Get(ctx context.Context, id int64) (*models.Product, error)
}

type CreateReviewRequest struct {
	ProductID int64  `json:"id_producto"`
	UserID    int64  `json:"id_usuario"`
	Rating    *int   `json:"calificacion"`
	Comment   string `json:"comentario"`
}

type UpdateReviewRequest struct {
	Rating  *int    `json:"calificacion"`
	Comment *string `json:"comentario"`
}

type Service struct {
	reviews  store.ReviewStore
	products ProductReader
	counter  store.Counter
	now      func() time.Time
}

func NewService(reviews store.ReviewStore, products ProductReader, counter store.Counter) *Service {
	return &Service{reviews: reviews, products: products, counter: counter, now: time.Now}
}

func (s *Service) Create(ctx context.Context, req CreateReviewRequest) (*models.Review, error) {
	if req.Rating == nil || strings.TrimSpace(req.Comment) == "" {
		return nil, ErrMissingFields
	}
	if *req.Rating < 1 || *req.Rating > 5 {
		return nil, ErrInvalidRating
	}
	if _, err := s.products.Get(ctx, req.ProductID); err != nil {
		if apperr.IsNotFound(err) || errors.Is(err, store.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, apperr.Upstream("get product", err)
	}

	id, err := s.counter.NextID(ctx, store.NSReviews)
	if err != nil {
		return nil, apperr.Upstream("allocate review id", err)
	}
	r := &models.Review{
		ID:        id,
		ProductID: req.ProductID,
		UserID:    req.UserID,
		Rating:    *req.Rating,
		Comment:   strings.TrimSpace(req.Comment),
		Date:      s.now(),
	}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, apperr.Upstream("create review", err)
	}
	log.WithFields(log.Fields{"review_id": r.ID, "product_id": r.ProductID}).Info("✅ Avis ajouté")
	return r, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Review, error) {
	r, err := s.reviews.Get(ctx, id)
	if err != nil {
		return nil, translate("get review", err)
	}
	return r, nil
}

func (s *Service) List(ctx context.Context, productID *int64) ([]models.Review, error) {
	reviews, err := s.reviews.List(ctx, productID)
	if err != nil {
		return nil, apperr.Upstream("list reviews", err)
	}
	return reviews, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateReviewRequest) (*models.Review, error) {
	r, err := s.reviews.Get(ctx, id)
	if err != nil {
		return nil, translate("get review", err)
	}
	if req.Rating != nil {
		if *req.Rating < 1 || *req.Rating > 5 {
			return nil, ErrInvalidRating
		}
		r.Rating = *req.Rating
	}
	if req.Comment != nil {
		if strings.TrimSpace(*req.Comment) == "" {
			return nil, ErrMissingFields
		}
		r.Comment = strings.TrimSpace(*req.Comment)
	}
	if err := s.reviews.Update(ctx, r); err != nil {
		return nil, translate("update review", err)
	}
	return r, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.reviews.Delete(ctx, id); err != nil {
		return apperr.Upstream("delete review", err)
	}
	return nil
}

func translate(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrReviewNotFound
	}
	return apperr.Upstream(op, err)
}

// Package coupon gère les codes de réduction. Un code est unique et sensible à la casse.
package coupon

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
	ErrCouponNotFound    = apperr.NotFound("Cupón no encontrado")
	ErrCodeRequired      = apperr.Validation("El código es obligatorio")
	ErrInvalidDiscount   = apperr.Validation("El descuento debe estar entre 0 y 100")
	ErrExpirationMissing = apperr.Validation("La fecha_expiracion es obligatoria")
	ErrCouponExpired     = apperr.Validation("Cupón expirado")
	ErrDuplicateCode     = apperr.Conflict("El código del cupón ya existe")
)

type CreateCouponRequest struct {
	Code           string     `json:"codigo"`
	Discount       *float64   `json:"descuento"`
	ExpirationDate *time.Time `json:"fecha_expiracion"`
}

func (r CreateCouponRequest) Validate() error {
	if strings.TrimSpace(r.Code) == "" {
		return ErrCodeRequired
	}
	if r.Discount == nil || !validDiscount(*r.Discount) {
		return ErrInvalidDiscount
	}
	if r.ExpirationDate == nil || r.ExpirationDate.IsZero() {
		return ErrExpirationMissing
	}
	return nil
}

type UpdateCouponRequest struct {
	Code           *string    `json:"codigo"`
	Discount       *float64   `json:"descuento"`
	ExpirationDate *time.Time `json:"fecha_expiracion"`
}

// validDiscount : le descuento est un pourcentage dans ]0, 100].
func validDiscount(d float64) bool {
	return d > 0 && d <= 100
}

type Service struct {
	coupons store.CouponStore
	counter store.Counter
	now     func() time.Time
}

func NewService(coupons store.CouponStore, counter store.Counter) *Service {
	return &Service{coupons: coupons, counter: counter, now: time.Now}
}

// WithClock remplace l'horloge, utilisé par les tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Create(ctx context.Context, req CreateCouponRequest) (*models.Coupon, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.Code)
	if _, err := s.coupons.GetByCode(ctx, code); err == nil {
		return nil, ErrDuplicateCode
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, apperr.Upstream("get coupon by code", err)
	}

	id, err := s.counter.NextID(ctx, store.NSCoupons)
	if err != nil {
		return nil, apperr.Upstream("allocate coupon id", err)
	}

	c := &models.Coupon{
		ID:             id,
		Code:           code,
		Discount:       *req.Discount,
		ExpirationDate: *req.ExpirationDate,
		CreatedAt:      s.now(),
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrDuplicateCode
		}
		return nil, apperr.Upstream("create coupon", err)
	}

	log.WithFields(log.Fields{"coupon_id": c.ID, "code": c.Code}).Info("✅ Coupon créé")
	return c, nil
}

// Lookup retrouve un coupon par son code exact.
func (s *Service) Lookup(ctx context.Context, code string) (*models.Coupon, error) {
	c, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return nil, translate("get coupon by code", err)
	}
	return c, nil
}

// Redeemable retrouve un coupon et vérifie qu'il n'est pas expiré.
func (s *Service) Redeemable(ctx context.Context, code string) (*models.Coupon, error) {
	c, err := s.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if c.Expired(s.now()) {
		return nil, ErrCouponExpired
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*models.Coupon, error) {
	c, err := s.coupons.Get(ctx, id)
	if err != nil {
		return nil, translate("get coupon", err)
	}
	return c, nil
}

func (s *Service) List(ctx context.Context) ([]models.Coupon, error) {
	coupons, err := s.coupons.List(ctx)
	if err != nil {
		return nil, apperr.Upstream("list coupons", err)
	}
	return coupons, nil
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateCouponRequest) (*models.Coupon, error) {
	c, err := s.coupons.Get(ctx, id)
	if err != nil {
		return nil, translate("get coupon", err)
	}

	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		if code == "" {
			return nil, ErrCodeRequired
		}
		c.Code = code
	}
	if req.Discount != nil {
		if !validDiscount(*req.Discount) {
			return nil, ErrInvalidDiscount
		}
		c.Discount = *req.Discount
	}
	if req.ExpirationDate != nil {
		c.ExpirationDate = *req.ExpirationDate
	}

	if err := s.coupons.Update(ctx, c); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrDuplicateCode
		}
		return nil, translate("update coupon", err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if _, err := s.coupons.Get(ctx, id); err != nil {
		return translate("get coupon", err)
	}
	if err := s.coupons.Delete(ctx, id); err != nil {
		return apperr.Upstream("delete coupon", err)
	}
	log.WithField("coupon_id", id).Info("🗑️ Coupon supprimé")
	return nil
}

func translate(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrCouponNotFound
	}
	return apperr.Upstream(op, err)
}

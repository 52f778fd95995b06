package scylla

import (
	"context"
	"sort"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

// Coupons garantit l'unicité des codes par une ligne réservée dans coupons_by_code.
type Coupons struct{ db *DB }

func scanCoupon(scan func(dest ...interface{}) error) (models.Coupon, error) {
	var c models.Coupon
	err := scan(&c.ID, &c.Code, &c.Discount, &c.ExpirationDate, &c.CreatedAt)
	return c, err
}

func (s *Coupons) claimCode(ctx context.Context, code string, id int64) error {
	applied, prev, err := s.db.cas(ctx, qClaimCouponCode, code, id)
	if err != nil {
		return err
	}
	if !applied {
		if holder, ok := prev["coupon_id"].(int64); ok && holder == id {
			return nil
		}
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Coupons) releaseCode(ctx context.Context, code string, id int64) {
	if _, _, err := s.db.cas(ctx, qReleaseCouponCode, code, id); err != nil {
		log.WithError(err).WithField("code", code).Warn("⚠️ Libération du code coupon échouée")
	}
}

func (s *Coupons) Create(ctx context.Context, c *models.Coupon) error {
	if err := s.claimCode(ctx, c.Code, c.ID); err != nil {
		return err
	}
	if err := s.db.query(ctx, qInsertCoupon, c.ID, c.Code, c.Discount, c.ExpirationDate, c.CreatedAt).Exec(); err != nil {
		s.releaseCode(ctx, c.Code, c.ID)
		return errors.Wrap(err, "insert coupon")
	}
	return nil
}

func (s *Coupons) Get(ctx context.Context, id int64) (*models.Coupon, error) {
	c, err := scanCoupon(s.db.query(ctx, qSelectCoupon, id).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *Coupons) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	var id int64
	if err := s.db.query(ctx, qSelectCouponCode, code).Consistency(gocql.Consistency(gocql.Serial)).Scan(&id); err != nil {
		return nil, notFound(err)
	}
	return s.Get(ctx, id)
}

func (s *Coupons) List(ctx context.Context) ([]models.Coupon, error) {
	iter := s.db.query(ctx, qSelectCoupons).Iter()
	scanner := iter.Scanner()
	out := make([]models.Coupon, 0)
	for scanner.Next() {
		c, err := scanCoupon(scanner.Scan)
		if err != nil {
			iter.Close()
			return nil, errors.Wrap(err, "scan coupon")
		}
		out = append(out, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update réserve le nouveau code avant d'écrire, puis libère l'ancien.
func (s *Coupons) Update(ctx context.Context, c *models.Coupon) error {
	cur, err := s.Get(ctx, c.ID)
	if err != nil {
		return err
	}
	if cur.Code != c.Code {
		if err := s.claimCode(ctx, c.Code, c.ID); err != nil {
			return err
		}
	}
	if err := s.db.query(ctx, qInsertCoupon, c.ID, c.Code, c.Discount, c.ExpirationDate, c.CreatedAt).Exec(); err != nil {
		if cur.Code != c.Code {
			s.releaseCode(ctx, c.Code, c.ID)
		}
		return errors.Wrap(err, "update coupon")
	}
	if cur.Code != c.Code {
		s.releaseCode(ctx, cur.Code, c.ID)
	}
	return nil
}

func (s *Coupons) Delete(ctx context.Context, id int64) error {
	cur, err := s.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.db.query(ctx, qDeleteCoupon, id).Exec(); err != nil {
		return errors.Wrap(err, "delete coupon")
	}
	s.releaseCode(ctx, cur.Code, id)
	return nil
}

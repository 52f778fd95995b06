package scylla

import (
	"context"
	"sort"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

type Offers struct{ db *DB }

func scanOffer(scan func(dest ...interface{}) error) (models.Offer, error) {
	var o models.Offer
	err := scan(&o.ID, &o.ProductID, &o.Discount, &o.OfferPrice, &o.StartDate, &o.EndDate,
		&o.Active, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

func (s *Offers) Create(ctx context.Context, o *models.Offer) error {
	applied, _, err := s.db.cas(ctx, qInsertOffer,
		o.ID, o.ProductID, o.Discount, o.OfferPrice, o.StartDate, o.EndDate, o.Active, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return err
	}
	if !applied {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Offers) Get(ctx context.Context, id int64) (*models.Offer, error) {
	o, err := scanOffer(s.db.query(ctx, qSelectOffer, id).Consistency(gocql.Consistency(gocql.Serial)).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (s *Offers) List(ctx context.Context) ([]models.Offer, error) {
	return s.list(ctx, s.db.query(ctx, qSelectOffers), nil)
}

func (s *Offers) ListByProduct(ctx context.Context, productID int64) ([]models.Offer, error) {
	return s.list(ctx, s.db.query(ctx, qSelectOffersByProd, productID), nil)
}

// ListExpired parcourt la table ; le volume d'offres reste faible.
func (s *Offers) ListExpired(ctx context.Context, now time.Time) ([]models.Offer, error) {
	return s.list(ctx, s.db.query(ctx, qSelectOffers), func(o models.Offer) bool {
		return o.Expired(now)
	})
}

func (s *Offers) list(ctx context.Context, q *gocql.Query, keep func(models.Offer) bool) ([]models.Offer, error) {
	iter := q.Iter()
	scanner := iter.Scanner()
	out := make([]models.Offer, 0)
	for scanner.Next() {
		o, err := scanOffer(scanner.Scan)
		if err != nil {
			iter.Close()
			return nil, errors.Wrap(err, "scan offer")
		}
		if keep == nil || keep(o) {
			out = append(out, o)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "list offers")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Offers) Update(ctx context.Context, o *models.Offer) error {
	applied, _, err := s.db.cas(ctx, qUpdateOffer,
		o.Discount, o.OfferPrice, o.StartDate, o.EndDate, o.Active, o.UpdatedAt, o.ID)
	if err != nil {
		return err
	}
	if !applied {
		return store.ErrNotFound
	}
	return nil
}

func (s *Offers) Deactivate(ctx context.Context, id int64, endDate time.Time) (bool, error) {
	applied, _, err := s.db.cas(ctx, qDeactivateOffer, time.Now(), id, endDate)
	return applied, err
}

func (s *Offers) Delete(ctx context.Context, id int64) error {
	_, _, err := s.db.cas(ctx, qDeleteOffer, id)
	return err
}

func (s *Offers) ClaimProduct(ctx context.Context, productID, offerID int64) error {
	applied, prev, err := s.db.cas(ctx, qClaimActiveOffer, productID, offerID)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}
	if holder, ok := prev["offer_id"].(int64); ok && holder == offerID {
		return nil
	}
	return store.ErrAlreadyExists
}

func (s *Offers) ReleaseProduct(ctx context.Context, productID, offerID int64) error {
	_, _, err := s.db.cas(ctx, qReleaseActiveOffer, productID, offerID)
	return err
}

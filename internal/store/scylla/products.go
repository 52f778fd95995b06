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

type Products struct{ db *DB }

func scanProduct(scan func(dest ...interface{}) error) (models.Product, error) {
	var p models.Product
	err := scan(&p.ID, &p.CompanyID, &p.Name, &p.Description, &p.Price, &p.OriginalPrice,
		&p.OnOffer, &p.Stock, &p.Category, &p.Photo, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (s *Products) Create(ctx context.Context, p *models.Product) error {
	applied, _, err := s.db.cas(ctx, qInsertProduct,
		p.ID, p.CompanyID, p.Name, p.Description, p.Price, p.OriginalPrice,
		p.OnOffer, p.Stock, p.Category, p.Photo, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	if !applied {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Products) Get(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(s.db.query(ctx, qSelectProduct, id).Consistency(gocql.Consistency(gocql.Serial)).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (s *Products) List(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	q := s.db.query(ctx, qSelectProducts)
	if filter.CompanyID != nil {
		q = s.db.query(ctx, qSelectProductsByCo, *filter.CompanyID)
	}
	iter := q.Iter()
	scanner := iter.Scanner()
	out := make([]models.Product, 0)
	for scanner.Next() {
		p, err := scanProduct(scanner.Scan)
		if err != nil {
			iter.Close()
			return nil, errors.Wrap(err, "scan product")
		}
		out = append(out, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Products) UpdateDetails(ctx context.Context, p *models.Product) error {
	applied, _, err := s.db.cas(ctx, qUpdateProductFields,
		p.Name, p.Description, p.Category, p.Photo, time.Now(), p.ID)
	if err != nil {
		return err
	}
	if !applied {
		return store.ErrNotFound
	}
	return nil
}

func (s *Products) SetStock(ctx context.Context, id int64, stock int) error {
	applied, _, err := s.db.cas(ctx, qSetProductStock, stock, time.Now(), id)
	if err != nil {
		return err
	}
	if !applied {
		return store.ErrNotFound
	}
	return nil
}

func (s *Products) UpdatePrice(ctx context.Context, id int64, price float64) error {
	applied, _, err := s.db.cas(ctx, qUpdateProductPrice, price, time.Now(), id)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return store.ErrConditionFailed
}

func (s *Products) Delete(ctx context.Context, id int64) error {
	_, _, err := s.db.cas(ctx, qDeleteProduct, id)
	return err
}

// AdjustStock applique delta par compare-and-set sur la valeur lue.
func (s *Products) AdjustStock(ctx context.Context, id int64, delta int) (int, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		var stock int
		if err := s.db.query(ctx, qSelectProductStock, id).Consistency(gocql.Consistency(gocql.Serial)).Scan(&stock); err != nil {
			return 0, notFound(err)
		}
		next := stock + delta
		if next < 0 {
			return stock, store.ErrInsufficientStock
		}
		applied, _, err := s.db.cas(ctx, qUpdateProductStock, next, id, stock)
		if err != nil {
			return 0, err
		}
		if applied {
			return next, nil
		}
		if err := backoff(ctx, attempt); err != nil {
			return 0, err
		}
	}
	return 0, store.ErrContention
}

func (s *Products) SetPricing(ctx context.Context, id int64, price float64, originalPrice *float64, onOffer bool) error {
	applied, _, err := s.db.cas(ctx, qUpdateProductPromo, price, originalPrice, onOffer, time.Now(), id)
	if err != nil {
		return err
	}
	if !applied {
		return store.ErrNotFound
	}
	return nil
}

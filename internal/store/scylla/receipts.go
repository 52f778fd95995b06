package scylla

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

type Receipts struct{ db *DB }

func scanReceipt(scan func(dest ...interface{}) error) (models.Receipt, error) {
	var r models.Receipt
	err := scan(&r.ID, &r.UserID, &r.EmittedAt, &r.Detail, &r.TotalPrice)
	return r, err
}

// Create n'écrase jamais un reçu existant.
func (s *Receipts) Create(ctx context.Context, r *models.Receipt) error {
	applied, _, err := s.db.cas(ctx, qInsertReceipt, r.ID, r.UserID, r.EmittedAt, r.Detail, r.TotalPrice)
	if err != nil {
		return err
	}
	if !applied {
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Receipts) Get(ctx context.Context, id int64) (*models.Receipt, error) {
	r, err := scanReceipt(s.db.query(ctx, qSelectReceipt, id).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Receipts) List(ctx context.Context) ([]models.Receipt, error) {
	iter := s.db.query(ctx, qSelectReceipts).Iter()
	scanner := iter.Scanner()
	out := make([]models.Receipt, 0)
	for scanner.Next() {
		r, err := scanReceipt(scanner.Scan)
		if err != nil {
			iter.Close()
			return nil, errors.Wrap(err, "scan receipt")
		}
		out = append(out, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "list receipts")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Receipts) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(s.db.query(ctx, qDeleteReceipt, id).Exec(), "delete receipt")
}

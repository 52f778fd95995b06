package scylla

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

type Reviews struct{ db *DB }

func scanReview(scan func(dest ...interface{}) error) (models.Review, error) {
	var r models.Review
	err := scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Comment, &r.Date)
	return r, err
}

func (s *Reviews) Create(ctx context.Context, r *models.Review) error {
	err := s.db.query(ctx, qInsertReview, r.ID, r.ProductID, r.UserID, r.Rating, r.Comment, r.Date).Exec()
	return errors.Wrap(err, "insert review")
}

func (s *Reviews) Get(ctx context.Context, id int64) (*models.Review, error) {
	r, err := scanReview(s.db.query(ctx, qSelectReview, id).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &r, nil
}

func (s *Reviews) List(ctx context.Context, productID *int64) ([]models.Review, error) {
	q := s.db.query(ctx, qSelectReviews)
	if productID != nil {
		q = s.db.query(ctx, qSelectReviewsByProd, *productID)
	}
	iter := q.Iter()
	scanner := iter.Scanner()
	out := make([]models.Review, 0)
	for scanner.Next() {
		r, err := scanReview(scanner.Scan)
		if err != nil {
			iter.Close()
			return nil, errors.Wrap(err, "scan review")
		}
		out = append(out, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "list reviews")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Reviews) Update(ctx context.Context, r *models.Review) error {
	applied, _, err := s.db.cas(ctx, qUpdateReview, r.Rating, r.Comment, r.ID)
	if err != nil {
		return err
	}
	if !applied {
		return store.ErrNotFound
	}
	return nil
}

func (s *Reviews) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(s.db.query(ctx, qDeleteReview, id).Exec(), "delete review")
}

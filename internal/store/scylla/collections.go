package scylla

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

type Collections struct{ db *DB }

func scanCollection(scan func(dest ...interface{}) error) (models.Collection, error) {
	var c models.Collection
	err := scan(&c.ID, &c.Name, &c.Description, &c.ProductIDs, &c.UpdatedAt)
	return c, err
}

func (s *Collections) Create(ctx context.Context, c *models.Collection) error {
	err := s.db.query(ctx, qInsertCatalog, c.ID, c.Name, c.Description, c.ProductIDs, c.UpdatedAt).Exec()
	return errors.Wrap(err, "insert catalog")
}

func (s *Collections) Get(ctx context.Context, id int64) (*models.Collection, error) {
	c, err := scanCollection(s.db.query(ctx, qSelectCatalog, id).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (s *Collections) List(ctx context.Context) ([]models.Collection, error) {
	iter := s.db.query(ctx, qSelectCatalogs).Iter()
	scanner := iter.Scanner()
	out := make([]models.Collection, 0)
	for scanner.Next() {
		c, err := scanCollection(scanner.Scan)
		if err != nil {
			iter.Close()
			return nil, errors.Wrap(err, "scan catalog")
		}
		out = append(out, c)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "list catalogs")
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Collections) Update(ctx context.Context, c *models.Collection) error {
	applied, _, err := s.db.cas(ctx, qUpdateCatalog, c.Name, c.Description, c.ProductIDs, c.UpdatedAt, c.ID)
	if err != nil {
		return err
	}
	if !applied {
		return store.ErrNotFound
	}
	return nil
}

func (s *Collections) Delete(ctx context.Context, id int64) error {
	return errors.Wrap(s.db.query(ctx, qDeleteCatalog, id).Exec(), "delete catalog")
}

// Package scylla implémente les dépôts sur ScyllaDB. Les invariants de
// concurrence reposent sur les transactions légères (IF ...) : compteurs,
// stock conditionnel, offre active unique par produit, codes et emails uniques.
package scylla

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"

	"reviere_back_end/internal/store"
)

// maxCASAttempts borne les boucles lecture / écriture conditionnelle.
const maxCASAttempts = 32

type DB struct {
	session *gocql.Session
}

// New retourne les dépôts Scylla. Les paniers vivent dans Redis et sont
// câblés séparément.
func New(session *gocql.Session) store.Stores {
	db := &DB{session: session}
	return store.Stores{
		Counter:  &Counter{db},
		Products: &Products{db},
		Offers:   &Offers{db},
		Coupons:  &Coupons{db},
		Receipts: &Receipts{db},
		Reviews:  &Reviews{db},
		Accounts: &Accounts{db},
		Catalogs: &Collections{db},
	}
}

func (db *DB) query(ctx context.Context, stmt string, args ...interface{}) *gocql.Query {
	return db.session.Query(stmt, args...).WithContext(ctx)
}

// cas exécute une écriture conditionnelle et retourne les colonnes actuelles
// quand la condition échoue.
func (db *DB) cas(ctx context.Context, stmt string, args ...interface{}) (bool, map[string]interface{}, error) {
	prev := make(map[string]interface{})
	applied, err := db.query(ctx, stmt, args...).MapScanCAS(prev)
	if err != nil {
		return false, nil, errors.Wrap(err, "lwt")
	}
	return applied, prev, nil
}

func notFound(err error) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return store.ErrNotFound
	}
	return err
}

func backoff(ctx context.Context, attempt int) error {
	d := time.Duration(1+rand.IntN(5*(attempt+1))) * time.Millisecond
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Counter alloue les identifiants séquentiels par compare-and-set.
type Counter struct{ db *DB }

func (c *Counter) NextID(ctx context.Context, namespace string) (int64, error) {
	for attempt := 0; attempt < maxCASAttempts; attempt++ {
		var current int64
		err := c.db.query(ctx, qSelectCounter, namespace).Consistency(gocql.Consistency(gocql.Serial)).Scan(&current)
		switch {
		case errors.Is(err, gocql.ErrNotFound):
			applied, _, err := c.db.cas(ctx, qInsertCounter, namespace)
			if err != nil {
				return 0, err
			}
			if applied {
				return 1, nil
			}
		case err != nil:
			return 0, errors.Wrap(err, "read counter")
		default:
			applied, _, err := c.db.cas(ctx, qUpdateCounter, current+1, namespace, current)
			if err != nil {
				return 0, err
			}
			if applied {
				return current + 1, nil
			}
		}
		if err := backoff(ctx, attempt); err != nil {
			return 0, err
		}
	}
	return 0, store.ErrContention
}

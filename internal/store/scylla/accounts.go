package scylla

import (
	"context"
	"strings"

	"github.com/gocql/gocql"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

// Accounts partitionne les comptes par type ; l'email est unique par type.
type Accounts struct{ db *DB }

func scanAccount(scan func(dest ...interface{}) error) (models.Account, error) {
	var a models.Account
	err := scan(&a.Kind, &a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.CompanyID,
		&a.Phone, &a.Address, &a.Description, &a.LogoURL, &a.Provider, &a.CreatedAt)
	return a, err
}

func (s *Accounts) claimEmail(ctx context.Context, kind, email string, id int64) error {
	applied, prev, err := s.db.cas(ctx, qClaimAccountEmail, kind, strings.ToLower(email), id)
	if err != nil {
		return err
	}
	if !applied {
		if holder, ok := prev["account_id"].(int64); ok && holder == id {
			return nil
		}
		return store.ErrAlreadyExists
	}
	return nil
}

func (s *Accounts) releaseEmail(ctx context.Context, kind, email string, id int64) {
	if _, _, err := s.db.cas(ctx, qReleaseAccountMail, kind, strings.ToLower(email), id); err != nil {
		log.WithError(err).WithField("kind", kind).Warn("⚠️ Libération de l'email échouée")
	}
}

func (s *Accounts) write(ctx context.Context, a *models.Account) error {
	err := s.db.query(ctx, qInsertAccount,
		a.Kind, a.ID, a.Name, a.Email, a.PasswordHash, a.CompanyID,
		a.Phone, a.Address, a.Description, a.LogoURL, a.Provider, a.CreatedAt).Exec()
	return errors.Wrap(err, "write account")
}

func (s *Accounts) Create(ctx context.Context, a *models.Account) error {
	if err := s.claimEmail(ctx, a.Kind, a.Email, a.ID); err != nil {
		return err
	}
	if err := s.write(ctx, a); err != nil {
		s.releaseEmail(ctx, a.Kind, a.Email, a.ID)
		return err
	}
	return nil
}

func (s *Accounts) Get(ctx context.Context, kind string, id int64) (*models.Account, error) {
	a, err := scanAccount(s.db.query(ctx, qSelectAccount, kind, id).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *Accounts) GetByEmail(ctx context.Context, kind, email string) (*models.Account, error) {
	var id int64
	err := s.db.query(ctx, qSelectAccountEmail, kind, strings.ToLower(email)).Consistency(gocql.Consistency(gocql.Serial)).Scan(&id)
	if err != nil {
		return nil, notFound(err)
	}
	return s.Get(ctx, kind, id)
}

func (s *Accounts) List(ctx context.Context, kind string) ([]models.Account, error) {
	iter := s.db.query(ctx, qSelectAccounts, kind).Iter()
	scanner := iter.Scanner()
	out := make([]models.Account, 0)
	for scanner.Next() {
		a, err := scanAccount(scanner.Scan)
		if err != nil {
			iter.Close()
			return nil, errors.Wrap(err, "scan account")
		}
		out = append(out, a)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "list accounts")
	}
	return out, nil
}

func (s *Accounts) Update(ctx context.Context, a *models.Account) error {
	cur, err := s.Get(ctx, a.Kind, a.ID)
	if err != nil {
		return err
	}
	emailChanged := !strings.EqualFold(cur.Email, a.Email)
	if emailChanged {
		if err := s.claimEmail(ctx, a.Kind, a.Email, a.ID); err != nil {
			return err
		}
	}
	if err := s.write(ctx, a); err != nil {
		if emailChanged {
			s.releaseEmail(ctx, a.Kind, a.Email, a.ID)
		}
		return err
	}
	if emailChanged {
		s.releaseEmail(ctx, cur.Kind, cur.Email, a.ID)
	}
	return nil
}

func (s *Accounts) Delete(ctx context.Context, kind string, id int64) error {
	cur, err := s.Get(ctx, kind, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.db.query(ctx, qDeleteAccount, kind, id).Exec(); err != nil {
		return errors.Wrap(err, "delete account")
	}
	s.releaseEmail(ctx, kind, cur.Email, id)
	return nil
}

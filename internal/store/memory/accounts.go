package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

type accountKey struct {
	kind string
	id   int64
}

type Accounts struct {
	mu      sync.RWMutex
	items   map[accountKey]models.Account
	byEmail map[string]int64 // kind + "|" + email
}

func NewAccounts() *Accounts {
	return &Accounts{items: make(map[accountKey]models.Account), byEmail: make(map[string]int64)}
}

func emailKey(kind, email string) string {
	return kind + "|" + strings.ToLower(email)
}

func (s *Accounts) Create(ctx context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := emailKey(a.Kind, a.Email)
	if _, ok := s.byEmail[key]; ok {
		return store.ErrAlreadyExists
	}
	s.items[accountKey{a.Kind, a.ID}] = copyAccount(*a)
	s.byEmail[key] = a.ID
	return nil
}

func (s *Accounts) Get(ctx context.Context, kind string, id int64) (*models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.items[accountKey{kind, id}]
	if !ok {
		return nil, store.ErrNotFound
	}
	out := copyAccount(a)
	return &out, nil
}

func (s *Accounts) GetByEmail(ctx context.Context, kind, email string) (*models.Account, error) {
	s.mu.RLock()
	id, ok := s.byEmail[emailKey(kind, email)]
	s.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.Get(ctx, kind, id)
}

func (s *Accounts) List(ctx context.Context, kind string) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Account
	for k, a := range s.items {
		if k.kind == kind {
			out = append(out, copyAccount(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Accounts) Update(ctx context.Context, a *models.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := accountKey{a.Kind, a.ID}
	cur, ok := s.items[key]
	if !ok {
		return store.ErrNotFound
	}
	if !strings.EqualFold(cur.Email, a.Email) {
		if _, taken := s.byEmail[emailKey(a.Kind, a.Email)]; taken {
			return store.ErrAlreadyExists
		}
		delete(s.byEmail, emailKey(cur.Kind, cur.Email))
		s.byEmail[emailKey(a.Kind, a.Email)] = a.ID
	}
	s.items[key] = copyAccount(*a)
	return nil
}

func (s *Accounts) Delete(ctx context.Context, kind string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := accountKey{kind, id}
	if a, ok := s.items[key]; ok {
		delete(s.byEmail, emailKey(a.Kind, a.Email))
		delete(s.items, key)
	}
	return nil
}

func copyAccount(a models.Account) models.Account {
	if a.CompanyID != nil {
		v := *a.CompanyID
		a.CompanyID = &v
	}
	return a
}

// Package account gère les comptes utilisateur, entreprise et employé, ainsi
// que l'émission des jetons de session.
package account

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/apperr"
	"reviere_back_end/internal/auth"
	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

var (
	ErrAccountNotFound    = apperr.NotFound("Usuario no encontrado")
	ErrCompanyNotFound    = apperr.NotFound("Empresa no encontrada")
	ErrMissingFields      = apperr.Validation("Faltan campos obligatorios")
	ErrInvalidEmail       = apperr.Validation("Email no válido")
	ErrEmailTaken         = apperr.Conflict("El email ya está registrado")
	ErrInvalidCredentials = apperr.Unauthorized("Credenciales inválidas")
	ErrOrphanEmployee     = apperr.Forbidden("Este empleado no está asociado a ninguna empresa válida.")
)

var namespaces = map[string]string{
	models.AccountUser:     store.NSUsers,
	models.AccountCompany:  store.NSCompanies,
	models.AccountEmployee: store.NSEmployees,
}

type RegisterRequest struct {
	Name        string `json:"nombre"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"telefono"`
	Address     string `json:"direccion"`
	Description string `json:"descripcion"`
	LogoURL     string `json:"logo_url"`
	CompanyID   *int64 `json:"id_empresa"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateRequest struct {
	Name     *string `json:"nombre"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Phone    *string `json:"telefono"`
	Address  *string `json:"direccion"`
}

// OAuthProfile est le profil renvoyé par un fournisseur OAuth.
type OAuthProfile struct {
	Provider string
	Email    string
	Name     string
}

// Session est le résultat d'une connexion réussie.
type Session struct {
	Account *models.Account
	Company *models.Account
	Token   string
}

type Tokens interface {
	Issue(a models.Account) (string, error)
}

// Welcomer est prévenu après chaque création de compte utilisateur.
type Welcomer interface {
	AccountCreated(ctx context.Context, a models.Account)
}

type Service struct {
	accounts store.AccountStore
	counter  store.Counter
	tokens   Tokens
	welcomer Welcomer
	now      func() time.Time
}

func NewService(accounts store.AccountStore, counter store.Counter, tokens Tokens) *Service {
	return &Service{accounts: accounts, counter: counter, tokens: tokens, now: time.Now}
}

func (s *Service) WithWelcomer(w Welcomer) *Service {
	s.welcomer = w
	return s
}

func (s *Service) welcome(ctx context.Context, a *models.Account) {
	if s.welcomer != nil && a.Kind == models.AccountUser {
		s.welcomer.AccountCreated(ctx, *a)
	}
}

// Register crée un compte du type donné. Un employé doit référencer une entreprise existante.
func (s *Service) Register(ctx context.Context, kind string, req RegisterRequest) (*models.Account, error) {
	ns, ok := namespaces[kind]
	if !ok {
		return nil, apperr.Validation("Tipo de cuenta no válido")
	}
	if strings.TrimSpace(req.Name) == "" || req.Email == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return nil, ErrInvalidEmail
	}
	if kind == models.AccountCompany && req.LogoURL == "" {
		return nil, ErrMissingFields
	}
	if kind == models.AccountEmployee {
		if req.CompanyID == nil {
			return nil, ErrMissingFields
		}
		if _, err := s.accounts.Get(ctx, models.AccountCompany, *req.CompanyID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrCompanyNotFound
			}
			return nil, apperr.Upstream("get company", err)
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Upstream("hash password", err)
	}

	id, err := s.counter.NextID(ctx, ns)
	if err != nil {
		return nil, apperr.Upstream("allocate account id", err)
	}

	a := &models.Account{
		Kind:         kind,
		ID:           id,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		Phone:        req.Phone,
		Address:      req.Address,
		Description:  req.Description,
		LogoURL:      req.LogoURL,
		CreatedAt:    s.now(),
	}
	if kind == models.AccountEmployee {
		a.CompanyID = req.CompanyID
	}

	if err := s.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, apperr.Upstream("create account", err)
	}
	log.WithFields(log.Fields{"kind": kind, "account_id": a.ID}).Info("✅ Compte créé")
	s.welcome(ctx, a)
	return a, nil
}

// Login vérifie les identifiants et émet un jeton. Un employé dont l'entreprise
// n'existe plus est refusé.
func (s *Service) Login(ctx context.Context, kind string, req LoginRequest) (*Session, error) {
	if req.Email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}
	a, err := s.accounts.GetByEmail(ctx, kind, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Upstream("get account by email", err)
	}
	ok, err := auth.VerifyPassword(req.Password, a.PasswordHash)
	if err != nil || !ok {
		return nil, ErrInvalidCredentials
	}

	session := &Session{Account: a}
	if kind == models.AccountEmployee {
		if a.CompanyID == nil {
			return nil, ErrOrphanEmployee
		}
		company, err := s.accounts.Get(ctx, models.AccountCompany, *a.CompanyID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrOrphanEmployee
			}
			return nil, apperr.Upstream("get employee company", err)
		}
		session.Company = company
	}

	if session.Token, err = s.tokens.Issue(*a); err != nil {
		return nil, apperr.Upstream("issue token", err)
	}
	log.WithFields(log.Fields{"kind": kind, "account_id": a.ID}).Info("🔐 Connexion réussie")
	return session, nil
}

// OAuthLogin connecte ou crée l'utilisateur correspondant au profil du fournisseur.
func (s *Service) OAuthLogin(ctx context.Context, profile OAuthProfile) (*Session, error) {
	if profile.Email == "" {
		return nil, apperr.Validation("El proveedor no devolvió un email")
	}
	email := strings.ToLower(profile.Email)

	a, err := s.accounts.GetByEmail(ctx, models.AccountUser, email)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		id, err := s.counter.NextID(ctx, store.NSUsers)
		if err != nil {
			return nil, apperr.Upstream("allocate account id", err)
		}
		name := profile.Name
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		a = &models.Account{
			Kind:      models.AccountUser,
			ID:        id,
			Name:      name,
			Email:     email,
			Provider:  profile.Provider,
			CreatedAt: s.now(),
		}
		if err := s.accounts.Create(ctx, a); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return s.OAuthLogin(ctx, profile)
			}
			return nil, apperr.Upstream("create oauth account", err)
		}
		log.WithFields(log.Fields{"account_id": a.ID, "provider": profile.Provider}).Info("✅ Compte OAuth créé")
		s.welcome(ctx, a)
	default:
		return nil, apperr.Upstream("get account by email", err)
	}

	token, err := s.tokens.Issue(*a)
	if err != nil {
		return nil, apperr.Upstream("issue token", err)
	}
	return &Session{Account: a, Token: token}, nil
}

func (s *Service) Get(ctx context.Context, kind string, id int64) (*models.Account, error) {
	a, err := s.accounts.Get(ctx, kind, id)
	if err != nil {
		return nil, translate("get account", err)
	}
	return a, nil
}

func (s *Service) List(ctx context.Context, kind string) ([]models.Account, error) {
	accounts, err := s.accounts.List(ctx, kind)
	if err != nil {
		return nil, apperr.Upstream("list accounts", err)
	}
	if accounts == nil {
		accounts = []models.Account{}
	}
	return accounts, nil
}

func (s *Service) Update(ctx context.Context, kind string, id int64, req UpdateRequest) (*models.Account, error) {
	a, err := s.accounts.Get(ctx, kind, id)
	if err != nil {
		return nil, translate("get account", err)
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		a.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		if _, err := mail.ParseAddress(*req.Email); err != nil {
			return nil, ErrInvalidEmail
		}
		a.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Password != nil && *req.Password != "" {
		if a.PasswordHash, err = auth.HashPassword(*req.Password); err != nil {
			return nil, apperr.Upstream("hash password", err)
		}
	}
	if req.Phone != nil {
		a.Phone = *req.Phone
	}
	if req.Address != nil {
		a.Address = *req.Address
	}
	if err := s.accounts.Update(ctx, a); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, translate("update account", err)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, kind string, id int64) error {
	if _, err := s.Get(ctx, kind, id); err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, kind, id); err != nil {
		return apperr.Upstream("delete account", err)
	}
	log.WithFields(log.Fields{"kind": kind, "account_id": id}).Info("🗑️ Compte supprimé")
	return nil
}

// UserName sert la jointure des reçus.
func (s *Service) UserName(ctx context.Context, userID int64) (string, error) {
	a, err := s.Get(ctx, models.AccountUser, userID)
	if err != nil {
		return "", err
	}
	return a.Name, nil
}

// UserEmail sert l'envoi des reçus par e-mail.
func (s *Service) UserEmail(ctx context.Context, userID int64) (string, string, error) {
	a, err := s.Get(ctx, models.AccountUser, userID)
	if err != nil {
		return "", "", err
	}
	return a.Email, a.Name, nil
}

func translate(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrAccountNotFound
	}
	return apperr.Upstream(op, err)
}

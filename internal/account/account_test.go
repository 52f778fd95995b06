package account

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviere_back_end/internal/auth"
	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store/memory"
)

type fixture struct {
	svc      *Service
	accounts *memory.Accounts
	tokens   *auth.TokenManager
}

func setup(t *testing.T) fixture {
	t.Helper()
	f := fixture{accounts: memory.NewAccounts(), tokens: auth.NewTokenManager("test-secret", time.Hour)}
	f.svc = NewService(f.accounts, memory.NewCounter(), f.tokens)
	return f
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	a, err := f.svc.Register(ctx, models.AccountUser, RegisterRequest{Name: "Ana", Email: "Ana@Mail.com", Password: "clave"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, "ana@mail.com", a.Email)
	assert.NotEqual(t, "clave", a.PasswordHash)

	_, err = f.svc.Register(ctx, models.AccountUser, RegisterRequest{Name: "Otra", Email: "ana@mail.com", Password: "x"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	session, err := f.svc.Login(ctx, models.AccountUser, LoginRequest{Email: "ana@mail.com", Password: "clave"})
	require.NoError(t, err)
	claims, err := f.tokens.Parse(session.Token)
	require.NoError(t, err)
	assert.Equal(t, a.ID, claims.AccountID)
	assert.Equal(t, models.AccountUser, claims.Role)

	_, err = f.svc.Login(ctx, models.AccountUser, LoginRequest{Email: "ana@mail.com", Password: "mala"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Login(ctx, models.AccountCompany, LoginRequest{Email: "ana@mail.com", Password: "clave"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "accounts are scoped by kind")
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Register(ctx, models.AccountUser, RegisterRequest{Name: "Ana", Email: "no-es-email", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.svc.Register(ctx, models.AccountUser, RegisterRequest{Email: "a@b.mx", Password: "x"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestEmployeeLoginRequiresLiveCompany(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.Register(ctx, models.AccountCompany, RegisterRequest{Name: "Papelería Sol", Email: "sol@empresa.mx", Password: "x"})
	assert.ErrorIs(t, err, ErrMissingFields, "a company needs a logo")

	company, err := f.svc.Register(ctx, models.AccountCompany, RegisterRequest{Name: "Papelería Sol", Email: "sol@empresa.mx", Password: "x", LogoURL: "https://cdn.mx/sol.png"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, models.AccountEmployee, RegisterRequest{Name: "Luis", Email: "luis@empresa.mx", Password: "y", CompanyID: ptr(int64(99))})
	assert.ErrorIs(t, err, ErrCompanyNotFound)

	employee, err := f.svc.Register(ctx, models.AccountEmployee, RegisterRequest{Name: "Luis", Email: "luis@empresa.mx", Password: "y", CompanyID: &company.ID})
	require.NoError(t, err)

	session, err := f.svc.Login(ctx, models.AccountEmployee, LoginRequest{Email: "luis@empresa.mx", Password: "y"})
	require.NoError(t, err)
	assert.Equal(t, employee.ID, session.Account.ID)
	assert.Equal(t, "Papelería Sol", session.Company.Name)

	require.NoError(t, f.svc.Delete(ctx, models.AccountCompany, company.ID))
	_, err = f.svc.Login(ctx, models.AccountEmployee, LoginRequest{Email: "luis@empresa.mx", Password: "y"})
	assert.ErrorIs(t, err, ErrOrphanEmployee)
}

func TestOAuthLoginCreatesOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	first, err := f.svc.OAuthLogin(ctx, OAuthProfile{Provider: "google", Email: "Eva@gmail.com", Name: "Eva"})
	require.NoError(t, err)
	second, err := f.svc.OAuthLogin(ctx, OAuthProfile{Provider: "google", Email: "eva@gmail.com"})
	require.NoError(t, err)

	assert.Equal(t, first.Account.ID, second.Account.ID)
	assert.Equal(t, "google", second.Account.Provider)

	users, err := f.svc.List(ctx, models.AccountUser)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	_, err = f.svc.Login(ctx, models.AccountUser, LoginRequest{Email: "eva@gmail.com", Password: "cualquiera"})
	assert.ErrorIs(t, err, ErrInvalidCredentials, "oauth accounts have no password")
}

func TestUpdateAndUserName(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a, err := f.svc.Register(ctx, models.AccountUser, RegisterRequest{Name: "Ana", Email: "ana@mail.com", Password: "clave"})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, models.AccountUser, a.ID, UpdateRequest{Name: ptr("Ana María"), Password: ptr("nueva")})
	require.NoError(t, err)

	name, err := f.svc.UserName(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana María", name)

	_, err = f.svc.Login(ctx, models.AccountUser, LoginRequest{Email: "ana@mail.com", Password: "nueva"})
	assert.NoError(t, err)

	_, err = f.svc.UserName(ctx, 404)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func ptr[T any](v T) *T { return &v }

type welcomes []int64

func (w *welcomes) AccountCreated(_ context.Context, a models.Account) { *w = append(*w, a.ID) }

func TestWelcomeOnlyForUsers(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	var w welcomes
	f.svc.WithWelcomer(&w)

	_, err := f.svc.Register(ctx, models.AccountCompany, RegisterRequest{Name: "Papelería", Email: "p@mail.com", Password: "x", LogoURL: "logo.png"})
	require.NoError(t, err)
	u, err := f.svc.Register(ctx, models.AccountUser, RegisterRequest{Name: "Ana", Email: "ana@mail.com", Password: "clave"})
	require.NoError(t, err)
	_, err = f.svc.OAuthLogin(ctx, OAuthProfile{Provider: "github", Email: "ana@mail.com"})
	require.NoError(t, err)

	assert.Equal(t, welcomes{u.ID}, w)
}

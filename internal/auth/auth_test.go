package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"reviere_back_end/internal/models"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3creta")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	ok, err := VerifyPassword("s3creta", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("otra", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyPasswordAcceptsBcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("antigua"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := VerifyPassword("antigua", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("nueva", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTokenManager(t *testing.T) {
	company := int64(4)
	m := NewTokenManager("secret", time.Hour)
	token, err := m.Issue(models.Account{Kind: models.AccountEmployee, ID: 12, Email: "e@x.mx", CompanyID: &company})
	require.NoError(t, err)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(12), claims.AccountID)
	assert.Equal(t, models.AccountEmployee, claims.Role)
	require.NotNil(t, claims.CompanyID)
	assert.Equal(t, int64(4), *claims.CompanyID)

	_, err = NewTokenManager("other", time.Hour).Parse(token)
	assert.Error(t, err)

	expired := NewTokenManager("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Parse(token)
	assert.Error(t, err)
}

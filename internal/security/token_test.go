package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const testSecret = "test-secret-0123456789abcdef0123456789"

func TestGenerateAndValidateAccessToken(t *testing.T) {
	m := NewTokenManager(testSecret)

	token, err := m.GenerateAccessToken("u-1", "worker@site.com", "MANAGER")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "worker@site.com", claims.Email)
	assert.Equal(t, "MANAGER", claims.Role)
	assert.Equal(t, TokenTypeAccess, claims.Type)
	assert.Equal(t, "safesite-auth", claims.Issuer)
}

func TestGenerateAndValidateRefreshToken(t *testing.T) {
	m := NewTokenManager(testSecret)

	token, err := m.GenerateRefreshToken("u-1", "worker@site.com")
	assert.NoError(t, err)

	claims, err := m.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, claims.Type)
	assert.Empty(t, claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	m := NewTokenManager(testSecret)
	other := NewTokenManager("another-secret-fedcba9876543210fedcba98")

	token, err := m.GenerateAccessToken("u-1", "worker@site.com", "MANAGER")
	assert.NoError(t, err)

	claims, err := other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestValidateToken_Malformed(t *testing.T) {
	m := NewTokenManager(testSecret)

	claims, err := m.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestValidateToken_FillsUserIDFromSubject(t *testing.T) {
	m := NewTokenManager(testSecret)

	token, err := m.GenerateAccessToken("u-7", "worker@site.com", "MANAGER")
	assert.NoError(t, err)

	claims, err := m.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, claims.Subject, claims.UserID)
}

func TestTokensCarryUniqueIDs(t *testing.T) {
	m := NewTokenManager(testSecret)

	first, err := m.GenerateAccessToken("u-1", "worker@site.com", "MANAGER")
	assert.NoError(t, err)
	time.Sleep(time.Microsecond)
	second, err := m.GenerateAccessToken("u-1", "worker@site.com", "MANAGER")
	assert.NoError(t, err)

	a, err := m.ValidateToken(first)
	assert.NoError(t, err)
	b, err := m.ValidateToken(second)
	assert.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

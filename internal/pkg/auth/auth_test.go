package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osasdev/osas/internal/app/models"
)

func testService(accessExp time.Duration) *JWTService {
	return NewJWTService(JWTConfig{
		SecretKey:       "unit-test-secret",
		AccessTokenExp:  accessExp,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "osas.test",
	})
}

func TestGenerateAndValidateTokenPair(t *testing.T) {
	svc := testService(time.Hour)
	user := &models.User{ID: 7, Username: "admin", Role: models.RoleAdmin}

	access, refresh, expiresIn, refreshExpiresIn, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)
	assert.Equal(t, 3600, expiresIn)
	assert.Equal(t, 86400, refreshExpiresIn)

	claims, err := svc.ValidateToken(access)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "osas.test", claims.Issuer)
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	svc := testService(-time.Minute)
	access, _, _, _, err := svc.GenerateTokenPair(&models.User{ID: 1, Username: "u", Role: models.RoleStaff})
	require.NoError(t, err)

	_, err = svc.ValidateToken(access)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	access, _, _, _, err := testService(time.Hour).GenerateTokenPair(&models.User{ID: 1, Username: "u", Role: models.RoleStaff})
	require.NoError(t, err)

	other := NewJWTService(JWTConfig{SecretKey: "another-secret", AccessTokenExp: time.Hour})
	_, err = other.ValidateToken(access)
	assert.Error(t, err)
}

func TestRefreshTokensAreUnique(t *testing.T) {
	svc := testService(time.Hour)
	user := &models.User{ID: 1, Username: "u", Role: models.RoleStaff}

	_, first, _, _, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	_, second, _, _, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ExtractBearerToken("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = ExtractBearerToken("Bearer")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Sup3r-Secret!")
	require.NoError(t, err)
	assert.NotEqual(t, "Sup3r-Secret!", hash)

	assert.True(t, CheckPassword(hash, "Sup3r-Secret!"))
	assert.False(t, CheckPassword(hash, "wrong-password"))
	assert.False(t, CheckPassword("not-a-hash", "Sup3r-Secret!"))
}

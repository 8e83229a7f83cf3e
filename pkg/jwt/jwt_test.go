package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateAndParse(t *testing.T) {
	tok, err := Generate(secret, "u-1", "c-1", "admin", "telar-erp", 5)
	require.NoError(t, err)

	claims, err := Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "c-1", claims.CompanyID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "telar-erp", claims.Issuer)
}

func TestParse_WrongSecret(t *testing.T) {
	tok, err := Generate(secret, "u-1", "c-1", "admin", "telar-erp", 5)
	require.NoError(t, err)
	_, err = Parse("other", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Expired(t *testing.T) {
	tok, err := Generate(secret, "u-1", "c-1", "admin", "telar-erp", -1)
	require.NoError(t, err)
	_, err = Parse(secret, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_MissingCompany(t *testing.T) {
	claims := Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Minute))},
		UserID:           "u-1",
	}
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = Parse(secret, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestGenerate_EmptySecret(t *testing.T) {
	_, err := Generate("", "u", "c", "admin", "x", 5)
	assert.Error(t, err)
}

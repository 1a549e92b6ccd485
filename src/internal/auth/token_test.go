// FILE: src/internal/auth/token_test.go
package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestTokenVerifier(t *testing.T) {
	logger := log.NewLogger()

	v, err := NewTokenVerifier("test-secret", logger)
	require.NoError(t, err)

	t.Run("ValidToken", func(t *testing.T) {
		token := signedToken(t, "test-secret", jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		assert.True(t, v.Verify(token))
	})

	t.Run("WrongSecret", func(t *testing.T) {
		token := signedToken(t, "other-secret", jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		assert.False(t, v.Verify(token))
	})

	t.Run("ExpiredToken", func(t *testing.T) {
		token := signedToken(t, "test-secret", jwt.MapClaims{
			"exp": time.Now().Add(-time.Hour).Unix(),
		})
		assert.False(t, v.Verify(token))
	})

	t.Run("Garbage", func(t *testing.T) {
		assert.False(t, v.Verify("not-a-token"))
	})
}

func TestVerifyHeader(t *testing.T) {
	logger := log.NewLogger()
	v, err := NewTokenVerifier("test-secret", logger)
	require.NoError(t, err)

	token := signedToken(t, "test-secret", jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	assert.True(t, v.VerifyHeader("Bearer "+token))
	assert.False(t, v.VerifyHeader(token), "scheme prefix is required")
	assert.False(t, v.VerifyHeader("Basic dXNlcjpwYXNz"))
	assert.False(t, v.VerifyHeader(""))
}

func TestNewTokenVerifierRequiresSecret(t *testing.T) {
	_, err := NewTokenVerifier("", log.NewLogger())
	assert.Error(t, err)
}

// FILE: src/internal/auth/token.go
// Package auth verifies bearer tokens presented by ingest clients.
package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lixenwraith/log"
)

// TokenVerifier validates HS256-signed JWTs against a shared secret
type TokenVerifier struct {
	secret []byte
	logger *log.Logger
}

// NewTokenVerifier creates a verifier. The secret must be non-empty.
func NewTokenVerifier(secret string, logger *log.Logger) (*TokenVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("ingest auth requires a non-empty jwt_secret")
	}
	return &TokenVerifier{
		secret: []byte(secret),
		logger: logger,
	}, nil
}

// VerifyHeader checks an Authorization header value of the form
// "Bearer <token>"
func (v *TokenVerifier) VerifyHeader(header string) bool {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	return v.Verify(header[len(prefix):])
}

// Verify reports whether the token is validly signed and unexpired
func (v *TokenVerifier) Verify(tokenString string) bool {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		v.logger.Debug("msg", "Token verification failed",
			"component", "auth",
			"error", err)
		return false
	}
	return token.Valid
}

// Package auth consumes the session tokens minted by the identity
// provider. It does not implement the sign-in protocol itself; it only
// answers "which user is this request for" and announces sign-in /
// sign-out transitions to interested parties (the cache).
package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/berningb/dream-speak-sub000/internal/domain"
)

// Verifier validates HMAC-signed session tokens and extracts the user id.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// Verify parses and validates a raw bearer token, returning the user id.
func (v *Verifier) Verify(raw string) (domain.UserID, error) {
	var claims sessionClaims
	tkn, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("parse session token: %w", err)
	}
	if !tkn.Valid || claims.UserID == "" {
		return "", domain.ErrNotAuthenticated
	}
	return domain.UserID(claims.UserID), nil
}

// Package auth verifies session tokens minted by the hosted identity
// provider. This service never issues tokens or stores users; it only checks
// the HS256 signature against the shared secret and reads the subject claim.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthenticated = errors.New("authentication required")

type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(secret, issuer string) *Verifier {
	return &Verifier{secret: []byte(secret), issuer: issuer}
}

// OwnerID returns the authenticated tenant id for a request, or
// ErrUnauthenticated. Every failure mode maps to the same error so callers
// cannot distinguish a missing token from a forged one.
func (v *Verifier) OwnerID(r *http.Request) (string, error) {
	if len(v.secret) == 0 {
		return "", ErrUnauthenticated
	}
	const prefix = "Bearer "
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, prefix) {
		return "", ErrUnauthenticated
	}
	tokenString := strings.TrimSpace(header[len(prefix):])

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil || !token.Valid {
		return "", ErrUnauthenticated
	}
	if v.issuer != "" && claims.Issuer != v.issuer {
		return "", ErrUnauthenticated
	}
	if claims.Subject == "" {
		return "", ErrUnauthenticated
	}
	return claims.Subject, nil
}

// Package auth turns bearer tokens into Principals. Tokens are signed
// elsewhere; NewToken exists for the seed tool and tests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/civicpulse/civic-server/internal/models"
)

// Claims is the JWT payload carried by platform tokens.
type Claims struct {
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts the claims into the actor the core consumes. Roles
// are passed through verbatim so unknown roles reach the scope resolver.
func (c *Claims) Principal() models.Principal {
	p := models.Principal{Role: models.Role(c.Role), Identity: c.Email}
	if c.Department != "" {
		d := models.Department(c.Department)
		if parsed, ok := models.ParseDepartment(c.Department); ok {
			d = parsed
		}
		p.Department = &d
	}
	return p
}

// ParseToken verifies an HS256 token and returns its principal.
func ParseToken(tokenStr, secret string) (models.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return models.Principal{}, fmt.Errorf("parse token: %w", err)
	}
	if !token.Valid {
		return models.Principal{}, errors.New("invalid token")
	}
	if claims.Email == "" {
		return models.Principal{}, errors.New("token has no email claim")
	}
	return claims.Principal(), nil
}

// NewToken signs an HS256 token for u valid for ttl.
func NewToken(u *models.User, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		Email: u.Email,
		Role:  string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
	}
	if u.Department != nil {
		claims.Department = string(*u.Department)
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by the authentication middleware.
func FromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(models.Principal)
	return p, ok
}

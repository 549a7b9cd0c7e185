// Package tokens defines the JWT claims carried by access and refresh
// tokens and the helpers to mint and verify them. Both token kinds carry
// the same {email, subject, role} payload; they differ only in secret and
// lifetime.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/skvortsovm/shop-backend/internal/errs"
)

const (
	AccessTTL  = 15 * time.Minute
	RefreshTTL = 7 * 24 * time.Hour
)

type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is a verified {subject, email, role} triple derived from a
// valid access token. Handlers pass it into services as the capability
// for role- and ownership-gated operations.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   string
}

func Sign(email, subject, role string, exp time.Time, secret []byte) (string, error) {
	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func ClaimsFromToken(tokenStr string, secret []byte) (*Claims, error) {
	var claims Claims
	tkn, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, errors.New("unexpected sign method")
		}
		return secret, nil
	})
	if err != nil || !tkn.Valid {
		return nil, fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}
	return &claims, nil
}

func (c *Claims) Identity() (Identity, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: invalid subject", errs.ErrUnauthorized)
	}
	return Identity{UserID: id, Email: c.Email, Role: c.Role}, nil
}

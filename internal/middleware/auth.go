// Package middleware parses bearer access tokens into a verified
// identity and gates routes on it. The role check itself is a pure
// function over (required roles, actual role); handlers receive the
// identity as a value, never through ambient globals.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skvortsovm/shop-backend/internal/models"
	"github.com/skvortsovm/shop-backend/internal/tokens"
)

const identityKey = "identity"

// errorBody matches the error envelope the handlers emit, so a rejection
// here looks no different from one raised past the gate.
type errorBody struct {
	Kind    string `json:"error"`
	Message string `json:"message"`
}

type Auth struct {
	AccessSecret []byte
}

func NewAuth(accessSecret []byte) *Auth {
	return &Auth{AccessSecret: accessSecret}
}

func RoleAllowed(required []string, actual string) bool {
	for _, r := range required {
		if r == actual {
			return true
		}
	}
	return false
}

func (a *Auth) identityFromRequest(c echo.Context) (tokens.Identity, bool) {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(h, "Bearer ") {
		return tokens.Identity{}, false
	}

	claims, err := tokens.ClaimsFromToken(strings.TrimPrefix(h, "Bearer "), a.AccessSecret)
	if err != nil {
		return tokens.Identity{}, false
	}
	ident, err := claims.Identity()
	if err != nil {
		return tokens.Identity{}, false
	}
	return ident, true
}

// Optional resolves an identity when a valid bearer token is present and
// passes the request through either way.
func (a *Auth) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ident, ok := a.identityFromRequest(c); ok {
			c.Set(identityKey, ident)
		}
		return next(c)
	}
}

func (a *Auth) Require(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, ok := a.identityFromRequest(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, errorBody{"unauthorized", "unauthorized"})
		}
		c.Set(identityKey, ident)
		return next(c)
	}
}

func (a *Auth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return a.Require(func(c echo.Context) error {
		ident, _ := IdentityFrom(c)
		if !RoleAllowed([]string{models.RoleAdmin}, ident.Role) {
			return c.JSON(http.StatusForbidden, errorBody{"forbidden", "admin only"})
		}
		return next(c)
	})
}

// IdentityFrom returns the identity set by Require/Optional, if any.
func IdentityFrom(c echo.Context) (tokens.Identity, bool) {
	ident, ok := c.Get(identityKey).(tokens.Identity)
	return ident, ok
}

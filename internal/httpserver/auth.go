package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/skvortsovm/shop-backend/internal/auth"
	"github.com/skvortsovm/shop-backend/internal/cart"
	"github.com/skvortsovm/shop-backend/internal/logging"
	"github.com/skvortsovm/shop-backend/internal/middleware"
	"github.com/skvortsovm/shop-backend/internal/models"
)

const passwordMinLen = 6

type AuthHTTP struct {
	Svc     *auth.Service
	CartSvc *cart.Service
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return badRequest(c, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		l.Warn("register_error", "status", 400, "reason", "email and password required")
		return badRequest(c, "email and password required")
	}
	if len(req.Password) < passwordMinLen {
		l.Warn("register_error", "status", 400, "reason", "password too short")
		return badRequest(c, "password must be at least 6 characters")
	}
	if req.Name == "" || req.Phone == "" {
		l.Warn("register_error", "status", 400, "reason", "name and phone required")
		return badRequest(c, "name and phone required")
	}
	if req.Role != "" && !models.ValidRole(req.Role) {
		l.Warn("register_error", "status", 400, "reason", "unknown role")
		return badRequest(c, "unknown role")
	}

	user, err := h.Svc.Register(ctx, req.Email, req.Password, req.Name, req.Phone, req.Role)
	if err != nil {
		return writeError(c, err)
	}

	session, err := h.Svc.IssueSession(ctx, user)
	if err != nil {
		return writeError(c, err)
	}

	l.Info("register_success", "user_id", user.ID)
	return c.JSON(http.StatusCreated, echo.Map{
		"user":          user,
		"access_token":  session.AccessToken,
		"refresh_token": session.RefreshToken,
	})
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return badRequest(c, "invalid body")
	}

	user, err := h.Svc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		l.Warn("login_failed", "status", 401)
		return writeError(c, err)
	}

	session, err := h.Svc.IssueSession(ctx, user)
	if err != nil {
		return writeError(c, err)
	}

	// An anonymous shopper who logs in keeps their cart: merge it into
	// the account cart, best effort.
	if sid := c.Request().Header.Get(SessionHeader); sid != "" {
		if _, err := h.CartSvc.Merge(ctx, user.ID, sid); err != nil {
			l.Warn("login_cart_merge_error", "error", err)
		}
	}

	l.Info("login_success", "user_id", user.ID)
	return c.JSON(http.StatusOK, tokenPairResponse{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	})
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	ident, _ := middleware.IdentityFrom(c)
	if err := h.Svc.EndSession(ctx, ident.UserID); err != nil {
		l.Error("logout_error", "status", 500, "error", err)
		return writeError(c, err)
	}

	l.Info("logout_success", "user_id", ident.UserID)
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Refresh accepts the refresh token either in the JSON body or as a
// bearer header and returns a fresh access token only.
func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	var req refreshRequest
	_ = c.Bind(&req)

	raw := req.RefreshToken
	if raw == "" {
		if hdr := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(hdr, "Bearer ") {
			raw = strings.TrimPrefix(hdr, "Bearer ")
		}
	}
	if raw == "" {
		l.Warn("refresh_error", "status", 401, "reason", "no refresh token")
		return unauthorized(c)
	}

	accessToken, err := h.Svc.RotateAccessToken(ctx, raw)
	if err != nil {
		l.Warn("refresh_failed", "status", 401)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"access_token": accessToken})
}

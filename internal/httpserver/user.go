package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/skvortsovm/shop-backend/internal/logging"
	"github.com/skvortsovm/shop-backend/internal/middleware"
	"github.com/skvortsovm/shop-backend/internal/models"
	"github.com/skvortsovm/shop-backend/internal/user"
)

type UserHTTP struct {
	Svc *user.Service
}

func (h *UserHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	ident, _ := middleware.IdentityFrom(c)
	u, err := h.Svc.Get(ctx, ident, id)
	if err != nil {
		l.Warn("get_user_error", "error", err)
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_user_error", "status", 400, "error", err)
		return badRequest(c, "invalid body")
	}
	if req.Role != nil && !models.ValidRole(*req.Role) {
		l.Warn("update_user_error", "status", 400, "reason", "unknown role")
		return badRequest(c, "unknown role")
	}

	ident, _ := middleware.IdentityFrom(c)
	u, err := h.Svc.Update(ctx, ident, id, user.UpdateInput{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		l.Warn("update_user_error", "error", err)
		return writeError(c, err)
	}

	l.Info("user_updated", "user_id", id)
	return c.JSON(http.StatusOK, u)
}

func (h *UserHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid user id")
	}

	ident, _ := middleware.IdentityFrom(c)
	if err := h.Svc.Delete(ctx, ident, id); err != nil {
		l.Warn("delete_user_error", "error", err)
		return writeError(c, err)
	}

	l.Info("user_deleted", "user_id", id)
	return c.NoContent(http.StatusNoContent)
}

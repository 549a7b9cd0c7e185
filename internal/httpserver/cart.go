package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/skvortsovm/shop-backend/internal/cart"
	"github.com/skvortsovm/shop-backend/internal/logging"
	"github.com/skvortsovm/shop-backend/internal/middleware"
	"github.com/skvortsovm/shop-backend/internal/models"
	"github.com/skvortsovm/shop-backend/internal/tokens"
)

type CartHTTP struct {
	Svc *cart.Service
}

// resolve turns the request (bearer identity or X-Cart-Session header)
// into the caller's single cart. The session identifier is echoed back in
// the response header so guest clients can persist it.
func (h *CartHTTP) resolve(c echo.Context) (*models.Cart, error) {
	var ident *tokens.Identity
	if id, ok := middleware.IdentityFrom(c); ok {
		ident = &id
	}

	crt, sessionID, err := h.Svc.Resolve(c.Request().Context(), ident, c.Request().Header.Get(SessionHeader))
	if err != nil {
		return nil, err
	}
	if sessionID != "" {
		c.Response().Header().Set(SessionHeader, sessionID)
	}
	return crt, nil
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "cart.get")

	crt, err := h.resolve(c)
	if err != nil {
		l.Error("get_cart_error", "error", err)
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, crt)
}

func (h *CartHTTP) AddItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add_item")

	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_item_error", "status", 400, "error", err)
		return badRequest(c, "invalid body")
	}
	if req.ProductID == uuid.Nil || req.Quantity < 1 {
		l.Warn("add_item_error", "status", 400)
		return badRequest(c, "product_id and quantity>=1 required")
	}

	crt, err := h.resolve(c)
	if err != nil {
		return writeError(c, err)
	}

	crt, err = h.Svc.AddItem(ctx, crt, req.ProductID, req.Quantity)
	if err != nil {
		l.Error("add_item_error", "error", err)
		return writeError(c, err)
	}

	l.Info("item_added", "cart_id", crt.ID, "product_id", req.ProductID)
	return c.JSON(http.StatusCreated, crt)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_item")

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		return badRequest(c, "invalid item id")
	}

	var req updateItemRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_item_error", "status", 400, "error", err)
		return badRequest(c, "invalid body")
	}
	if req.Quantity < 1 {
		return badRequest(c, "quantity>=1 required")
	}

	crt, err := h.resolve(c)
	if err != nil {
		return writeError(c, err)
	}

	crt, err = h.Svc.UpdateItem(ctx, crt, itemID, req.Quantity)
	if err != nil {
		l.Warn("update_item_error", "error", err)
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, crt)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove_item")

	itemID, err := uuid.Parse(c.Param("itemId"))
	if err != nil {
		return badRequest(c, "invalid item id")
	}

	crt, err := h.resolve(c)
	if err != nil {
		return writeError(c, err)
	}

	crt, err = h.Svc.RemoveItem(ctx, crt, itemID)
	if err != nil {
		l.Warn("remove_item_error", "error", err)
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, crt)
}

func (h *CartHTTP) Clear(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	crt, err := h.resolve(c)
	if err != nil {
		return writeError(c, err)
	}

	crt, err = h.Svc.Clear(ctx, crt)
	if err != nil {
		l.Error("clear_cart_error", "error", err)
		return writeError(c, err)
	}

	l.Info("cart_cleared", "cart_id", crt.ID)
	return c.JSON(http.StatusOK, crt)
}

// Merge folds the anonymous cart named by X-Cart-Session into the
// authenticated user's cart.
func (h *CartHTTP) Merge(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.merge")

	ident, _ := middleware.IdentityFrom(c)
	sessionID := c.Request().Header.Get(SessionHeader)
	if sessionID == "" {
		return badRequest(c, "session header required")
	}

	crt, err := h.Svc.Merge(ctx, ident.UserID, sessionID)
	if err != nil {
		l.Error("merge_cart_error", "error", err)
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, crt)
}

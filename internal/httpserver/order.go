package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/skvortsovm/shop-backend/internal/logging"
	"github.com/skvortsovm/shop-backend/internal/middleware"
	"github.com/skvortsovm/shop-backend/internal/models"
	"github.com/skvortsovm/shop-backend/internal/order"
)

type OrderHTTP struct {
	Svc *order.Service
}

// Create accepts authenticated and guest checkouts alike. All snapshot
// validation happens here, before the service sees the input.
func (h *OrderHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "error", err)
		return badRequest(c, "invalid body")
	}

	if len(req.Items) == 0 {
		return badRequest(c, "items required")
	}
	if req.Phone == "" {
		return badRequest(c, "phone required")
	}

	in := order.CreateInput{
		Phone:         req.Phone,
		Address:       req.Address,
		RecipientName: req.RecipientName,
	}
	for i := range req.Items {
		if req.Items[i].ProductID == uuid.Nil {
			return badRequest(c, "productId required")
		}
		if req.Items[i].Quantity < 1 {
			return badRequest(c, "quantity must be >= 1")
		}
		if req.Items[i].Price < 0 {
			return badRequest(c, "price must be >= 0")
		}
		in.Items = append(in.Items, order.ItemInput{
			ProductID: req.Items[i].ProductID,
			Quantity:  req.Items[i].Quantity,
			UnitPrice: req.Items[i].Price,
		})
	}

	var userID *uuid.UUID
	if ident, ok := middleware.IdentityFrom(c); ok {
		userID = &ident.UserID
	}

	o, err := h.Svc.Create(ctx, in, userID)
	if err != nil {
		l.Error("create_order_error", "error", err)
		return writeError(c, err)
	}

	l.Info("create_order_success", "order_id", o.ID, "number", o.Number)
	return c.JSON(http.StatusCreated, o)
}

func (h *OrderHTTP) ListOwn(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_own")

	var userID uuid.UUID
	if ident, ok := middleware.IdentityFrom(c); ok {
		userID = ident.UserID
	} else if q := c.QueryParam("userId"); q != "" {
		id, err := uuid.Parse(q)
		if err != nil {
			return badRequest(c, "invalid userId")
		}
		userID = id
	} else {
		return badRequest(c, "userId required")
	}

	orders, err := h.Svc.ListForUser(ctx, userID)
	if err != nil {
		l.Error("list_orders_error", "error", err)
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) ListAll(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	orders, err := h.Svc.ListAll(ctx)
	if err != nil {
		l.Error("list_all_orders_error", "error", err)
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	o, err := h.Svc.Get(ctx, id)
	if err != nil {
		l.Warn("get_order_error", "error", err)
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(c, "invalid order id")
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "error", err)
		return badRequest(c, "invalid body")
	}
	if !models.ValidOrderStatus(req.Status) {
		return badRequest(c, "unknown status")
	}

	o, err := h.Svc.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		l.Warn("update_status_error", "error", err)
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *OrderHTTP) HasNew(c echo.Context) error {
	ctx := c.Request().Context()

	hasNew, err := h.Svc.HasNew(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("has_new_error", "error", err)
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"has_new": hasNew})
}

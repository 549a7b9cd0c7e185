package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/skvortsovm/shop-backend/internal/errs"
)

type errorResponse struct {
	Kind    string `json:"error"`
	Message string `json:"message"`
}

// badRequest reports a boundary validation failure in the same envelope
// writeError uses, so clients see one error shape everywhere.
func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{"invalid_input", msg})
}

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, errorResponse{"unauthorized", "unauthorized"})
}

// writeError maps a service error kind onto a status code and a
// structured body. Unrecognized errors become a plain 500 with no detail
// leaked.
func writeError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrValidation):
		return c.JSON(http.StatusBadRequest, errorResponse{"invalid_input", err.Error()})
	case errors.Is(err, errs.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, errorResponse{"unauthorized", "unauthorized"})
	case errors.Is(err, errs.ErrForbidden):
		return c.JSON(http.StatusForbidden, errorResponse{"forbidden", err.Error()})
	case errors.Is(err, errs.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{"not_found", err.Error()})
	case errors.Is(err, errs.ErrConflict), errors.Is(err, errs.ErrResourceExhausted):
		return c.JSON(http.StatusConflict, errorResponse{"conflict", err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, errorResponse{"internal", "internal server error"})
	}
}

package order

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/vidya365/rental/app/echoServer/jwtx"
	ordersvc "github.com/vidya365/rental/service/order"
)

type Controller struct {
	Svc ordersvc.Service
	Log *slog.Logger
}

// GET /v1/orders/my
func (h *Controller) MyOrders(c echo.Context) error {
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.MyOrders(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("my orders", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/orders/:id/receipt
func (h *Controller) Receipt(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	pdf, err := h.Svc.ReceiptPDF(c.Request().Context(), id, uid)
	if err != nil {
		switch ordersvc.Code(err) {
		case ordersvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		case ordersvc.ErrNotOwner:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case ordersvc.ErrNoReceipt:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "receipt not generated yet"})
		default:
			h.Log.Error("receipt", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="receipt.pdf"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

// POST /v1/orders/:id/approve (admin)
func (h *Controller) Approve(c echo.Context) error {
	return h.transition(c, h.Svc.Approve, "approved")
}

// POST /v1/orders/:id/reject (admin)
func (h *Controller) Reject(c echo.Context) error {
	return h.transition(c, h.Svc.Reject, "rejected")
}

func (h *Controller) transition(c echo.Context, fn func(ctx context.Context, id int64) error, done string) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	if err := fn(c.Request().Context(), id); err != nil {
		switch ordersvc.Code(err) {
		case ordersvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		case ordersvc.ErrNotPending:
			return c.JSON(http.StatusConflict, echo.Map{"message": "order is not pending"})
		default:
			h.Log.Error("order "+done, "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": done})
}

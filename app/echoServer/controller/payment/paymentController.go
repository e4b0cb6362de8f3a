package payment

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	paymentsvc "github.com/vidya365/rental/service/payment"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

type CallbackReq struct {
	RazorpayOrderID   string `json:"razorpay_order_id" form:"razorpay_order_id" query:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id" form:"razorpay_payment_id" query:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature" form:"razorpay_signature" query:"razorpay_signature"`
}

// POST /v1/payments/callback handles the gateway's signed confirmation redirect.
func (h *Controller) Callback(c echo.Context) error {
	var req CallbackReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
	}
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing payment fields"})
	}

	err := h.Svc.HandleCallback(c.Request().Context(),
		req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature)
	if err != nil {
		switch paymentsvc.Code(err) {
		case paymentsvc.ErrBadSignature:
			h.Log.Warn("payment callback signature mismatch", "gw_order", req.RazorpayOrderID)
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid signature"})
		case paymentsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment record not found"})
		default:
			h.Log.Error("payment callback", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "payment confirmed"})
}

// POST /v1/payments/webhook receives gateway push events (e.g. payment.failed).
func (h *Controller) Webhook(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable body"})
	}
	if err := h.Svc.HandleWebhook(c.Request().Context(), raw); err != nil {
		h.Log.Error("payment webhook", "err", err)
		// Acknowledge anyway so the gateway does not hammer retries for
		// events we cannot map.
	}
	return c.NoContent(http.StatusOK)
}

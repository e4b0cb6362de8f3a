package checkout

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/vidya365/rental/app/echoServer/jwtx"
	"github.com/vidya365/rental/model"
	checkoutsvc "github.com/vidya365/rental/service/checkout"
	ordersvc "github.com/vidya365/rental/service/order"
	paymentsvc "github.com/vidya365/rental/service/payment"
)

const dateLayout = "2006-01-02"

type Controller struct {
	Svc checkoutsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/checkout/dates
func (h *Controller) StartDates(c echo.Context) error {
	var req StartDatesReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	start, _ := time.Parse(dateLayout, req.StartDate)
	end, _ := time.Parse(dateLayout, req.EndDate)

	sess, err := h.Svc.StartDates(c.Request().Context(), uid, req.ItemID, start, end)
	if err != nil {
		return h.fail(c, "checkout dates", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"token":        sess.Token,
		"rent_amount":  sess.RentAmount,
		"total_amount": sess.TotalAmount(),
	})
}

// POST /v1/checkout/delivery
func (h *Controller) SelectDelivery(c echo.Context) error {
	var req SelectDeliveryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	sess, err := h.Svc.SelectDelivery(c.Request().Context(), uid, req.Token,
		model.DeliveryOption(req.DeliveryOption))
	if err != nil {
		return h.fail(c, "checkout delivery", err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"token":           sess.Token,
		"delivery_option": sess.DeliveryOption,
		"delivery_charge": sess.DeliveryCharge,
		"total_amount":    sess.TotalAmount(),
	})
}

// POST /v1/checkout/details
func (h *Controller) SubmitDetails(c echo.Context) error {
	var req SubmitDetailsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	o, err := h.Svc.SubmitDetails(c.Request().Context(), uid, req.Token, checkoutsvc.Details{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Aadhar:  req.Aadhar,
		Address: req.Address,
	})
	if err != nil {
		return h.fail(c, "checkout details", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"order_ref":    o.ID,
		"order_id":     o.OrderID,
		"status":       o.Status,
		"total_amount": o.TotalAmount,
	})
}

// POST /v1/checkout/payment-method
func (h *Controller) SelectPaymentMethod(c echo.Context) error {
	var req PaymentMethodReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	uid, err := jwtx.UserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	started, err := h.Svc.SelectPaymentMethod(c.Request().Context(), uid, req.Token,
		model.PaymentMethod(req.Method))
	if err != nil {
		return h.fail(c, "checkout payment method", err)
	}
	return c.JSON(http.StatusOK, started)
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch checkoutsvc.Code(err) {
	case checkoutsvc.ErrBadDates, checkoutsvc.ErrBadDelivery, checkoutsvc.ErrBadDetails:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	case checkoutsvc.ErrItemNotFound, checkoutsvc.ErrSessionNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": err.Error()})
	case checkoutsvc.ErrNoStock:
		return c.JSON(http.StatusConflict, echo.Map{"message": "no stock available"})
	case checkoutsvc.ErrNoOrder:
		return c.JSON(http.StatusConflict, echo.Map{"message": "details step not completed"})
	}
	switch ordersvc.Code(err) {
	case ordersvc.ErrItemNotFound, ordersvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case ordersvc.ErrBadDates:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid dates"})
	}
	switch paymentsvc.Code(err) {
	case paymentsvc.ErrGateway:
		return c.JSON(http.StatusBadGateway, echo.Map{"message": "payment gateway unavailable"})
	case paymentsvc.ErrNotPending:
		return c.JSON(http.StatusConflict, echo.Map{"message": "order is not pending"})
	case paymentsvc.ErrNotOwner:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case paymentsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	}
	h.Log.Error(op, "err", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
}

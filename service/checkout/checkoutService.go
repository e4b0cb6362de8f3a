package checkoutsvc

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vidya365/rental/model"
	ordersvc "github.com/vidya365/rental/service/order"
	paymentsvc "github.com/vidya365/rental/service/payment"
)

// errors used by controllers

type ErrCode string

const (
	ErrItemNotFound    ErrCode = "ITEM_NOT_FOUND"
	ErrNoStock         ErrCode = "NO_STOCK"
	ErrBadDates        ErrCode = "BAD_DATES"
	ErrBadDelivery     ErrCode = "BAD_DELIVERY"
	ErrBadDetails      ErrCode = "BAD_DETAILS"
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"
	ErrNoOrder         ErrCode = "NO_ORDER"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string {
	if e.msg != "" {
		return e.msg
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode) error          { return codedError{code: c} }
func wrap(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// deliveryCharge is the flat fee added when the item is couriered rather
// than collected.
const deliveryCharge = 50.0

var (
	phoneRe  = regexp.MustCompile(`^\d{10}$`)
	aadharRe = regexp.MustCompile(`^\d{12}$`)
)

type Sessions interface {
	Insert(ctx context.Context, s *model.CheckoutSession) error
	Get(ctx context.Context, token string, userID int64) (*model.CheckoutSession, error)
	SetDelivery(ctx context.Context, token string, userID int64, opt model.DeliveryOption, charge float64) error
	SetOrderRef(ctx context.Context, token string, userID int64, orderRef int64) error
}

type Items interface {
	Detail(ctx context.Context, id int64) (*model.RentalItem, error)
}

type Users interface {
	UpsertProfile(ctx context.Context, p *model.UserProfile) error
}

// Details is the contact block collected before the order is committed.
type Details struct {
	Name    string
	Email   string
	Phone   string
	Aadhar  string
	Address string
}

type Service interface {
	// StartDates opens a checkout session for an item and date range and
	// computes the rent for the inclusive day count.
	StartDates(ctx context.Context, userID, itemID int64, start, end time.Time) (*model.CheckoutSession, error)

	// SelectDelivery records pickup or delivery; delivery adds a flat charge.
	SelectDelivery(ctx context.Context, userID int64, token string, opt model.DeliveryOption) (*model.CheckoutSession, error)

	// SubmitDetails validates the contact block, stores it on the user's
	// profile and commits the session into a pending rental order.
	SubmitDetails(ctx context.Context, userID int64, token string, d Details) (*model.RentalOrder, error)

	// SelectPaymentMethod opens the payment leg for the session's order.
	SelectPaymentMethod(ctx context.Context, userID int64, token string, method model.PaymentMethod) (*paymentsvc.Started, error)
}

type service struct {
	sr       Sessions
	ir       Items
	ur       Users
	orders   ordersvc.Service
	payments paymentsvc.Service
	now      func() time.Time
}

func New(sr Sessions, ir Items, ur Users, orders ordersvc.Service, payments paymentsvc.Service) Service {
	return &service{
		sr: sr, ir: ir, ur: ur, orders: orders, payments: payments,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) StartDates(ctx context.Context, userID, itemID int64, start, end time.Time) (*model.CheckoutSession, error) {
	today := truncateToDay(s.now())
	start = truncateToDay(start)
	end = truncateToDay(end)

	if start.Before(today) {
		return nil, wrap(ErrBadDates, "start date cannot be in the past")
	}
	if end.Before(start) {
		return nil, wrap(ErrBadDates, "end date cannot be before start date")
	}

	item, err := s.ir.Detail(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrItemNotFound)
		}
		return nil, err
	}
	if !item.Available {
		return nil, makeErr(ErrNoStock)
	}

	days := int(end.Sub(start).Hours()/24) + 1
	sess := &model.CheckoutSession{
		Token:          uuid.NewString(),
		UserID:         userID,
		ItemID:         itemID,
		StartDate:      start,
		EndDate:        end,
		DeliveryOption: model.DeliveryPickup,
		RentAmount:     float64(days) * item.PricePerDay,
	}
	if err := s.sr.Insert(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *service) SelectDelivery(ctx context.Context, userID int64, token string, opt model.DeliveryOption) (*model.CheckoutSession, error) {
	if opt != model.DeliveryPickup && opt != model.DeliveryCourier {
		return nil, makeErr(ErrBadDelivery)
	}
	charge := 0.0
	if opt == model.DeliveryCourier {
		charge = deliveryCharge
	}
	if err := s.sr.SetDelivery(ctx, token, userID, opt, charge); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrSessionNotFound)
		}
		return nil, err
	}
	return s.getSession(ctx, token, userID)
}

func (s *service) SubmitDetails(ctx context.Context, userID int64, token string, d Details) (*model.RentalOrder, error) {
	if err := validateDetails(d); err != nil {
		return nil, err
	}

	sess, err := s.getSession(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	if sess.OrderRef != nil {
		// Resubmitting the details step resumes the already-created order.
		return s.orders.Get(ctx, *sess.OrderRef)
	}

	if err := s.ur.UpsertProfile(ctx, &model.UserProfile{
		UserID:       userID,
		Phone:        d.Phone,
		Email:        strings.ToLower(strings.TrimSpace(d.Email)),
		AddressLine1: d.Address,
		Aadhar:       d.Aadhar,
	}); err != nil {
		return nil, err
	}

	o, err := s.orders.Create(ctx, userID, sess.ItemID, sess.StartDate, sess.EndDate,
		model.PayOnline, sess.TotalAmount())
	if err != nil {
		return nil, err
	}
	if err := s.sr.SetOrderRef(ctx, token, userID, o.ID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) SelectPaymentMethod(ctx context.Context, userID int64, token string, method model.PaymentMethod) (*paymentsvc.Started, error) {
	sess, err := s.getSession(ctx, token, userID)
	if err != nil {
		return nil, err
	}
	if sess.OrderRef == nil {
		return nil, makeErr(ErrNoOrder)
	}
	return s.payments.Start(ctx, userID, *sess.OrderRef, method)
}

func (s *service) getSession(ctx context.Context, token string, userID int64) (*model.CheckoutSession, error) {
	sess, err := s.sr.Get(ctx, token, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrSessionNotFound)
		}
		return nil, err
	}
	return sess, nil
}

func validateDetails(d Details) error {
	if d.Name == "" || d.Email == "" || d.Phone == "" || d.Aadhar == "" || d.Address == "" {
		return wrap(ErrBadDetails, "please fill in all fields")
	}
	if !phoneRe.MatchString(d.Phone) {
		return wrap(ErrBadDetails, "phone number must be 10 digits")
	}
	if !aadharRe.MatchString(d.Aadhar) {
		return wrap(ErrBadDetails, "aadhaar number must be 12 digits")
	}
	return nil
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

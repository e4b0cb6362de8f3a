package paymentsvc

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vidya365/rental/model"
	razorpayrepo "github.com/vidya365/rental/repository/razorpay"
	"github.com/vidya365/rental/repository/sequence"
	"github.com/vidya365/rental/service/notify"
	ordersvc "github.com/vidya365/rental/service/order"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrNotOwner     ErrCode = "NOT_OWNER"
	ErrNotPending   ErrCode = "NOT_PENDING"
	ErrBadSignature ErrCode = "BAD_SIGNATURE"
	ErrGateway      ErrCode = "GATEWAY_FAILED"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const paymentSeries = "payment"

type Payments interface {
	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error
	SupersedePending(ctx context.Context, tx *sql.Tx, orderRef int64) (int64, error)
	LatestByOrder(ctx context.Context, orderRef int64) (*model.Payment, error)
	ByGatewayOrderID(ctx context.Context, gwOrderID string) (*model.Payment, error)
	MarkSuccess(ctx context.Context, tx *sql.Tx, id int64, gwPaymentID *string) error
	MarkFailed(ctx context.Context, tx *sql.Tx, id int64) error
}

type Orders interface {
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.RentalOrder, error)
	SetPaymentMethod(ctx context.Context, tx *sql.Tx, id int64, m model.PaymentMethod) error
}

type Items interface {
	Detail(ctx context.Context, id int64) (*model.RentalItem, error)
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
}

type Sequences interface {
	Next(ctx context.Context, tx *sql.Tx, series, prefix, scopeKey string) (string, error)
}

// Started is what the checkout step hands back to the client so it can run
// the gateway widget (online) or show the confirmation (cod).
type Started struct {
	PaymentOrderID string `json:"payment_order_id"`
	GatewayOrderID string `json:"gateway_order_id,omitempty"`
	AmountPaise    int64  `json:"amount_paise"`
	Status         string `json:"status"`
	OrderApproved  bool   `json:"order_approved"`
}

type Service interface {
	// Start opens the payment leg for a pending order: any stale PENDING
	// record is superseded, a fresh record is allocated its own identifier,
	// and for online payment a gateway order is created (fatal on gateway
	// failure). COD confirms immediately.
	Start(ctx context.Context, userID, orderRef int64, method model.PaymentMethod) (*Started, error)

	// HandleCallback processes the gateway's payment confirmation redirect.
	HandleCallback(ctx context.Context, gwOrderID, gwPaymentID, signature string) error

	// HandleWebhook processes gateway push events (captured / failed).
	HandleWebhook(ctx context.Context, raw []byte) error

	// ConfirmCOD flips the order's latest PENDING payment to SUCCESS, marks
	// the order cash-on-delivery and drives it through approval.
	ConfirmCOD(ctx context.Context, orderRef int64) error
}

type service struct {
	db       *sql.DB
	pr       Payments
	or       Orders
	ir       Items
	ur       Users
	sq       Sequences
	gw       razorpayrepo.Repo
	orders   ordersvc.Service
	notifier notify.Service
	now      func() time.Time
}

func New(db *sql.DB, pr Payments, or Orders, ir Items, ur Users, sq Sequences,
	gw razorpayrepo.Repo, orders ordersvc.Service, notifier notify.Service) Service {
	return &service{
		db: db, pr: pr, or: or, ir: ir, ur: ur, sq: sq,
		gw: gw, orders: orders, notifier: notifier,
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) Start(ctx context.Context, userID, orderRef int64, method model.PaymentMethod) (*Started, error) {
	o, err := s.orders.Get(ctx, orderRef)
	if err != nil {
		if ordersvc.Code(err) == ordersvc.ErrNotFound {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if o.UserID != userID {
		return nil, makeErr(ErrNotOwner)
	}
	if o.Status != model.OrderPending {
		return nil, makeErr(ErrNotPending)
	}

	amountPaise := int64(math.Round(o.TotalAmount * 100))

	var gwOrderID *string
	if method == model.PayOnline {
		resp, err := s.gw.CreateOrder(razorpayrepo.CreateOrderReq{
			Amount:   amountPaise,
			Currency: "INR",
			Receipt:  fmt.Sprintf("rental_rcpt_%d", orderRef),
		})
		if err != nil {
			return nil, makeErr(ErrGateway)
		}
		gwOrderID = &resp.OrderID
	}

	p := &model.Payment{
		OrderRef:        orderRef,
		RazorpayOrderID: gwOrderID,
		Status:          model.PaymentPending,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = s.pr.SupersedePending(ctx, tx, orderRef); err != nil {
		return nil, err
	}
	p.OrderID, err = s.sq.Next(ctx, tx, paymentSeries, "ORD", sequence.MonthScope(s.now()))
	if err != nil {
		return nil, err
	}
	if err = s.pr.Insert(ctx, tx, p); err != nil {
		return nil, err
	}
	if method == model.PayCOD {
		if err = s.or.SetPaymentMethod(ctx, tx, orderRef, model.PayCOD); err != nil {
			return nil, err
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}

	out := &Started{
		PaymentOrderID: p.OrderID,
		AmountPaise:    amountPaise,
		Status:         string(model.PaymentPending),
	}
	if gwOrderID != nil {
		out.GatewayOrderID = *gwOrderID
	}

	if method == model.PayCOD {
		if err := s.ConfirmCOD(ctx, orderRef); err != nil {
			return nil, err
		}
		out.Status = string(model.PaymentSuccess)
		out.OrderApproved = true
	}
	return out, nil
}

func (s *service) ConfirmCOD(ctx context.Context, orderRef int64) (err error) {
	p, err := s.pr.LatestByOrder(ctx, orderRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if p.Status == model.PaymentSuccess {
		return nil
	}
	if p.Status != model.PaymentPending {
		return makeErr(ErrNotPending)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = s.pr.MarkSuccess(ctx, tx, p.ID, nil); err != nil {
		return err
	}
	if err = s.or.SetPaymentMethod(ctx, tx, orderRef, model.PayCOD); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	if err := s.orders.Approve(ctx, orderRef); err != nil {
		return err
	}
	s.sendConfirmation(ctx, orderRef, "")
	return nil
}

func (s *service) HandleCallback(ctx context.Context, gwOrderID, gwPaymentID, signature string) (err error) {
	if err := s.gw.VerifySignature(gwOrderID, gwPaymentID, signature); err != nil {
		return makeErr(ErrBadSignature)
	}

	p, err := s.pr.ByGatewayOrderID(ctx, gwOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if p.Status == model.PaymentSuccess {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = s.pr.MarkSuccess(ctx, tx, p.ID, &gwPaymentID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}

	if err := s.orders.Approve(ctx, p.OrderRef); err != nil {
		return err
	}
	s.sendConfirmation(ctx, p.OrderRef, gwPaymentID)
	return nil
}

type gwEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

func (s *service) HandleWebhook(ctx context.Context, raw []byte) error {
	var ev gwEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return fmt.Errorf("bad webhook json: %w", err)
	}
	ent := ev.Payload.Payment.Entity
	if ent.OrderID == "" {
		return errors.New("missing gateway order id")
	}

	switch ev.Event {
	case "payment.failed":
		return s.markFailed(ctx, ent.OrderID)
	default:
		// Captures arrive through the signed callback; other events are
		// acknowledged without action.
		return nil
	}
}

func (s *service) markFailed(ctx context.Context, gwOrderID string) (err error) {
	p, err := s.pr.ByGatewayOrderID(ctx, gwOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if p.Status != model.PaymentPending {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = s.pr.MarkFailed(ctx, tx, p.ID); err != nil {
		return err
	}
	// The order stays pending; the user may retry with a fresh payment.
	return tx.Commit()
}

func (s *service) sendConfirmation(ctx context.Context, orderRef int64, gwPaymentID string) {
	o, err := s.orders.Get(ctx, orderRef)
	if err != nil {
		return
	}
	u, err := s.ur.ByID(ctx, o.UserID)
	if err != nil {
		return
	}
	item, err := s.ir.Detail(ctx, o.ItemID)
	if err != nil {
		return
	}
	if o.PaymentMethod == model.PayCOD {
		s.notifier.BookingConfirmedCOD(u.Email, u.FullName(), item.Title, o.TotalAmount)
		return
	}
	s.notifier.BookingConfirmedOnline(u.Email, u.FullName(), item.Title, o, gwPaymentID)
}

package ordersvc

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vidya365/rental/model"
	"github.com/vidya365/rental/repository/sequence"
	"github.com/vidya365/rental/service/receipt"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrItemNotFound ErrCode = "ITEM_NOT_FOUND"
	ErrNotPending   ErrCode = "NOT_PENDING"
	ErrNotOwner     ErrCode = "NOT_OWNER"
	ErrNoReceipt    ErrCode = "NO_RECEIPT"
	ErrBadDates     ErrCode = "BAD_DATES"
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

const orderSeries = "rental_order"

type Orders interface {
	Insert(ctx context.Context, tx *sql.Tx, o *model.RentalOrder) error
	ByID(ctx context.Context, id int64) (*model.RentalOrder, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.RentalOrder, error)
	SetStatus(ctx context.Context, tx *sql.Tx, id int64, st model.OrderStatus) error
	AttachReceipt(ctx context.Context, tx *sql.Tx, id int64, pdf []byte) error
	Receipt(ctx context.Context, id int64) (ownerID int64, pdf []byte, err error)
	ListByUser(ctx context.Context, userID int64) ([]model.RentalOrder, error)
}

type Items interface {
	Detail(ctx context.Context, id int64) (*model.RentalItem, error)
	DecrementStock(ctx context.Context, tx *sql.Tx, id int64, now time.Time) error
}

type Users interface {
	ByID(ctx context.Context, id int64) (*model.User, error)
	ProfileByUserID(ctx context.Context, userID int64) (*model.UserProfile, error)
}

type Sequences interface {
	Next(ctx context.Context, tx *sql.Tx, series, prefix, scopeKey string) (string, error)
}

type Service interface {
	// Create records a pending order, allocating its identifier in the
	// monthly order series. A non-positive total is recomputed from the
	// item's per-day price and the inclusive day count.
	Create(ctx context.Context, userID, itemID int64, start, end time.Time, method model.PaymentMethod, total float64) (*model.RentalOrder, error)

	// Approve drives pending -> approved and, in the same transaction,
	// decrements the item's stock and attaches the rendered receipt. An
	// already-approved order is a no-op, so the side effects can never fire
	// twice.
	Approve(ctx context.Context, orderRef int64) error

	// Reject drives pending -> rejected. No inventory or receipt effects.
	Reject(ctx context.Context, orderRef int64) error

	Get(ctx context.Context, orderRef int64) (*model.RentalOrder, error)
	MyOrders(ctx context.Context, userID int64) ([]model.RentalOrder, error)
	ReceiptPDF(ctx context.Context, orderRef, userID int64) ([]byte, error)
}

type service struct {
	db  *sql.DB
	or  Orders
	ir  Items
	ur  Users
	sq  Sequences
	now func() time.Time
}

func New(db *sql.DB, or Orders, ir Items, ur Users, sq Sequences) Service {
	return &service{db: db, or: or, ir: ir, ur: ur, sq: sq, now: func() time.Time { return time.Now().UTC() }}
}

func (s *service) Create(ctx context.Context, userID, itemID int64, start, end time.Time, method model.PaymentMethod, total float64) (*model.RentalOrder, error) {
	if end.Before(start) {
		return nil, makeErr(ErrBadDates)
	}

	item, err := s.ir.Detail(ctx, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrItemNotFound)
		}
		return nil, err
	}

	o := &model.RentalOrder{
		UserID:        userID,
		ItemID:        itemID,
		StartDate:     start,
		EndDate:       end,
		PaymentMethod: method,
		Status:        model.OrderPending,
		TotalAmount:   total,
	}
	if o.TotalAmount <= 0 {
		o.TotalAmount = float64(o.RentalDays()) * item.PricePerDay
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

	o.OrderID, err = s.sq.Next(ctx, tx, orderSeries, "ORD", sequence.MonthScope(s.now()))
	if err != nil {
		return nil, err
	}
	if err = s.or.Insert(ctx, tx, o); err != nil {
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) Approve(ctx context.Context, orderRef int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	o, err := s.or.GetForUpdate(ctx, tx, orderRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}

	switch o.Status {
	case model.OrderApproved:
		return tx.Commit()
	case model.OrderRejected:
		return makeErr(ErrNotPending)
	}

	if err = s.or.SetStatus(ctx, tx, orderRef, model.OrderApproved); err != nil {
		return err
	}
	if err = s.ir.DecrementStock(ctx, tx, o.ItemID, s.now()); err != nil {
		return err
	}

	if !o.HasReceipt {
		var pdf []byte
		if pdf, err = s.renderReceipt(ctx, o); err != nil {
			return err
		}
		if err = s.or.AttachReceipt(ctx, tx, orderRef, pdf); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *service) renderReceipt(ctx context.Context, o *model.RentalOrder) ([]byte, error) {
	item, err := s.ir.Detail(ctx, o.ItemID)
	if err != nil {
		return nil, err
	}
	u, err := s.ur.ByID(ctx, o.UserID)
	if err != nil {
		return nil, err
	}
	profile, err := s.ur.ProfileByUserID(ctx, o.UserID)
	if err != nil {
		return nil, err
	}
	approved := *o
	approved.Status = model.OrderApproved
	return receipt.Render(&approved, item.Title, u, profile)
}

func (s *service) Reject(ctx context.Context, orderRef int64) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	o, err := s.or.GetForUpdate(ctx, tx, orderRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}

	switch o.Status {
	case model.OrderRejected:
		return tx.Commit()
	case model.OrderApproved:
		return makeErr(ErrNotPending)
	}

	if err = s.or.SetStatus(ctx, tx, orderRef, model.OrderRejected); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *service) Get(ctx context.Context, orderRef int64) (*model.RentalOrder, error) {
	o, err := s.or.ByID(ctx, orderRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return o, nil
}

func (s *service) MyOrders(ctx context.Context, userID int64) ([]model.RentalOrder, error) {
	return s.or.ListByUser(ctx, userID)
}

func (s *service) ReceiptPDF(ctx context.Context, orderRef, userID int64) ([]byte, error) {
	ownerID, pdf, err := s.or.Receipt(ctx, orderRef)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	if ownerID != userID {
		return nil, makeErr(ErrNotOwner)
	}
	if len(pdf) == 0 {
		return nil, makeErr(ErrNoReceipt)
	}
	return pdf, nil
}

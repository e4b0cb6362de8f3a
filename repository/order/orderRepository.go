// repository/order/orderRepository.go
package orderrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/vidya365/rental/model"
)

// NotificationRow is one approved order due a reminder or overdue mail,
// joined with the fields the mail body needs.
type NotificationRow struct {
	OrderRef  int64
	OrderID   string
	ItemTitle string
	EndDate   time.Time
	UserName  string
	UserEmail string
}

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, o *model.RentalOrder) error
	ByID(ctx context.Context, id int64) (*model.RentalOrder, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.RentalOrder, error)
	SetStatus(ctx context.Context, tx *sql.Tx, id int64, st model.OrderStatus) error
	SetPaymentMethod(ctx context.Context, tx *sql.Tx, id int64, m model.PaymentMethod) error
	AttachReceipt(ctx context.Context, tx *sql.Tx, id int64, pdf []byte) error
	Receipt(ctx context.Context, id int64) (ownerID int64, pdf []byte, err error)
	ListByUser(ctx context.Context, userID int64) ([]model.RentalOrder, error)

	// Sweep queries for the notifier. "now" is a date; time-of-day is ignored.
	DueForReminder(ctx context.Context, now time.Time) ([]NotificationRow, error)
	Overdue(ctx context.Context, now time.Time) ([]NotificationRow, error)
	MarkReminderSent(ctx context.Context, id int64) error
	MarkOverdueSent(ctx context.Context, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const orderCols = `id, order_id, user_id, item_id, start_date, end_date,
       payment_method, status, total_amount, reminder_sent, overdue_sent,
       receipt IS NOT NULL, created_at`

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, o *model.RentalOrder) error {
	const q = `
		INSERT INTO rental_orders
			(order_id, user_id, item_id, start_date, end_date, payment_method, status, total_amount)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q,
		o.OrderID, o.UserID, o.ItemID, o.StartDate, o.EndDate,
		o.PaymentMethod, o.Status, o.TotalAmount,
	).Scan(&o.ID, &o.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.RentalOrder, error) {
	const q = `SELECT ` + orderCols + ` FROM rental_orders WHERE id=$1`
	return scanOrder(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) GetForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.RentalOrder, error) {
	const q = `SELECT ` + orderCols + ` FROM rental_orders WHERE id=$1 FOR UPDATE`
	return scanOrder(tx.QueryRowContext(ctx, q, id))
}

func (r *repo) SetStatus(ctx context.Context, tx *sql.Tx, id int64, st model.OrderStatus) error {
	const q = `UPDATE rental_orders SET status=$2 WHERE id=$1`
	_, err := tx.ExecContext(ctx, q, id, st)
	return err
}

func (r *repo) SetPaymentMethod(ctx context.Context, tx *sql.Tx, id int64, m model.PaymentMethod) error {
	const q = `UPDATE rental_orders SET payment_method=$2 WHERE id=$1`
	_, err := tx.ExecContext(ctx, q, id, m)
	return err
}

func (r *repo) AttachReceipt(ctx context.Context, tx *sql.Tx, id int64, pdf []byte) error {
	const q = `UPDATE rental_orders SET receipt=$2 WHERE id=$1`
	_, err := tx.ExecContext(ctx, q, id, pdf)
	return err
}

func (r *repo) Receipt(ctx context.Context, id int64) (int64, []byte, error) {
	const q = `SELECT user_id, receipt FROM rental_orders WHERE id=$1`
	var ownerID int64
	var pdf []byte
	if err := r.db.QueryRowContext(ctx, q, id).Scan(&ownerID, &pdf); err != nil {
		return 0, nil, err
	}
	return ownerID, pdf, nil
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.RentalOrder, error) {
	const q = `SELECT ` + orderCols + `
		FROM rental_orders
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RentalOrder
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

const notifCols = `
	SELECT o.id, o.order_id, i.title, o.end_date, u.first_name, u.last_name, u.username, u.email
	FROM rental_orders o
	JOIN rental_items i ON i.id = o.item_id
	JOIN users u        ON u.id = o.user_id`

func (r *repo) DueForReminder(ctx context.Context, now time.Time) ([]NotificationRow, error) {
	const q = notifCols + `
	WHERE o.status = 'approved'
	  AND o.reminder_sent = FALSE
	  AND o.end_date::date = ($1::date + INTERVAL '1 day')`
	return r.notifRows(ctx, q, now)
}

func (r *repo) Overdue(ctx context.Context, now time.Time) ([]NotificationRow, error) {
	const q = notifCols + `
	WHERE o.status = 'approved'
	  AND o.overdue_sent = FALSE
	  AND o.end_date::date < $1::date`
	return r.notifRows(ctx, q, now)
}

func (r *repo) notifRows(ctx context.Context, q string, now time.Time) ([]NotificationRow, error) {
	rows, err := r.db.QueryContext(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []NotificationRow
	for rows.Next() {
		var n NotificationRow
		var first, last, username string
		if err := rows.Scan(&n.OrderRef, &n.OrderID, &n.ItemTitle, &n.EndDate,
			&first, &last, &username, &n.UserEmail); err != nil {
			return nil, err
		}
		n.UserName = fullName(first, last, username)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *repo) MarkReminderSent(ctx context.Context, id int64) error {
	const q = `UPDATE rental_orders SET reminder_sent=TRUE WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *repo) MarkOverdueSent(ctx context.Context, id int64) error {
	const q = `UPDATE rental_orders SET overdue_sent=TRUE WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

type scanner interface{ Scan(dest ...any) error }

func scanOrder(s scanner) (*model.RentalOrder, error) {
	o := &model.RentalOrder{}
	err := s.Scan(
		&o.ID, &o.OrderID, &o.UserID, &o.ItemID, &o.StartDate, &o.EndDate,
		&o.PaymentMethod, &o.Status, &o.TotalAmount, &o.ReminderSent, &o.OverdueSent,
		&o.HasReceipt, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func fullName(first, last, username string) string {
	switch {
	case first == "" && last == "":
		return username
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

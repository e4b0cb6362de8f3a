package paymentrepo

import (
	"context"
	"database/sql"

	"github.com/vidya365/rental/model"
)

type Repo interface {
	Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error

	// SupersedePending fails any still-PENDING payments for the order so a
	// retried checkout leaves exactly one live record. Returns how many rows
	// were superseded.
	SupersedePending(ctx context.Context, tx *sql.Tx, orderRef int64) (int64, error)

	// LatestByOrder resolves the authoritative payment for an order:
	// most recent by creation time.
	LatestByOrder(ctx context.Context, orderRef int64) (*model.Payment, error)
	ByGatewayOrderID(ctx context.Context, gwOrderID string) (*model.Payment, error)

	MarkSuccess(ctx context.Context, tx *sql.Tx, id int64, gwPaymentID *string) error
	MarkFailed(ctx context.Context, tx *sql.Tx, id int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const paymentCols = `id, order_ref, order_id, razorpay_order_id, razorpay_payment_id, status, created_at`

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	const q = `
		INSERT INTO payments (order_ref, order_id, razorpay_order_id, status)
		VALUES ($1,$2,$3,$4)
		RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q,
		p.OrderRef, p.OrderID, p.RazorpayOrderID, p.Status,
	).Scan(&p.ID, &p.CreatedAt)
}

func (r *repo) SupersedePending(ctx context.Context, tx *sql.Tx, orderRef int64) (int64, error) {
	const q = `
		UPDATE payments
		SET status = 'FAILED'
		WHERE order_ref = $1 AND status = 'PENDING'`
	res, err := tx.ExecContext(ctx, q, orderRef)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}

func (r *repo) LatestByOrder(ctx context.Context, orderRef int64) (*model.Payment, error) {
	const q = `SELECT ` + paymentCols + `
		FROM payments
		WHERE order_ref = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, orderRef))
}

func (r *repo) ByGatewayOrderID(ctx context.Context, gwOrderID string) (*model.Payment, error) {
	const q = `SELECT ` + paymentCols + `
		FROM payments
		WHERE razorpay_order_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, gwOrderID))
}

func (r *repo) MarkSuccess(ctx context.Context, tx *sql.Tx, id int64, gwPaymentID *string) error {
	const q = `
		UPDATE payments
		SET status = 'SUCCESS', razorpay_payment_id = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, gwPaymentID)
	return err
}

func (r *repo) MarkFailed(ctx context.Context, tx *sql.Tx, id int64) error {
	const q = `UPDATE payments SET status = 'FAILED' WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id)
	return err
}

func (r *repo) scanOne(row *sql.Row) (*model.Payment, error) {
	p := &model.Payment{}
	err := row.Scan(&p.ID, &p.OrderRef, &p.OrderID,
		&p.RazorpayOrderID, &p.RazorpayPaymentID, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

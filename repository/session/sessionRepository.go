package sessionrepo

import (
	"context"
	"database/sql"

	"github.com/vidya365/rental/model"
)

// Repo persists checkout scratch state between steps. Rows are keyed by an
// opaque token and scoped to the owning user so one user cannot resume
// another's checkout.
type Repo interface {
	Insert(ctx context.Context, s *model.CheckoutSession) error
	Get(ctx context.Context, token string, userID int64) (*model.CheckoutSession, error)
	SetDelivery(ctx context.Context, token string, userID int64, opt model.DeliveryOption, charge float64) error
	SetOrderRef(ctx context.Context, token string, userID int64, orderRef int64) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) Insert(ctx context.Context, s *model.CheckoutSession) error {
	const q = `
		INSERT INTO checkout_sessions
			(token, user_id, item_id, start_date, end_date, delivery_option, rent_amount, delivery_charge)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING created_at, updated_at`
	return r.db.QueryRowContext(ctx, q,
		s.Token, s.UserID, s.ItemID, s.StartDate, s.EndDate,
		s.DeliveryOption, s.RentAmount, s.DeliveryCharge,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *repo) Get(ctx context.Context, token string, userID int64) (*model.CheckoutSession, error) {
	const q = `
		SELECT token, user_id, item_id, start_date, end_date, delivery_option,
		       rent_amount, delivery_charge, order_ref, created_at, updated_at
		FROM checkout_sessions
		WHERE token = $1 AND user_id = $2`
	s := &model.CheckoutSession{}
	err := r.db.QueryRowContext(ctx, q, token, userID).Scan(
		&s.Token, &s.UserID, &s.ItemID, &s.StartDate, &s.EndDate, &s.DeliveryOption,
		&s.RentAmount, &s.DeliveryCharge, &s.OrderRef, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *repo) SetDelivery(ctx context.Context, token string, userID int64, opt model.DeliveryOption, charge float64) error {
	const q = `
		UPDATE checkout_sessions
		SET delivery_option = $3, delivery_charge = $4, updated_at = NOW()
		WHERE token = $1 AND user_id = $2`
	return r.exec(ctx, q, token, userID, opt, charge)
}

func (r *repo) SetOrderRef(ctx context.Context, token string, userID int64, orderRef int64) error {
	const q = `
		UPDATE checkout_sessions
		SET order_ref = $3, updated_at = NOW()
		WHERE token = $1 AND user_id = $2`
	return r.exec(ctx, q, token, userID, orderRef)
}

func (r *repo) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

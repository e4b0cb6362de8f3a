package itemrepo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vidya365/rental/model"
)

type Repo interface {
	Create(ctx context.Context, it *model.RentalItem) error
	List(ctx context.Context) ([]model.RentalItem, error)
	Detail(ctx context.Context, id int64) (*model.RentalItem, error)
	AddStock(ctx context.Context, id int64, n int64) error

	// DecrementStock takes one unit off the item's availability, floored at
	// zero, and re-derives the availability flag. When the last unit goes, a
	// next-available date of seven days out is stamped unless one is already
	// set. Runs under the caller's transaction with the row locked.
	DecrementStock(ctx context.Context, tx *sql.Tx, id int64, now time.Time) error
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const itemCols = `id, title, description, price_per_day, deposit,
       total_quantity, available_quantity, available, next_available_date`

func (r *repo) Create(ctx context.Context, it *model.RentalItem) error {
	const q = `
		INSERT INTO rental_items
			(title, description, price_per_day, deposit, total_quantity, available_quantity, available)
		VALUES ($1,$2,$3,$4,$5,$5,$5 > 0)
		RETURNING id, available`
	return r.db.QueryRowContext(ctx, q,
		it.Title, it.Description, it.PricePerDay, it.Deposit, it.TotalQuantity,
	).Scan(&it.ID, &it.Available)
}

func (r *repo) List(ctx context.Context) ([]model.RentalItem, error) {
	const q = `SELECT ` + itemCols + ` FROM rental_items ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RentalItem
	for rows.Next() {
		var it model.RentalItem
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *repo) Detail(ctx context.Context, id int64) (*model.RentalItem, error) {
	const q = `SELECT ` + itemCols + ` FROM rental_items WHERE id=$1`
	var it model.RentalItem
	if err := scanItem(r.db.QueryRowContext(ctx, q, id), &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *repo) AddStock(ctx context.Context, id int64, n int64) error {
	if n <= 0 {
		return errors.New("n must be > 0")
	}
	const q = `
		UPDATE rental_items
		SET total_quantity     = total_quantity + $2,
			available_quantity = available_quantity + $2,
			available          = TRUE,
			next_available_date = NULL
		WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, n)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *repo) DecrementStock(ctx context.Context, tx *sql.Tx, id int64, now time.Time) error {
	const sel = `
		SELECT available_quantity, next_available_date
		FROM rental_items
		WHERE id = $1
		FOR UPDATE`
	var qty int64
	var next *time.Time
	if err := tx.QueryRowContext(ctx, sel, id).Scan(&qty, &next); err != nil {
		return err
	}
	if qty == 0 {
		return nil
	}
	qty--
	if qty == 0 && next == nil {
		d := now.AddDate(0, 0, 7)
		next = &d
	}
	if qty > 0 {
		next = nil
	}
	const upd = `
		UPDATE rental_items
		SET available_quantity = $2,
			available          = $3,
			next_available_date = $4
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, upd, id, qty, qty > 0, next)
	return err
}

type scanner interface{ Scan(dest ...any) error }

func scanItem(s scanner, it *model.RentalItem) error {
	return s.Scan(
		&it.ID, &it.Title, &it.Description, &it.PricePerDay, &it.Deposit,
		&it.TotalQuantity, &it.AvailableQuantity, &it.Available, &it.NextAvailableDate,
	)
}

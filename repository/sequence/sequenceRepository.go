package sequence

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Repo allocates human-readable identifiers like ORD202406001. Each
// (series, scope) pair owns its own monotonic counter, so the order and
// payment series share the ORD prefix but never a counter. The increment is
// a single guarded upsert; concurrent allocations in the same scope cannot
// observe the same number. Next must run inside the transaction that
// persists the record being named: a rollback releases the number together
// with the record.
type Repo interface {
	Next(ctx context.Context, tx *sql.Tx, series, prefix, scopeKey string) (string, error)
}

// MonthScope truncates t to the YYYYMM namespace used by the order and
// payment series.
func MonthScope(t time.Time) string { return t.Format("200601") }

type repo struct{}

func New() Repo { return &repo{} }

func (r *repo) Next(ctx context.Context, tx *sql.Tx, series, prefix, scopeKey string) (string, error) {
	const q = `
		INSERT INTO order_sequences (series, scope_key, last_seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (series, scope_key)
		DO UPDATE SET last_seq = order_sequences.last_seq + 1
		RETURNING last_seq`
	var n int64
	if err := tx.QueryRowContext(ctx, q, series, scopeKey).Scan(&n); err != nil {
		return "", err
	}
	return format(prefix, scopeKey, n), nil
}

func format(prefix, scopeKey string, n int64) string {
	return fmt.Sprintf("%s%s%03d", prefix, scopeKey, n)
}

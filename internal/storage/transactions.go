package storage

import (
	"context"
	"strings"

	"finance-manager/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InsertTransaction stores t and assigns it a fresh ID.
func (db *DB) InsertTransaction(ctx context.Context, t *models.Transaction) error {
	cents, err := toCents(t.Amount)
	if err != nil {
		return &StoreError{Op: "insert transaction", Err: err}
	}
	id := uuid.NewString()
	_, err = db.exec(ctx, "insert transaction",
		`INSERT INTO transactions (id, user_id, category, amount_cents, date, description, kind)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, t.UserID, t.Category, cents, t.Date, t.Description, string(t.Kind),
	)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

// where builds the WHERE clause shared by the aggregate queries.
func (f filter) where() (string, []any) {
	conds := []string{"user_id = ?"}
	args := []any{f.UserID}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, string(f.Kind))
	}
	if !f.From.IsZero() {
		conds = append(conds, "date >= ?")
		args = append(args, f.From)
	}
	// Stored dates end at 9999-12-31, and sqlite compares them as text, so
	// a five-digit end year would exclude everything.
	if !f.To.IsZero() && f.To.Year() <= 9999 {
		conds = append(conds, "date < ?")
		args = append(args, f.To)
	}
	return strings.Join(conds, " AND "), args
}

type filter models.TransactionFilter

// SumAmounts returns the total amount of the transactions matching f, zero
// when nothing matches.
func (db *DB) SumAmounts(ctx context.Context, f models.TransactionFilter) (decimal.Decimal, error) {
	where, args := filter(f).where()

	var cents int64
	err := db.queryRow(ctx,
		"SELECT COALESCE(SUM(amount_cents), 0) FROM transactions WHERE "+where,
		args...,
	).Scan(&cents)
	if err != nil {
		return decimal.Zero, classify("sum transactions", err)
	}
	return fromCents(cents), nil
}

// CategoryTotals groups the transactions matching f by category and kind,
// largest total first.
func (db *DB) CategoryTotals(ctx context.Context, f models.TransactionFilter) ([]models.CategoryTotal, error) {
	where, args := filter(f).where()

	rows, err := db.query(ctx, "category totals",
		`SELECT category, kind, SUM(amount_cents) AS total, COUNT(*)
		FROM transactions
		WHERE `+where+`
		GROUP BY category, kind
		ORDER BY total DESC, category, kind`,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []models.CategoryTotal
	for rows.Next() {
		var (
			ct    models.CategoryTotal
			kind  string
			cents int64
		)
		if err := rows.Scan(&ct.Category, &kind, &cents, &ct.Count); err != nil {
			return nil, classify("scan category total", err)
		}
		ct.Kind = models.Kind(kind)
		ct.Total = fromCents(cents)
		totals = append(totals, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("category totals", err)
	}
	return totals, nil
}

// ListTransactions returns every transaction of a user ordered by date and
// then insertion order.
func (db *DB) ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error) {
	rows, err := db.query(ctx, "list transactions",
		`SELECT id, user_id, category, amount_cents, date, description, kind
		FROM transactions
		WHERE user_id = ?
		ORDER BY date, seq`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var txns []models.Transaction
	for rows.Next() {
		var (
			t     models.Transaction
			kind  string
			cents int64
		)
		if err := rows.Scan(&t.ID, &t.UserID, &t.Category, &cents, &t.Date, &t.Description, &kind); err != nil {
			return nil, classify("scan transaction", err)
		}
		t.Amount = fromCents(cents)
		t.Kind = models.Kind(kind)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("list transactions", err)
	}
	return txns, nil
}

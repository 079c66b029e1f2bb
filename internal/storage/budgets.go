package storage

import (
	"context"

	"finance-manager/internal/models"
)

// GetBudget returns the budget for a user's category or ErrNotFound.
func (db *DB) GetBudget(ctx context.Context, userID int64, category string) (*models.Budget, error) {
	var cents int64
	err := db.queryRow(ctx,
		"SELECT amount_cents FROM budgets WHERE user_id = ? AND category = ?",
		userID, category,
	).Scan(&cents)
	if err != nil {
		return nil, classify("get budget", err)
	}
	return &models.Budget{UserID: userID, Category: category, Amount: fromCents(cents)}, nil
}

// UpsertBudget overwrites the amount of an existing budget or inserts a new
// one, reporting whether a row was created.
func (db *DB) UpsertBudget(ctx context.Context, b models.Budget) (bool, error) {
	cents, err := toCents(b.Amount)
	if err != nil {
		return false, &StoreError{Op: "upsert budget", Err: err}
	}
	res, err := db.exec(ctx, "update budget",
		"UPDATE budgets SET amount_cents = ?, updated_at = CURRENT_TIMESTAMP WHERE user_id = ? AND category = ?",
		cents, b.UserID, b.Category,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, classify("update budget", err)
	}
	if n > 0 {
		return false, nil
	}

	_, err = db.exec(ctx, "insert budget",
		"INSERT INTO budgets (user_id, category, amount_cents) VALUES (?, ?, ?)",
		b.UserID, b.Category, cents,
	)
	if err != nil {
		return false, err
	}
	return true, nil
}

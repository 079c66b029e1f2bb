// Package interfaces defines the store contracts the services depend on.
package interfaces

import (
	"context"

	"finance-manager/internal/models"

	"github.com/shopspring/decimal"
)

// CredentialStore persists user accounts.
type CredentialStore interface {
	// CreateUser fails with storage.ErrDuplicate when the username is taken.
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// LedgerStore persists transactions and answers aggregate queries over them.
type LedgerStore interface {
	// InsertTransaction assigns t.ID.
	InsertTransaction(ctx context.Context, t *models.Transaction) error
	SumAmounts(ctx context.Context, f models.TransactionFilter) (decimal.Decimal, error)
	CategoryTotals(ctx context.Context, f models.TransactionFilter) ([]models.CategoryTotal, error)
	ListTransactions(ctx context.Context, userID int64) ([]models.Transaction, error)
}

// BudgetStore persists one budget per user and category.
type BudgetStore interface {
	GetBudget(ctx context.Context, userID int64, category string) (*models.Budget, error)
	// UpsertBudget reports whether a new row was created.
	UpsertBudget(ctx context.Context, b models.Budget) (created bool, err error)
}

// Store is the full persistence surface. InTx runs fn against a store bound
// to a single database transaction, committing if fn returns nil.
type Store interface {
	CredentialStore
	LedgerStore
	BudgetStore
	InTx(ctx context.Context, fn func(tx Store) error) error
}

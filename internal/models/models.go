package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes money coming in from money going out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

// Title returns the kind with its first letter capitalised, e.g. "Expense".
func (k Kind) Title() string {
	switch k {
	case KindIncome:
		return "Income"
	case KindExpense:
		return "Expense"
	}
	return string(k)
}

// User represents a user account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Transaction represents a single income or expense record.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      int64           `json:"user_id"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Kind        Kind            `json:"kind"`
}

// Budget is the spending limit a user set for one category.
type Budget struct {
	UserID   int64           `json:"user_id"`
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// CategoryTotal aggregates the transactions of one category and kind.
type CategoryTotal struct {
	Category string          `json:"category"`
	Kind     Kind            `json:"kind"`
	Total    decimal.Decimal `json:"total"`
	Count    int             `json:"count"`
}

// TransactionFilter selects transactions for aggregate queries. Empty
// Category and Kind match everything; From is inclusive and To exclusive.
type TransactionFilter struct {
	UserID   int64
	Category string
	Kind     Kind
	From     Date
	To       Date
}

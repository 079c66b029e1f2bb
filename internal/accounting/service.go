// Package accounting records income and expense transactions and keeps
// per-category budgets, reporting how each expense stands against its
// category budget for the month.
package accounting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finance-manager/internal/config"
	"finance-manager/internal/interfaces"
	"finance-manager/internal/logging"
	"finance-manager/internal/models"
	"finance-manager/internal/storage"

	"github.com/shopspring/decimal"
)

// Status is the budget signal attached to a recorded transaction.
type Status int

const (
	// Recorded is returned for income; no budget is consulted.
	Recorded Status = iota
	// NoBudgetSet means the expense category has no budget.
	NoBudgetSet
	// WithinBudget means month-to-date spend is at or below the budget.
	WithinBudget
	// BudgetExceeded means month-to-date spend is strictly above the budget.
	BudgetExceeded
)

func (s Status) String() string {
	switch s {
	case Recorded:
		return "recorded"
	case NoBudgetSet:
		return "no_budget_set"
	case WithinBudget:
		return "within_budget"
	case BudgetExceeded:
		return "budget_exceeded"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Entry is a transaction as submitted by the caller. A zero Date means today
// and a blank Description gets the configured placeholder.
type Entry struct {
	UserID      int64
	Category    string
	Amount      decimal.Decimal
	Date        models.Date
	Description string
	Kind        models.Kind
}

// Outcome describes what RecordTransaction stored and how the category
// stands. Spent and Budget are only set for WithinBudget and BudgetExceeded.
type Outcome struct {
	Status      Status
	Transaction models.Transaction
	Category    string
	Spent       decimal.Decimal
	Budget      decimal.Decimal
}

// BudgetStatus tells whether SetBudget inserted or overwrote.
type BudgetStatus int

const (
	Created BudgetStatus = iota
	Updated
)

func (s BudgetStatus) String() string {
	if s == Created {
		return "created"
	}
	return "updated"
}

// BudgetOutcome is the result of SetBudget.
type BudgetOutcome struct {
	Status BudgetStatus
	Budget models.Budget
}

// Service is the accounting core.
type Service struct {
	store              interfaces.Store
	logger             *logging.Logger
	now                func() time.Time
	defaultDescription string
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDefaultDescription overrides the placeholder description.
func WithDefaultDescription(desc string) Option {
	return func(s *Service) {
		if strings.TrimSpace(desc) != "" {
			s.defaultDescription = desc
		}
	}
}

// NewService creates an accounting Service backed by store.
func NewService(store interfaces.Store, logger *logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.NewSilent()
	}
	s := &Service{
		store:              store,
		logger:             logger.Component("accounting"),
		now:                time.Now,
		defaultDescription: config.DefaultDescription,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) prepare(e Entry) (models.Transaction, error) {
	category := strings.TrimSpace(e.Category)
	if category == "" {
		return models.Transaction{}, invalid("category", "category is required")
	}
	if err := checkAmount(e.Amount.Round(2)); err != nil {
		return models.Transaction{}, err
	}
	if !e.Kind.Valid() {
		return models.Transaction{}, invalid("kind", "must be income or expense")
	}

	date := e.Date
	if date.IsZero() {
		date = models.DateOf(s.now())
	}
	desc := strings.TrimSpace(e.Description)
	if desc == "" {
		desc = s.defaultDescription
	}

	return models.Transaction{
		UserID:      e.UserID,
		Category:    category,
		Amount:      e.Amount.Round(2),
		Date:        date,
		Description: desc,
		Kind:        e.Kind,
	}, nil
}

// RecordTransaction stores a transaction and, for expenses, compares the
// category's month-to-date spend (including this one) with its budget. The
// insert and the evaluation share one store transaction.
func (s *Service) RecordTransaction(ctx context.Context, e Entry) (Outcome, error) {
	txn, err := s.prepare(e)
	if err != nil {
		return Outcome{}, err
	}

	var out Outcome
	err = s.store.InTx(ctx, func(tx interfaces.Store) error {
		if err := tx.InsertTransaction(ctx, &txn); err != nil {
			return fmt.Errorf("record transaction: %w", err)
		}
		out = Outcome{Status: Recorded, Transaction: txn, Category: txn.Category}

		if txn.Kind != models.KindExpense {
			return nil
		}

		budget, err := tx.GetBudget(ctx, txn.UserID, txn.Category)
		if errors.Is(err, storage.ErrNotFound) {
			out.Status = NoBudgetSet
			return nil
		}
		if err != nil {
			return fmt.Errorf("look up budget: %w", err)
		}

		start := txn.Date.StartOfMonth()
		spent, err := tx.SumAmounts(ctx, models.TransactionFilter{
			UserID:   txn.UserID,
			Category: txn.Category,
			Kind:     models.KindExpense,
			From:     start,
			To:       start.AddMonths(1),
		})
		if err != nil {
			return fmt.Errorf("sum month-to-date spend: %w", err)
		}

		out.Spent = spent
		out.Budget = budget.Amount
		if spent.GreaterThan(budget.Amount) {
			out.Status = BudgetExceeded
		} else {
			out.Status = WithinBudget
		}
		return nil
	})
	if err != nil {
		s.logger.Error().Err(err).
			Int64("user_id", txn.UserID).
			Str("category", txn.Category).
			Str("kind", string(txn.Kind)).
			Msg("Failed to record transaction")
		return Outcome{}, err
	}

	event := s.logger.Debug()
	if out.Status == BudgetExceeded {
		event = s.logger.Warn()
	}
	event.Int64("user_id", txn.UserID).
		Str("transaction_id", txn.ID).
		Str("category", txn.Category).
		Str("kind", string(txn.Kind)).
		Str("amount", txn.Amount.String()).
		Str("status", out.Status.String()).
		Msg("Transaction recorded")

	return out, nil
}

// SetBudget creates or overwrites the budget for a user's category.
func (s *Service) SetBudget(ctx context.Context, userID int64, category string, amount decimal.Decimal) (BudgetOutcome, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return BudgetOutcome{}, invalid("category", "category is required")
	}
	if err := checkAmount(amount.Round(2)); err != nil {
		return BudgetOutcome{}, err
	}

	budget := models.Budget{UserID: userID, Category: category, Amount: amount.Round(2)}

	var created bool
	err := s.store.InTx(ctx, func(tx interfaces.Store) error {
		var err error
		created, err = tx.UpsertBudget(ctx, budget)
		return err
	})
	if err != nil {
		s.logger.Error().Err(err).
			Int64("user_id", userID).
			Str("category", category).
			Msg("Failed to set budget")
		return BudgetOutcome{}, fmt.Errorf("set budget: %w", err)
	}

	out := BudgetOutcome{Status: Updated, Budget: budget}
	if created {
		out.Status = Created
	}
	s.logger.Debug().
		Int64("user_id", userID).
		Str("category", category).
		Str("amount", budget.Amount.String()).
		Str("status", out.Status.String()).
		Msg("Budget set")
	return out, nil
}

// Package reporting computes period totals and transaction history for a user.
package reporting

import (
	"context"
	"fmt"

	"finance-manager/internal/interfaces"
	"finance-manager/internal/logging"
	"finance-manager/internal/models"

	"github.com/shopspring/decimal"
)

// Report bundles what the console prints under "Generate Reports".
type Report struct {
	Month      Period
	Year       Period
	MonthGross decimal.Decimal
	YearGross  decimal.Decimal
	MonthNet   decimal.Decimal
	YearNet    decimal.Decimal
	ByCategory []models.CategoryTotal // for Month
	History    []models.Transaction
}

// Service answers reporting queries against a ledger.
type Service struct {
	ledger interfaces.LedgerStore
	logger *logging.Logger
}

// NewService creates a reporting Service.
func NewService(ledger interfaces.LedgerStore, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewSilent()
	}
	return &Service{ledger: ledger, logger: logger.Component("reporting")}
}

func (s *Service) filter(userID int64, p Period) models.TransactionFilter {
	return models.TransactionFilter{UserID: userID, From: p.Start, To: p.End}
}

// SumForPeriod returns the plain sum of every transaction amount in the
// period. Income and expense are added together as stored.
func (s *Service) SumForPeriod(ctx context.Context, userID int64, token string) (decimal.Decimal, error) {
	p, err := ParsePeriod(token)
	if err != nil {
		return decimal.Zero, err
	}
	return s.gross(ctx, userID, p)
}

func (s *Service) gross(ctx context.Context, userID int64, p Period) (decimal.Decimal, error) {
	total, err := s.ledger.SumAmounts(ctx, s.filter(userID, p))
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum %s: %w", p.Token, err)
	}
	return total, nil
}

// NetForPeriod returns income minus expense over the period.
func (s *Service) NetForPeriod(ctx context.Context, userID int64, token string) (decimal.Decimal, error) {
	p, err := ParsePeriod(token)
	if err != nil {
		return decimal.Zero, err
	}
	return s.net(ctx, userID, p)
}

func (s *Service) net(ctx context.Context, userID int64, p Period) (decimal.Decimal, error) {
	f := s.filter(userID, p)

	f.Kind = models.KindIncome
	income, err := s.ledger.SumAmounts(ctx, f)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum income %s: %w", p.Token, err)
	}

	f.Kind = models.KindExpense
	expense, err := s.ledger.SumAmounts(ctx, f)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum expense %s: %w", p.Token, err)
	}
	return income.Sub(expense), nil
}

// CategoryTotals breaks the period down by category and kind.
func (s *Service) CategoryTotals(ctx context.Context, userID int64, token string) ([]models.CategoryTotal, error) {
	p, err := ParsePeriod(token)
	if err != nil {
		return nil, err
	}
	totals, err := s.ledger.CategoryTotals(ctx, s.filter(userID, p))
	if err != nil {
		return nil, fmt.Errorf("category totals %s: %w", p.Token, err)
	}
	return totals, nil
}

// FullHistory returns every transaction of the user in a stable order.
func (s *Service) FullHistory(ctx context.Context, userID int64) ([]models.Transaction, error) {
	txns, err := s.ledger.ListTransactions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("transaction history: %w", err)
	}
	return txns, nil
}

// Generate builds the month and year report. Both tokens are validated
// before any query runs.
func (s *Service) Generate(ctx context.Context, userID int64, monthToken, yearToken string) (*Report, error) {
	month, err := ParsePeriod(monthToken)
	if err != nil {
		return nil, err
	}
	if !month.IsMonth() {
		return nil, badPeriod(monthToken)
	}
	year, err := ParsePeriod(yearToken)
	if err != nil {
		return nil, err
	}
	if year.IsMonth() {
		return nil, badPeriod(yearToken)
	}

	r := &Report{Month: month, Year: year}
	if r.MonthGross, err = s.gross(ctx, userID, month); err != nil {
		return nil, err
	}
	if r.YearGross, err = s.gross(ctx, userID, year); err != nil {
		return nil, err
	}
	if r.MonthNet, err = s.net(ctx, userID, month); err != nil {
		return nil, err
	}
	if r.YearNet, err = s.net(ctx, userID, year); err != nil {
		return nil, err
	}
	if r.ByCategory, err = s.ledger.CategoryTotals(ctx, s.filter(userID, month)); err != nil {
		return nil, fmt.Errorf("category totals %s: %w", month.Token, err)
	}
	if r.History, err = s.FullHistory(ctx, userID); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int64("user_id", userID).
		Str("month", month.Token).
		Str("year", year.Token).
		Int("transactions", len(r.History)).
		Msg("Report generated")
	return r, nil
}

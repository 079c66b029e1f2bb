package accounting

import (
	"strings"

	"finance-manager/internal/models"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest amount a transaction or budget may carry.
var MaxAmount = decimal.New(1, 13)

// checkAmount rejects negative and oversized amounts.
func checkAmount(d decimal.Decimal) error {
	if d.IsNegative() {
		return invalid("amount", "amount must be a non-negative number")
	}
	if d.GreaterThan(MaxAmount) {
		return invalid("amount", "amount is too large")
	}
	return nil
}

// ParseAmount parses a user-typed amount. Both "12.34" and "12,34" are
// accepted; signs are not. The result is rounded half-up to cents.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, invalid("amount", "amount is required")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, invalid("amount", "amount must be a non-negative number")
	}
	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return decimal.Zero, invalid("amount", "amount must be a number")
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid("amount", "amount must be a number")
	}
	d = d.Round(2)
	if err := checkAmount(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// ParseKind accepts "income" or "expense" in any case.
func ParseKind(s string) (models.Kind, error) {
	k := models.Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", invalid("kind", "must be income or expense")
	}
	return k, nil
}

// ParseDateOrToday parses a YYYY-MM-DD date; blank input yields the zero
// Date, which RecordTransaction replaces with today.
func ParseDateOrToday(s string) (models.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return models.Date{}, nil
	}
	d, err := models.ParseDate(s)
	if err != nil {
		return models.Date{}, invalid("date", err.Error())
	}
	return d, nil
}

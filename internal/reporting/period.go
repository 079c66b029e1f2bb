package reporting

import (
	"fmt"
	"strconv"
	"time"

	"finance-manager/internal/accounting"
	"finance-manager/internal/models"
)

// Period is a half-open date range [Start, End) named by its token.
type Period struct {
	Token string
	Start models.Date
	End   models.Date
}

// IsMonth reports whether the period spans a single calendar month.
func (p Period) IsMonth() bool {
	return len(p.Token) == 7
}

// ParsePeriod accepts a month token (YYYY-MM) or a year token (YYYY).
func ParsePeriod(token string) (Period, error) {
	switch len(token) {
	case 4:
		if !digits(token) {
			return Period{}, badPeriod(token)
		}
		year, _ := strconv.Atoi(token)
		start := models.NewDate(year, time.January, 1)
		return Period{Token: token, Start: start, End: start.AddMonths(12)}, nil

	case 7:
		if token[4] != '-' || !digits(token[:4]) || !digits(token[5:]) {
			return Period{}, badPeriod(token)
		}
		year, _ := strconv.Atoi(token[:4])
		month, _ := strconv.Atoi(token[5:])
		if month < 1 || month > 12 {
			return Period{}, badPeriod(token)
		}
		start := models.NewDate(year, time.Month(month), 1)
		return Period{Token: token, Start: start, End: start.AddMonths(1)}, nil
	}
	return Period{}, badPeriod(token)
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func badPeriod(token string) error {
	return &accounting.ValidationError{
		Field:  "period",
		Reason: fmt.Sprintf("%q is not a YYYY-MM month or YYYY year", token),
	}
}

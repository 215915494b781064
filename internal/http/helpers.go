package http

import (
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/report"

	"github.com/shopspring/decimal"
)

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// Money is an amount next to its localized rendering.
type Money struct {
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

func money(f *report.Formatter, d decimal.Decimal) Money {
	return Money{Amount: d, Formatted: f.Format(d)}
}

// parseTxType maps the categories "type" parameter, defaulting to expense.
func parseTxType(s string) (core.TxType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return core.Expense, nil
	}
	t := core.TxType(s)
	if !t.IsValid() {
		return "", core.ValidationErrors{{Field: "type", Err: core.ErrInvalidType}}
	}
	return t, nil
}

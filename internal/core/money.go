// Package core provides money parsing and handling utilities.
//
// Amounts are shopspring decimals so that sums never drift the way
// floating point sums do.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest amount every backend can hold; postgres stores
// numeric(14,4).
var MaxAmount = decimal.RequireFromString("9999999999.9999")

// ParseAmount converts a user supplied amount string to a positive decimal.
//
// The only separator accepted is the dot. Commas are rejected rather than
// guessed at, since they group digits in en-IN (1,500) and separate the
// fraction elsewhere (1,50). Signs, zero and amounts above MaxAmount are
// rejected too. Values are rounded half-up to four fractional digits.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("1,500")  -> 0, ErrInvalidAmount
//	ParseAmount("0")      -> 0, ErrInvalidAmount
//	ParseAmount("-5")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	if strings.ContainsAny(s, ",_ ") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(4)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.GreaterThan(MaxAmount) {
		return decimal.Zero, ErrAmountTooLarge
	}
	return d, nil
}

// MustAmount is ParseAmount for literals known to be valid.
func MustAmount(s string) decimal.Decimal {
	d, err := ParseAmount(s)
	if err != nil {
		panic("core: invalid amount literal " + s)
	}
	return d
}

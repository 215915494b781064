package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const maxFractionDigits = 4

// FormatConfig fixes how amounts are rendered. It affects strings only,
// never the numbers the engine computes.
type FormatConfig struct {
	Locale         string
	CurrencyCode   string
	FractionDigits int
}

// DefaultFormatConfig renders Indian rupees with two decimals.
func DefaultFormatConfig() FormatConfig {
	return FormatConfig{Locale: "en-IN", CurrencyCode: "INR", FractionDigits: 2}
}

// Formatter renders decimal amounts as localized currency strings.
type Formatter struct {
	cfg     FormatConfig
	tag     language.Tag
	unit    currency.Unit
	symbol  string
	decimal string
}

func NewFormatter(cfg FormatConfig) (*Formatter, error) {
	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", cfg.Locale, err)
	}
	unit, err := currency.ParseISO(cfg.CurrencyCode)
	if err != nil {
		return nil, fmt.Errorf("invalid currency code %q: %w", cfg.CurrencyCode, err)
	}
	if cfg.FractionDigits < 0 || cfg.FractionDigits > maxFractionDigits {
		return nil, fmt.Errorf("invalid fraction digits %d: must be between 0 and %d", cfg.FractionDigits, maxFractionDigits)
	}

	p := message.NewPrinter(tag)
	symbol := strings.TrimSpace(p.Sprint(currency.Symbol(unit)))
	if symbol == "" {
		symbol = unit.String()
	}
	sep := strings.Trim(p.Sprint(number.Decimal(1.5, number.Scale(1))), "15")
	if sep == "" {
		sep = "."
	}
	return &Formatter{cfg: cfg, tag: tag, unit: unit, symbol: symbol, decimal: sep}, nil
}

func (f *Formatter) Config() FormatConfig { return f.cfg }

// Symbol is the currency symbol for the configured locale, e.g. "₹".
func (f *Formatter) Symbol() string { return f.symbol }

// Number renders the amount with locale grouping and no currency symbol.
// Only the integer part goes through the locale printer; the fraction is
// copied from the decimal so no digits pass through a float.
func (f *Formatter) Number(d decimal.Decimal) string {
	digits := int32(f.cfg.FractionDigits)
	r := d.Round(digits)
	abs := r.Abs()
	s := message.NewPrinter(f.tag).Sprint(number.Decimal(abs.IntPart()))
	if digits > 0 {
		fixed := abs.StringFixed(digits)
		s += f.decimal + fixed[strings.IndexByte(fixed, '.')+1:]
	}
	if r.IsNegative() {
		return "-" + s
	}
	return s
}

// Format renders the amount with the currency symbol, e.g. "₹1,234.50".
// Negative values carry a leading minus: "-₹50.00".
func (f *Formatter) Format(d decimal.Decimal) string {
	n := f.Number(d)
	if strings.HasPrefix(n, "-") {
		return "-" + f.symbol + n[1:]
	}
	return f.symbol + n
}

package report

import (
	"sort"
	"time"

	"bilancio/internal/core"

	"github.com/shopspring/decimal"
)

const (
	DefaultSeriesWindow = 6
	DefaultRecentLimit  = 5
)

// MonthKeyLayout renders a month as "Jan 2025".
const MonthKeyLayout = "Jan 2006"

type (
	// Month is a calendar month. Ordering is by year, then month.
	Month struct {
		Year  int
		Month time.Month
	}

	// MonthlyPoint is one entry of the monthly trend.
	MonthlyPoint struct {
		Month   string          `json:"month"`
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
	}
)

// MonthOf returns the calendar month of a date.
func MonthOf(d core.Date) Month {
	return Month{Year: d.Year(), Month: d.Month()}
}

// Key renders the month as "Jan 2025".
func (m Month) Key() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format(MonthKeyLayout)
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// ParseMonthKey is the inverse of Month.Key.
func ParseMonthKey(s string) (Month, error) {
	t, err := time.Parse(MonthKeyLayout, s)
	if err != nil {
		return Month{}, err
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// GroupByMonth buckets transactions under their "Jan 2025" month key.
// Order inside a bucket follows the input.
func GroupByMonth(txs []core.Transaction) map[string][]core.Transaction {
	out := make(map[string][]core.Transaction)
	for _, tx := range txs {
		k := MonthOf(tx.Date).Key()
		out[k] = append(out[k], tx)
	}
	return out
}

// MonthlySeries sums income and expense per month in calendar order and
// keeps the most recent window months. window <= 0 means DefaultSeriesWindow.
// Months without transactions are not synthesized.
func MonthlySeries(txs []core.Transaction, window int) []MonthlyPoint {
	if window <= 0 {
		window = DefaultSeriesWindow
	}
	type sums struct{ in, out decimal.Decimal }
	byMonth := make(map[Month]*sums)
	for _, tx := range txs {
		m := MonthOf(tx.Date)
		s, ok := byMonth[m]
		if !ok {
			s = &sums{in: decimal.Zero, out: decimal.Zero}
			byMonth[m] = s
		}
		switch tx.Type {
		case core.Income:
			s.in = s.in.Add(tx.Amount)
		case core.Expense:
			s.out = s.out.Add(tx.Amount)
		}
	}

	months := make([]Month, 0, len(byMonth))
	for m := range byMonth {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	if len(months) > window {
		months = months[len(months)-window:]
	}

	out := make([]MonthlyPoint, 0, len(months))
	for _, m := range months {
		s := byMonth[m]
		out = append(out, MonthlyPoint{Month: m.Key(), Income: s.in, Expense: s.out})
	}
	return out
}

// RecentTransactions returns up to limit transactions, newest date first.
// Transactions on the same date keep their input order.
// limit <= 0 means DefaultRecentLimit.
func RecentTransactions(txs []core.Transaction, limit int) []core.Transaction {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	sorted := SortByDateDesc(txs)
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// SortByDateDesc returns a copy ordered newest first, stable on ties.
func SortByDateDesc(txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, len(txs))
	copy(out, txs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Date.Before(out[i].Date)
	})
	return out
}

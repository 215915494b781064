package report

import (
	"bilancio/internal/core"

	"github.com/shopspring/decimal"
)

// Options tunes Summarize. Zero values fall back to the defaults.
type Options struct {
	SeriesWindow int
	RecentLimit  int
}

// Dashboard is every view of the overview page, computed from one list.
type Dashboard struct {
	Totals            Totals                               `json:"totals"`
	IncomeCategories  []CategoryAmount                     `json:"incomeCategories"`
	ExpenseCategories []CategoryAmount                     `json:"expenseCategories"`
	CategoryFlows     []CategoryFlow                       `json:"categoryFlows"`
	PaymentModes      map[core.PaymentMode]decimal.Decimal `json:"paymentModes"`
	Monthly           []MonthlyPoint                       `json:"monthly"`
	Recent            []core.Transaction                   `json:"recent"`
	TransactionCount  int                                  `json:"transactionCount"`
}

// Summarize validates txs and builds the dashboard. A malformed record
// fails the whole call rather than being skipped or coerced.
func Summarize(txs []core.Transaction, opts Options) (Dashboard, error) {
	if err := ValidateAll(txs); err != nil {
		return Dashboard{}, err
	}
	return Dashboard{
		Totals:            Overview(txs),
		IncomeCategories:  RankCategories(TotalsByCategory(txs, core.Income)),
		ExpenseCategories: RankCategories(TotalsByCategory(txs, core.Expense)),
		CategoryFlows:     CategoryFlows(txs),
		PaymentModes:      TotalsByPaymentMode(txs),
		Monthly:           MonthlySeries(txs, opts.SeriesWindow),
		Recent:            RecentTransactions(txs, opts.RecentLimit),
		TransactionCount:  len(txs),
	}, nil
}

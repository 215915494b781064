// Package report turns a flat list of transactions into the derived views
// shown on the dashboard. Every function is pure: inputs are never mutated
// and results never alias them. Empty input yields identity values.
package report

import (
	"sort"

	"bilancio/internal/core"

	"github.com/shopspring/decimal"
)

type (
	// CategoryAmount is one entry of a ranked category breakdown.
	CategoryAmount struct {
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
	}

	// CategoryFlow holds income and expense of a single category.
	CategoryFlow struct {
		Category string          `json:"category"`
		Income   decimal.Decimal `json:"income"`
		Expense  decimal.Decimal `json:"expense"`
	}

	// Totals are the three overview cards.
	Totals struct {
		Balance      decimal.Decimal `json:"balance"`
		TotalIncome  decimal.Decimal `json:"totalIncome"`
		TotalExpense decimal.Decimal `json:"totalExpense"`
	}
)

// TotalByType sums the amounts of the transactions of type t.
// Amounts are summed as given; validation belongs to the write path.
func TotalByType(txs []core.Transaction, t core.TxType) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type == t {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// Balance is total income minus total expense. It may be negative.
func Balance(txs []core.Transaction) decimal.Decimal {
	return TotalByType(txs, core.Income).Sub(TotalByType(txs, core.Expense))
}

// Overview computes balance and per-type totals in one pass.
func Overview(txs []core.Transaction) Totals {
	in, out := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			in = in.Add(tx.Amount)
		case core.Expense:
			out = out.Add(tx.Amount)
		}
	}
	return Totals{Balance: in.Sub(out), TotalIncome: in, TotalExpense: out}
}

// TotalsByCategory sums amounts per distinct category for type t.
// An empty category string is a key of its own.
func TotalsByCategory(txs []core.Transaction, t core.TxType) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != t {
			continue
		}
		out[tx.Category] = out[tx.Category].Add(tx.Amount)
	}
	return out
}

// RankCategories orders a category map by descending amount, then by name.
func RankCategories(totals map[string]decimal.Decimal) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(totals))
	for c, a := range totals {
		out = append(out, CategoryAmount{Category: c, Amount: a})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// NetByCategory adds income and subtracts expense per category.
func NetByCategory(txs []core.Transaction) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		out[tx.Category] = out[tx.Category].Add(tx.Signed())
	}
	return out
}

// CategoryFlows returns income and expense per category in first-seen order.
func CategoryFlows(txs []core.Transaction) []CategoryFlow {
	index := make(map[string]int)
	out := make([]CategoryFlow, 0)
	for _, tx := range txs {
		i, ok := index[tx.Category]
		if !ok {
			i = len(out)
			index[tx.Category] = i
			out = append(out, CategoryFlow{Category: tx.Category, Income: decimal.Zero, Expense: decimal.Zero})
		}
		switch tx.Type {
		case core.Income:
			out[i].Income = out[i].Income.Add(tx.Amount)
		case core.Expense:
			out[i].Expense = out[i].Expense.Add(tx.Amount)
		}
	}
	return out
}

// TotalsByPaymentMode sums expenses per payment mode. Incomes and expenses
// without a recorded mode are left out; no catch-all bucket is created.
func TotalsByPaymentMode(txs []core.Transaction) map[core.PaymentMode]decimal.Decimal {
	out := make(map[core.PaymentMode]decimal.Decimal)
	for _, tx := range txs {
		if tx.Type != core.Expense || !tx.PaymentMode.IsSet() {
			continue
		}
		out[tx.PaymentMode] = out[tx.PaymentMode].Add(tx.Amount)
	}
	return out
}

package services

import (
	"context"
	"fmt"
	"time"

	"bilancio/internal/core"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
)

// DemoTransactions is the April 2025 sample ledger, in rupees.
func DemoTransactions() []NewTransaction {
	day := func(d int) core.Date { return core.NewDate(2025, 4, d) }
	return []NewTransaction{
		{Amount: core.MustAmount("50000"), Description: "Salary", Category: "Salary", Date: day(1), Type: core.Income},
		{Amount: core.MustAmount("2000"), Description: "Freelance", Category: "Freelance", Date: day(10), Type: core.Income},
		{Amount: core.MustAmount("300"), Description: "Interest", Category: "Interest", Date: day(12), Type: core.Income},
		{Amount: core.MustAmount("15000"), Description: "House Rent", Category: "Housing", Date: day(3), Type: core.Expense, PaymentMode: core.PaymentNetBanking},
		{Amount: core.MustAmount("6000"), Description: "Shopping", Category: "Shopping", Date: day(7), Type: core.Expense, PaymentMode: core.PaymentCard},
		{Amount: core.MustAmount("4000"), Description: "Travel", Category: "Travel", Date: day(14), Type: core.Expense, PaymentMode: core.PaymentUPI},
		{Amount: core.MustAmount("1200"), Description: "Dining Out", Category: "Food", Date: day(16), Type: core.Expense, PaymentMode: core.PaymentCard},
		{Amount: core.MustAmount("2100"), Description: "Groceries", Category: "Groceries", Date: day(5), Type: core.Expense, PaymentMode: core.PaymentUPI},
		{Amount: core.MustAmount("599"), Description: "Mobile Recharge", Category: "Bills", Date: day(9), Type: core.Expense, PaymentMode: core.PaymentUPI},
		{Amount: core.MustAmount("350"), Description: "Medical", Category: "Healthcare", Date: day(11), Type: core.Expense, PaymentMode: core.PaymentCash},
	}
}

// RandomTransactions generates n plausible transactions dated within the
// year before until. The same seed yields the same ledger.
func RandomTransactions(seed uint64, n int, until time.Time) []NewTransaction {
	f := gofakeit.New(seed)
	incomes := core.IncomeCategories()
	expenses := core.ExpenseCategories()
	modes := core.PaymentModes()

	out := make([]NewTransaction, 0, n)
	for i := 0; i < n; i++ {
		when := until.AddDate(0, 0, -f.IntRange(0, 364))
		in := NewTransaction{
			Description: f.Word() + " " + f.Word(),
			Date:        core.NewDate(when.Year(), int(when.Month()), when.Day()),
		}
		// roughly one income in five
		if f.IntRange(1, 5) == 1 {
			in.Type = core.Income
			in.Category = incomes[f.IntRange(0, len(incomes)-1)]
			in.Amount = decimal.NewFromFloat(f.Price(1000, 60000)).Round(2)
		} else {
			in.Type = core.Expense
			in.Category = expenses[f.IntRange(0, len(expenses)-1)]
			in.Amount = decimal.NewFromFloat(f.Price(10, 8000)).Round(2)
			in.PaymentMode = modes[f.IntRange(0, len(modes)-1)]
		}
		if !in.Amount.IsPositive() {
			in.Amount = decimal.NewFromInt(1)
		}
		if f.Bool() {
			in.Tags = []string{f.Word()}
		}
		out = append(out, in)
	}
	return out
}

// Seed creates every input through the ledger, stopping at the first failure.
func Seed(ctx context.Context, ledger *LedgerService, session core.Session, inputs []NewTransaction) ([]core.Transaction, error) {
	created := make([]core.Transaction, 0, len(inputs))
	for i, in := range inputs {
		tx, err := ledger.Create(ctx, session, in)
		if err != nil {
			return created, fmt.Errorf("seed transaction %d (%s): %w", i, in.Description, err)
		}
		created = append(created, tx)
	}
	return created, nil
}

package core

// Suggested categories. Category is free text, these only feed pickers.
var (
	incomeCategories = []string{
		"Salary", "Business", "Freelance", "Investments",
		"Rent", "Interest", "Gifts", "Other",
	}
	expenseCategories = []string{
		"Food", "Groceries", "Housing", "Transportation", "Shopping",
		"Entertainment", "Healthcare", "Education", "Bills", "Travel",
		"Insurance", "Investment", "Other",
	}
)

// IncomeCategories returns a copy of the suggested income categories.
func IncomeCategories() []string {
	return append([]string(nil), incomeCategories...)
}

// ExpenseCategories returns a copy of the suggested expense categories.
func ExpenseCategories() []string {
	return append([]string(nil), expenseCategories...)
}

// SuggestedCategories returns the suggestions for a transaction type.
func SuggestedCategories(t TxType) []string {
	switch t {
	case Income:
		return IncomeCategories()
	case Expense:
		return ExpenseCategories()
	}
	return nil
}

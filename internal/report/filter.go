package report

import (
	"fmt"
	"strings"

	"bilancio/internal/core"
)

// TypeAll disables the type filter of a Query.
const TypeAll = "all"

// Query narrows a transaction list the way the transactions page does.
type Query struct {
	// Text matches description or category, case-insensitively.
	Text string
	// Type is "all", "income" or "expense". Empty means all.
	Type string
}

func (q Query) Validate() error {
	switch q.Type {
	case "", TypeAll, string(core.Income), string(core.Expense):
		return nil
	}
	return fmt.Errorf("unknown type filter %q", q.Type)
}

// Filter keeps the transactions that match q, preserving input order.
func Filter(txs []core.Transaction, q Query) []core.Transaction {
	needle := strings.ToLower(strings.TrimSpace(q.Text))
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if q.Type != "" && q.Type != TypeAll && string(tx.Type) != q.Type {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(tx.Description), needle) &&
			!strings.Contains(strings.ToLower(tx.Category), needle) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

// ValidateAll checks already-stored records before they are aggregated.
func ValidateAll(txs []core.Transaction) error {
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %d (%s): %w", i, tx.ID, err)
		}
	}
	return nil
}

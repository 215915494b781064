package services

import (
	"context"
	"fmt"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	"bilancio/internal/store"
)

// Publisher announces committed ledger writes.
type Publisher interface {
	Publish(ctx context.Context, event *amqp.TransactionEvent) error
}

// Recorder receives service level counters. *metrics.Metrics satisfies it.
type Recorder interface {
	RecordTransaction(operation, txType, status string)
	RecordCache(hit bool)
	RecordEvent(action, status string)
}

// Invalidator drops whatever a user's write made stale.
type Invalidator interface {
	Invalidate(userID string)
}

// TransactionSource yields a user's full ledger.
type TransactionSource interface {
	All(ctx context.Context, session core.Session) ([]core.Transaction, error)
}

type nopRecorder struct{}

func (nopRecorder) RecordTransaction(string, string, string) {}
func (nopRecorder) RecordCache(bool)                         {}
func (nopRecorder) RecordEvent(string, string)               {}

// ProviderSource reads ledgers straight from a store provider. It lets the
// dashboard service be built before the ledger service that invalidates it.
type ProviderSource struct {
	Provider store.Provider
}

func (p ProviderSource) All(ctx context.Context, session core.Session) ([]core.Transaction, error) {
	st, err := p.Provider.ForSession(session)
	if err != nil {
		return nil, err
	}
	txs, err := st.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

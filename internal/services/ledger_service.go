package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/metrics"
	"bilancio/internal/report"
	"bilancio/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewTransaction is the caller supplied part of a transaction.
type NewTransaction struct {
	Amount      decimal.Decimal
	Description string
	Category    string
	Date        core.Date
	Type        core.TxType
	PaymentMode core.PaymentMode
	Tags        []string
}

// ListQuery narrows List. Limit <= 0 returns everything.
type ListQuery struct {
	Text  string
	Type  string
	Limit int
}

// LedgerService orchestrates ledger writes across the store, the report
// cache and the event bus.
type LedgerService struct {
	provider    store.Provider
	publisher   Publisher
	invalidator Invalidator
	recorder    Recorder
	logger      *applog.Logger

	now   func() time.Time
	newID func() string
}

type LedgerOption func(*LedgerService)

// WithPublisher sets the event publisher. Without one, events are skipped.
func WithPublisher(p Publisher) LedgerOption {
	return func(s *LedgerService) { s.publisher = p }
}

func WithInvalidator(i Invalidator) LedgerOption {
	return func(s *LedgerService) { s.invalidator = i }
}

func WithRecorder(r Recorder) LedgerOption {
	return func(s *LedgerService) { s.recorder = r }
}

func WithLogger(l *applog.Logger) LedgerOption {
	return func(s *LedgerService) { s.logger = l }
}

func NewLedgerService(provider store.Provider, opts ...LedgerOption) *LedgerService {
	s := &LedgerService{
		provider: provider,
		recorder: nopRecorder{},
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = applog.New(applog.Config{Component: applog.ComponentLedger})
	}
	return s
}

// Create stores a new transaction for the session and returns it with its
// assigned id and creation time.
func (s *LedgerService) Create(ctx context.Context, session core.Session, in NewTransaction) (core.Transaction, error) {
	st, err := s.provider.ForSession(session)
	if err != nil {
		return core.Transaction{}, err
	}

	tx := core.Transaction{
		ID:          s.newID(),
		Amount:      in.Amount,
		Description: in.Description,
		Category:    in.Category,
		Date:        in.Date,
		Type:        in.Type,
		PaymentMode: in.PaymentMode,
		Tags:        in.Tags,
		CreatedAt:   s.now(),
	}.Normalize()
	if err := tx.Validate(); err != nil {
		s.recorder.RecordTransaction(applog.OpCreate, string(tx.Type), metrics.StatusInvalid)
		return core.Transaction{}, err
	}

	// Save first; the event only announces a committed write.
	if err := st.Create(ctx, tx); err != nil {
		s.recorder.RecordTransaction(applog.OpCreate, string(tx.Type), metrics.StatusError)
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}
	s.invalidate(session.UserID)
	s.recorder.RecordTransaction(applog.OpCreate, string(tx.Type), metrics.StatusOK)
	applog.NewStructuredLogger(s.logFor(ctx)).LogTransactionCreated(ctx,
		session.UserID, tx.ID, string(tx.Type), tx.Amount.String(), tx.Category)

	if err := s.publish(ctx, amqp.NewCreatedEvent(session.UserID, tx)); err != nil {
		s.logFor(ctx).ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldTransactionID, tx.ID, applog.FieldError, err)
		// the transaction is stored; the mirror catches up on the next event
	}
	return tx, nil
}

// Delete removes the transaction with the given id from the session's ledger.
func (s *LedgerService) Delete(ctx context.Context, session core.Session, id string) error {
	st, err := s.provider.ForSession(session)
	if err != nil {
		return err
	}
	if err := st.Delete(ctx, id); err != nil {
		status := metrics.StatusError
		if errors.Is(err, store.ErrNotFound) {
			status = metrics.StatusNotFound
		}
		s.recorder.RecordTransaction(applog.OpDelete, "", status)
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.invalidate(session.UserID)
	s.recorder.RecordTransaction(applog.OpDelete, "", metrics.StatusOK)
	applog.NewStructuredLogger(s.logFor(ctx)).LogTransactionDeleted(ctx, session.UserID, id)

	if err := s.publish(ctx, amqp.NewDeletedEvent(session.UserID, id)); err != nil {
		s.logFor(ctx).ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldTransactionID, id, applog.FieldError, err)
	}
	return nil
}

// All returns the session's whole ledger in store order.
func (s *LedgerService) All(ctx context.Context, session core.Session) ([]core.Transaction, error) {
	return ProviderSource{Provider: s.provider}.All(ctx, session)
}

// List returns the session's transactions matching q, newest first.
func (s *LedgerService) List(ctx context.Context, session core.Session, q ListQuery) ([]core.Transaction, error) {
	query := report.Query{Text: q.Text, Type: q.Type}
	if err := query.Validate(); err != nil {
		return nil, err
	}
	txs, err := s.All(ctx, session)
	if err != nil {
		return nil, err
	}
	out := report.SortByDateDesc(report.Filter(txs, query))
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *LedgerService) invalidate(userID string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(userID)
	}
}

func (s *LedgerService) publish(ctx context.Context, event *amqp.TransactionEvent) error {
	if s.publisher == nil {
		s.logFor(ctx).DebugContext(ctx, "Event publisher not configured, skipping event",
			applog.FieldRoutingKey, event.RoutingKey())
		return nil
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.recorder.RecordEvent(string(event.Action), metrics.StatusFailed)
		return err
	}
	s.recorder.RecordEvent(string(event.Action), metrics.StatusPublished)
	return nil
}

// logFor prefers the request scoped logger when there is one.
func (s *LedgerService) logFor(ctx context.Context) *applog.Logger {
	if l, ok := ctx.Value(applog.LoggerContextKey).(*applog.Logger); ok && l != nil {
		return l.WithComponent(applog.ComponentLedger)
	}
	return s.logger
}

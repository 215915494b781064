// Package worker applies ledger events to a secondary backend.
package worker

import (
	"context"
	"errors"
	"fmt"

	"bilancio/internal/amqp"
	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/metrics"
	"bilancio/internal/store"
)

// Consumer delivers transaction events until ctx is done. *amqp.Client
// satisfies it.
type Consumer interface {
	Consume(ctx context.Context, handler func(context.Context, *amqp.TransactionEvent) error) error
}

// EventRecorder counts handled events. *metrics.Metrics satisfies it.
type EventRecorder interface {
	RecordEvent(action, status string)
}

// MirrorWorker replays created and deleted events onto a mirror backend so
// it converges on the primary ledger. Replays are idempotent: a duplicate
// create or a delete of a missing row is skipped, and a create whose id was
// already deleted is skipped whatever order the two arrive in.
type MirrorWorker struct {
	target     store.Provider
	recorder   EventRecorder
	logger     *applog.Logger
	tombstones Tombstones
}

type MirrorOption func(*MirrorWorker)

// WithTombstones replaces the in-process deletion markers.
func WithTombstones(t Tombstones) MirrorOption {
	return func(w *MirrorWorker) { w.tombstones = t }
}

func NewMirrorWorker(target store.Provider, recorder EventRecorder, logger *applog.Logger, opts ...MirrorOption) *MirrorWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	w := &MirrorWorker{
		target:   target,
		recorder: recorder,
		logger:   logger.WithComponent(applog.ComponentWorker),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.tombstones == nil {
		w.tombstones = NewCacheTombstones(DefaultTombstoneSize, DefaultTombstoneTTL)
	}
	return w
}

type nopRecorder struct{}

func (nopRecorder) RecordEvent(string, string) {}

// Run consumes events until ctx is cancelled or the consumer fails.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer) error {
	w.logger.InfoContext(ctx, "Mirror worker started")
	err := consumer.Consume(ctx, w.HandleEvent)
	if errors.Is(err, context.Canceled) {
		w.logger.InfoContext(ctx, "Mirror worker stopped")
		return nil
	}
	return err
}

// HandleEvent applies one event. Errors wrapped with amqp.Permanent are
// dropped by the consumer; any other error requeues the event.
func (w *MirrorWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	log := w.logger.With(
		applog.FieldUserID, event.UserID,
		applog.FieldTransactionID, event.TransactionID,
		applog.FieldRoutingKey, event.RoutingKey())
	log.DebugContext(ctx, "Processing transaction event")

	st, err := w.target.ForSession(core.Session{UserID: event.UserID})
	if err != nil {
		w.recorder.RecordEvent(string(event.Action), metrics.StatusFailed)
		return amqp.Permanent(fmt.Errorf("open mirror store: %w", err))
	}

	var status string
	switch event.Action {
	case amqp.ActionCreated:
		status, err = w.applyCreate(ctx, st, event)
	case amqp.ActionDeleted:
		status, err = w.applyDelete(ctx, st, event)
	default:
		err = amqp.Permanent(fmt.Errorf("unknown action %q", event.Action))
		status = metrics.StatusFailed
	}
	w.recorder.RecordEvent(string(event.Action), status)

	if err != nil {
		log.ErrorContext(ctx, "Failed to mirror transaction event",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpMirror)
		return err
	}
	log.InfoContext(ctx, "Mirrored transaction event", "status", status)
	return nil
}

func (w *MirrorWorker) applyCreate(ctx context.Context, st store.Store, event *amqp.TransactionEvent) (string, error) {
	if event.Transaction == nil {
		return metrics.StatusFailed, amqp.Permanent(errors.New("created event without transaction"))
	}
	if w.tombstones.Buried(event.UserID, event.Transaction.ID) {
		return metrics.StatusSkipped, nil
	}
	err := st.Create(ctx, *event.Transaction)
	switch {
	case err == nil:
		return metrics.StatusMirrored, nil
	case errors.Is(err, store.ErrDuplicate):
		return metrics.StatusSkipped, nil
	case isValidation(err):
		return metrics.StatusFailed, amqp.Permanent(fmt.Errorf("mirror create: %w", err))
	default:
		return metrics.StatusFailed, fmt.Errorf("mirror create: %w", err)
	}
}

func (w *MirrorWorker) applyDelete(ctx context.Context, st store.Store, event *amqp.TransactionEvent) (string, error) {
	w.tombstones.Bury(event.UserID, event.TransactionID)
	err := st.Delete(ctx, event.TransactionID)
	switch {
	case err == nil:
		return metrics.StatusMirrored, nil
	case errors.Is(err, store.ErrNotFound):
		return metrics.StatusSkipped, nil
	default:
		return metrics.StatusFailed, fmt.Errorf("mirror delete: %w", err)
	}
}

func isValidation(err error) bool {
	_, ok := core.AsValidation(err)
	return ok
}

package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bilancio/internal/core"
)

// Action is what happened to a transaction.
type Action string

const (
	ActionCreated Action = "created"
	ActionDeleted Action = "deleted"
)

// RoutingPrefix prefixes every routing key; the mirror queue binds to RoutingPrefix + "*".
const RoutingPrefix = "transaction."

// TransactionEvent announces a committed ledger write. Created events carry
// the full transaction so consumers never read back from the primary store.
type TransactionEvent struct {
	Action        Action            `json:"action"`
	UserID        string            `json:"userId"`
	TransactionID string            `json:"transactionId"`
	Transaction   *core.Transaction `json:"transaction,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

func NewCreatedEvent(userID string, tx core.Transaction) *TransactionEvent {
	return &TransactionEvent{
		Action:        ActionCreated,
		UserID:        userID,
		TransactionID: tx.ID,
		Transaction:   &tx,
		Timestamp:     time.Now().UTC(),
	}
}

func NewDeletedEvent(userID, transactionID string) *TransactionEvent {
	return &TransactionEvent{
		Action:        ActionDeleted,
		UserID:        userID,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

// RoutingKey is "transaction.created" or "transaction.deleted".
func (e *TransactionEvent) RoutingKey() string {
	return RoutingPrefix + string(e.Action)
}

// Validate rejects events a consumer cannot apply.
func (e *TransactionEvent) Validate() error {
	if e.UserID == "" {
		return errors.New("event without userId")
	}
	if e.TransactionID == "" {
		return errors.New("event without transactionId")
	}
	switch e.Action {
	case ActionCreated:
		if e.Transaction == nil {
			return errors.New("created event without transaction")
		}
		if e.Transaction.ID != e.TransactionID {
			return fmt.Errorf("transaction id %q does not match event id %q", e.Transaction.ID, e.TransactionID)
		}
	case ActionDeleted:
	default:
		return fmt.Errorf("unknown action %q", e.Action)
	}
	return nil
}

func (e *TransactionEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func TransactionEventFromJSON(data []byte) (*TransactionEvent, error) {
	var ev TransactionEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

package memory

import (
	"context"
	"fmt"
	"sync"

	"bilancio/internal/core"
	"bilancio/internal/store"
)

// Ledger holds every user's transactions in process memory.
type Ledger struct {
	mu     sync.Mutex
	byUser map[string][]core.Transaction
}

func NewLedger() *Ledger {
	return &Ledger{byUser: make(map[string][]core.Transaction)}
}

// ForSession implements store.Provider.
func (l *Ledger) ForSession(session core.Session) (store.Store, error) {
	return New(l, session)
}

// Store is the view of a Ledger for one session.
type Store struct {
	ledger  *Ledger
	session core.Session
}

func New(l *Ledger, session core.Session) (*Store, error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	return &Store{ledger: l, session: session}, nil
}

func (s *Store) Create(_ context.Context, tx core.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()
	items := s.ledger.byUser[s.session.UserID]
	for _, it := range items {
		if it.ID == tx.ID {
			return fmt.Errorf("create %s: %w", tx.ID, store.ErrDuplicate)
		}
	}
	tx.Tags = append([]string(nil), tx.Tags...)
	s.ledger.byUser[s.session.UserID] = append(items, tx)
	return nil
}

func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()
	items := s.ledger.byUser[s.session.UserID]
	out := make([]core.Transaction, len(items))
	for i, it := range items {
		it.Tags = append([]string(nil), it.Tags...)
		out[i] = it
	}
	return out, nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.ledger.mu.Lock()
	defer s.ledger.mu.Unlock()
	items := s.ledger.byUser[s.session.UserID]
	for i, it := range items {
		if it.ID == id {
			rest := make([]core.Transaction, 0, len(items)-1)
			rest = append(rest, items[:i]...)
			rest = append(rest, items[i+1:]...)
			s.ledger.byUser[s.session.UserID] = rest
			return nil
		}
	}
	return fmt.Errorf("delete %s: %w", id, store.ErrNotFound)
}

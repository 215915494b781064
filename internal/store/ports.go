// Package store defines the persistence capability shared by every backend.
package store

import (
	"context"
	"errors"

	"bilancio/internal/core"
)

var (
	ErrNotFound  = errors.New("transaction not found")
	ErrDuplicate = errors.New("transaction already exists")
)

// Ports for outbound adapters.
type (
	Creator interface {
		// Create persists a validated transaction. The id is already set.
		Create(ctx context.Context, tx core.Transaction) error
	}

	Lister interface {
		// List returns every transaction of the session. Order is unspecified.
		List(ctx context.Context) ([]core.Transaction, error)
	}

	Deleter interface {
		// Delete removes the transaction with the given id or returns ErrNotFound.
		Delete(ctx context.Context, id string) error
	}

	// Store is one user's ledger on one backend.
	Store interface {
		Creator
		Lister
		Deleter
	}

	// Provider hands out stores bound to a session. Backends share their
	// connection across sessions and scope every query to the session user.
	Provider interface {
		ForSession(session core.Session) (Store, error)
	}
)

// ProviderFunc adapts a constructor to a Provider.
type ProviderFunc func(session core.Session) (Store, error)

func (f ProviderFunc) ForSession(session core.Session) (Store, error) { return f(session) }

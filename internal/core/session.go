package core

import (
	"errors"
	"strings"
)

var ErrNoSession = errors.New("session has no user id")

// Session identifies whose ledger an operation touches. It is passed
// explicitly to store constructors and never read from globals.
type Session struct {
	UserID string
}

func NewSession(userID string) (Session, error) {
	s := Session{UserID: strings.TrimSpace(userID)}
	return s, s.Validate()
}

func (s Session) Validate() error {
	if s.UserID == "" {
		return ErrNoSession
	}
	return nil
}

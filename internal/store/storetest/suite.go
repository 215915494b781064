// Package storetest is the behavior every store.Provider must show.
// Backend tests embed Suite and supply a fresh provider per test.
package storetest

import (
	"context"
	"errors"
	"sort"

	"bilancio/internal/core"
	"bilancio/internal/report"
	"bilancio/internal/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type Suite struct {
	suite.Suite

	// NewProvider returns an empty provider. Called before each test.
	NewProvider func() store.Provider

	provider store.Provider
	ctx      context.Context
}

func (s *Suite) SetupTest() {
	s.Require().NotNil(s.NewProvider, "NewProvider must be set")
	s.provider = s.NewProvider()
	s.ctx = context.Background()
}

func (s *Suite) session(user string) store.Store {
	st, err := s.provider.ForSession(core.Session{UserID: user})
	s.Require().NoError(err)
	return st
}

// Fixture is the three-transaction ledger from the reporting tests.
func Fixture() []core.Transaction {
	mode := core.PaymentUPI
	return []core.Transaction{
		{ID: "tx-1", Amount: core.MustAmount("100"), Description: "January salary", Category: "Salary", Date: core.NewDate(2025, 1, 1), Type: core.Income},
		{ID: "tx-2", Amount: core.MustAmount("40"), Description: "Groceries run", Category: "Food", Date: core.NewDate(2025, 1, 2), Type: core.Expense, PaymentMode: mode, Tags: []string{"weekly", "home"}},
		{ID: "tx-3", Amount: core.MustAmount("10.55"), Description: "Coffee", Category: "Food", Date: core.NewDate(2025, 2, 1), Type: core.Expense},
	}
}

func byID(txs []core.Transaction) []core.Transaction {
	sort.Slice(txs, func(i, j int) bool { return txs[i].ID < txs[j].ID })
	return txs
}

func (s *Suite) TestRejectsEmptySession() {
	_, err := s.provider.ForSession(core.Session{})
	s.Require().Error(err)
	s.True(errors.Is(err, core.ErrNoSession))
}

func (s *Suite) TestCreateAndList() {
	st := s.session("alice")
	for _, tx := range Fixture() {
		s.Require().NoError(st.Create(s.ctx, tx))
	}

	got, err := st.List(s.ctx)
	s.Require().NoError(err)
	got = byID(got)
	want := Fixture()
	s.Require().Len(got, len(want))
	for i := range want {
		s.Equal(want[i].ID, got[i].ID)
		s.True(want[i].Amount.Equal(got[i].Amount), "amount %s != %s", want[i].Amount, got[i].Amount)
		s.Equal(want[i].Description, got[i].Description)
		s.Equal(want[i].Category, got[i].Category)
		s.Equal(want[i].Date.String(), got[i].Date.String())
		s.Equal(want[i].Type, got[i].Type)
		s.Equal(want[i].PaymentMode, got[i].PaymentMode)
		s.ElementsMatch(want[i].Tags, got[i].Tags)
	}
}

func (s *Suite) TestCreateRejectsInvalid() {
	st := s.session("alice")
	bad := Fixture()[0]
	bad.Amount = bad.Amount.Neg()
	err := st.Create(s.ctx, bad)
	s.Require().Error(err)
	verrs, ok := core.AsValidation(err)
	s.Require().True(ok)
	s.True(verrs.Has("amount"))

	got, err := st.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *Suite) TestCreateEnforcesAmountCeilingAndTagSeparator() {
	st := s.session("alice")

	big := Fixture()[0]
	big.Amount = core.MaxAmount.Add(decimal.RequireFromString("0.0001"))
	err := st.Create(s.ctx, big)
	s.Require().Error(err)
	s.True(errors.Is(err, core.ErrAmountTooLarge), "got %v", err)

	comma := Fixture()[1]
	comma.Tags = []string{"trip,goa"}
	err = st.Create(s.ctx, comma)
	s.Require().Error(err)
	s.True(errors.Is(err, core.ErrInvalidTag), "got %v", err)

	ceiling := Fixture()[2]
	ceiling.Amount = core.MaxAmount
	s.Require().NoError(st.Create(s.ctx, ceiling))
	got, err := st.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.True(core.MaxAmount.Equal(got[0].Amount), "amount %s", got[0].Amount)
}

func (s *Suite) TestCreateDuplicateID() {
	st := s.session("alice")
	tx := Fixture()[0]
	s.Require().NoError(st.Create(s.ctx, tx))
	err := st.Create(s.ctx, tx)
	s.Require().Error(err)
	s.True(errors.Is(err, store.ErrDuplicate), "got %v", err)
}

func (s *Suite) TestDeleteRemovesExactlyOne() {
	st := s.session("alice")
	for _, tx := range Fixture() {
		s.Require().NoError(st.Create(s.ctx, tx))
	}
	s.Require().NoError(st.Delete(s.ctx, "tx-2"))

	got, err := st.List(s.ctx)
	s.Require().NoError(err)
	got = byID(got)
	s.Require().Len(got, 2)
	s.Equal("tx-1", got[0].ID)
	s.Equal("tx-3", got[1].ID)

	// Reports recomputed after a delete reflect it.
	s.True(report.Balance(got).Equal(core.MustAmount("89.45")))
}

func (s *Suite) TestDeleteMissing() {
	st := s.session("alice")
	err := st.Delete(s.ctx, "nope")
	s.Require().Error(err)
	s.True(errors.Is(err, store.ErrNotFound), "got %v", err)
}

func (s *Suite) TestSessionsAreIsolated() {
	alice := s.session("alice")
	bob := s.session("bob")
	tx := Fixture()[0]
	s.Require().NoError(alice.Create(s.ctx, tx))

	got, err := bob.List(s.ctx)
	s.Require().NoError(err)
	s.Empty(got)

	err = bob.Delete(s.ctx, tx.ID)
	s.True(errors.Is(err, store.ErrNotFound), "got %v", err)

	got, err = alice.List(s.ctx)
	s.Require().NoError(err)
	s.Len(got, 1)
}

func (s *Suite) TestEmptyList() {
	got, err := s.session("nobody").List(s.ctx)
	s.Require().NoError(err)
	s.Empty(got)
}

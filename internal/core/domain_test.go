package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func validTx() Transaction {
	return Transaction{
		ID:          "tx-1",
		Amount:      MustAmount("40"),
		Description: "Lunch",
		Category:    "Food",
		Date:        NewDate(2025, 1, 2),
		Type:        Expense,
		PaymentMode: PaymentUPI,
	}
}

func TestDateValidate(t *testing.T) {
	cases := []struct {
		d  Date
		ok bool
	}{
		{NewDate(2025, 1, 1), true},
		{NewDate(2025, 12, 31), true},
		{Date{Time: time.Time{}}, false}, // zero time
	}
	for i, tc := range cases {
		err := tc.d.Validate()
		if tc.ok && err != nil {
			t.Fatalf("case %d expected ok, got %v", i, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-02-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2025 || d.Month() != time.February || d.Day() != 1 {
		t.Fatalf("unexpected date %v", d)
	}
	if _, err := ParseDate("01/02/2025"); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
}

func TestTransactionValidate(t *testing.T) {
	if err := validTx().Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		mut   func(*Transaction)
		field string
		is    error
	}{
		{"missing id", func(tx *Transaction) { tx.ID = "" }, "id", ErrRequired},
		{"zero amount", func(tx *Transaction) { tx.Amount = MustAmount("1").Sub(MustAmount("1")) }, "amount", ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = MustAmount("5").Neg() }, "amount", ErrInvalidAmount},
		{"amount above ceiling", func(tx *Transaction) { tx.Amount = MaxAmount.Add(MustAmount("0.0001")) }, "amount", ErrAmountTooLarge},
		{"blank description", func(tx *Transaction) { tx.Description = "   " }, "description", ErrRequired},
		{"long description", func(tx *Transaction) { tx.Description = strings.Repeat("x", 201) }, "description", ErrTooLong},
		{"missing category", func(tx *Transaction) { tx.Category = "" }, "category", ErrRequired},
		{"missing date", func(tx *Transaction) { tx.Date = Date{} }, "date", ErrRequired},
		{"bad type", func(tx *Transaction) { tx.Type = "transfer" }, "type", ErrInvalidType},
		{"bad payment mode", func(tx *Transaction) { tx.PaymentMode = "cheque" }, "paymentMode", ErrInvalidPaymentMode},
		{"too many tags", func(tx *Transaction) { tx.Tags = make([]string, MaxTags+1) }, "tags", ErrTooLong},
		{"comma in tag", func(tx *Transaction) { tx.Tags = []string{"trip,goa"} }, "tags", ErrInvalidTag},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := validTx()
			tc.mut(&tx)
			err := tx.Validate()
			verrs, ok := AsValidation(err)
			if !ok {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if !verrs.Has(tc.field) {
				t.Fatalf("expected field %q in %v", tc.field, verrs.Fields())
			}
			if !errors.Is(err, tc.is) {
				t.Fatalf("expected %v in chain, got %v", tc.is, err)
			}
		})
	}
}

func TestTransactionValidateReportsEveryField(t *testing.T) {
	err := Transaction{}.Validate()
	verrs, ok := AsValidation(err)
	if !ok {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	for _, f := range []string{"id", "amount", "description", "category", "date", "type"} {
		if !verrs.Has(f) {
			t.Fatalf("missing field %q in %v", f, verrs.Fields())
		}
	}
	if verrs.Has("paymentMode") {
		t.Fatalf("absent payment mode must be allowed")
	}
}

func TestNormalize(t *testing.T) {
	tx := Transaction{Description: "  Rent ", Category: " Housing", Type: " Expense ", PaymentMode: "UPI", Tags: []string{" a ", "", "b"}}
	n := tx.Normalize()
	if n.Description != "Rent" || n.Category != "Housing" || n.Type != Expense || n.PaymentMode != PaymentUPI {
		t.Fatalf("unexpected normalize result %+v", n)
	}
	if len(n.Tags) != 2 || n.Tags[0] != "a" {
		t.Fatalf("unexpected tags %v", n.Tags)
	}
}

func TestTransactionJSON(t *testing.T) {
	tx := validTx()
	b, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"date":"2025-01-02"`) {
		t.Fatalf("date not in calendar layout: %s", b)
	}
	var back Transaction
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Amount.Equal(tx.Amount) || back.Date.String() != "2025-01-02" {
		t.Fatalf("unexpected decoded value %+v", back)
	}
}

func TestSignedAndSession(t *testing.T) {
	tx := validTx()
	if !tx.Signed().Equal(MustAmount("40").Neg()) {
		t.Fatalf("expense must be negative, got %s", tx.Signed())
	}
	if _, err := NewSession("  "); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
	if s, err := NewSession(" u1 "); err != nil || s.UserID != "u1" {
		t.Fatalf("unexpected session %+v %v", s, err)
	}
}

func TestSuggestedCategoriesAreCopies(t *testing.T) {
	got := SuggestedCategories(Expense)
	got[0] = "changed"
	if ExpenseCategories()[0] != "Food" {
		t.Fatalf("suggestions must not be shared")
	}
	if len(SuggestedCategories(Income)) != 8 {
		t.Fatalf("unexpected income suggestions")
	}
}

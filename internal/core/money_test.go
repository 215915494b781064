package core

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"1.23", "1.23", true},
		{"1,23", "", false},
		{"1,500", "", false},
		{"15,000", "", false},
		{"1,00,000", "", false},
		{"1 500", "", false},
		{"9999999999.9999", "9999999999.9999", true},
		{"9999999999.99999", "", false}, // rounds above the ceiling
		{"10000000000", "", false},
		{"0.01", "0.01", true},
		{" 2.50 ", "2.5", true},
		{"50000", "50000", true},
		{"-1", "", false},
		{"+1", "", false},
		{"0", "", false},
		{"0.00001", "", false}, // rounds to zero
		{"abc", "", false},
		{"1.2.3", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || got.String() != tc.out {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if err == nil {
				t.Fatalf("%q expected error", tc.in)
			}
		}
	}
}

func TestMustAmountPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustAmount("nope")
}

func TestParseAmountErrors(t *testing.T) {
	if _, err := ParseAmount("1,500"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	if _, err := ParseAmount("12345678901"); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

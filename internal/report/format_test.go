package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatterRupees(t *testing.T) {
	f, err := NewFormatter(DefaultFormatConfig())
	require.NoError(t, err)

	assert.Equal(t, "₹", f.Symbol())

	cases := []struct {
		in   string
		want string
	}{
		{"0", "₹0.00"},
		{"1234.5", "₹1,234.50"},
		{"100000", "₹1,00,000.00"},
		{"12345678.9", "₹1,23,45,678.90"},
		{"23051", "₹23,051.00"},
		{"0.005", "₹0.01"},
		{"-50", "-₹50.00"},
		{"-0.001", "₹0.00"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, f.Format(decimal.RequireFromString(tc.in)), tc.in)
	}
}

func TestFormatterKeepsEveryDigit(t *testing.T) {
	f, err := NewFormatter(DefaultFormatConfig())
	require.NoError(t, err)

	assert.Equal(t, "₹12,34,56,78,90,12,34,567.89",
		f.Format(decimal.RequireFromString("12345678901234567.89")))

	f4, err := NewFormatter(FormatConfig{Locale: "en-IN", CurrencyCode: "INR", FractionDigits: 4})
	require.NoError(t, err)
	assert.Equal(t, "9,99,99,99,999.9999", f4.Number(decimal.RequireFromString("9999999999.9999")))
}

func TestFormatterFractionDigits(t *testing.T) {
	f, err := NewFormatter(FormatConfig{Locale: "en-US", CurrencyCode: "USD", FractionDigits: 0})
	require.NoError(t, err)
	assert.Equal(t, "1,235", f.Number(decimal.RequireFromString("1234.6")))
}

func TestNewFormatterRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  FormatConfig
	}{
		{"bad locale", FormatConfig{Locale: "not a locale!", CurrencyCode: "INR", FractionDigits: 2}},
		{"bad currency", FormatConfig{Locale: "en-IN", CurrencyCode: "XYZW", FractionDigits: 2}},
		{"negative digits", FormatConfig{Locale: "en-IN", CurrencyCode: "INR", FractionDigits: -1}},
		{"too many digits", FormatConfig{Locale: "en-IN", CurrencyCode: "INR", FractionDigits: 9}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFormatter(tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestMonthKeyRoundTrip(t *testing.T) {
	m, err := ParseMonthKey("Feb 2025")
	require.NoError(t, err)
	assert.Equal(t, "Feb 2025", m.Key())
	assert.True(t, Month{Year: 2024, Month: 12}.Before(m))
}

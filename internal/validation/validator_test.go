package validation

import (
	"strings"
	"testing"

	"bilancio/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createBody struct {
	Amount      string   `json:"amount" validate:"required,amount"`
	Description string   `json:"description" validate:"notblank,max=200"`
	Category    string   `json:"category" validate:"notblank,max=64"`
	Date        string   `json:"date" validate:"required,iso_date"`
	Type        string   `json:"type" validate:"required,tx_type"`
	PaymentMode string   `json:"paymentMode" validate:"payment_mode"`
	Tags        []string `json:"tags" validate:"max=10,dive,max=32"`
}

type listQuery struct {
	Type string `query:"type" validate:"tx_type_filter"`
	Sort string `query:"sort" validate:"omitempty,oneof=date_desc date_asc amount_desc amount_asc"`
}

func validBody() createBody {
	return createBody{
		Amount:      "1234.50",
		Description: "Salary",
		Category:    "Salary",
		Date:        "2025-04-01",
		Type:        "income",
	}
}

func TestStructAcceptsValidBody(t *testing.T) {
	assert.NoError(t, Default().Struct(validBody()))

	b := validBody()
	b.Type = "expense"
	b.PaymentMode = "upi"
	b.Tags = []string{"home"}
	assert.NoError(t, Default().Struct(b))
}

func TestStructReportsJSONFieldNames(t *testing.T) {
	b := createBody{
		Amount:      "-3",
		Description: "   ",
		Date:        "2025-02-30",
		Type:        "transfer",
		PaymentMode: "cheque",
		Tags:        []string{strings.Repeat("x", 40)},
	}
	err := New().Struct(b)
	require.Error(t, err)

	verrs, ok := core.AsValidation(err)
	require.True(t, ok)
	fields := verrs.Fields()
	assert.Equal(t, core.ErrInvalidAmount.Error(), fields["amount"])
	assert.Equal(t, core.ErrRequired.Error(), fields["description"])
	assert.Equal(t, core.ErrRequired.Error(), fields["category"])
	assert.Contains(t, fields["date"], "YYYY-MM-DD")
	assert.Equal(t, "must be one of income, expense", fields["type"])
	assert.Contains(t, fields["paymentMode"], "upi")
	assert.Contains(t, fields, "tags[0]")
}

func TestStructRejectsAmbiguousAndOversizedAmounts(t *testing.T) {
	cases := map[string]string{
		"1,500":       core.ErrInvalidAmount.Error(),
		"15,000":      core.ErrInvalidAmount.Error(),
		"20000000000": core.ErrAmountTooLarge.Error(),
	}
	for amount, want := range cases {
		b := validBody()
		b.Amount = amount
		verrs, ok := core.AsValidation(New().Struct(b))
		require.True(t, ok, amount)
		assert.Equal(t, want, verrs.Fields()["amount"], amount)
	}
}

func TestStructLimitsTagCount(t *testing.T) {
	b := validBody()
	b.Tags = make([]string, 11)
	for i := range b.Tags {
		b.Tags[i] = "t"
	}
	verrs, ok := core.AsValidation(New().Struct(b))
	require.True(t, ok)
	assert.Equal(t, "must have at most 10 items", verrs.Fields()["tags"])
}

func TestQueryValidation(t *testing.T) {
	v := New()
	assert.NoError(t, v.Struct(listQuery{}))
	assert.NoError(t, v.Struct(listQuery{Type: "all", Sort: "amount_desc"}))

	verrs, ok := core.AsValidation(v.Struct(listQuery{Type: "both", Sort: "random"}))
	require.True(t, ok)
	assert.True(t, verrs.Has("type"))
	assert.Equal(t, "must be one of date_desc, date_asc, amount_desc, amount_asc", verrs.Fields()["sort"])
}

func TestDefaultIsShared(t *testing.T) {
	assert.Same(t, Default(), Default())
}

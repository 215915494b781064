package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

const (
	PaymentCash       PaymentMode = "cash"
	PaymentUPI        PaymentMode = "upi"
	PaymentNetBanking PaymentMode = "netbanking"
	PaymentCard       PaymentMode = "card"
	PaymentOther      PaymentMode = "other"
)

const (
	MaxDescriptionLength = 200
	MaxCategoryLength    = 64
	MaxTags              = 10
	MaxTagLength         = 32
)

// DateLayout is the wire and storage layout of a Date.
const DateLayout = "2006-01-02"

type (
	// TxType tells whether a transaction adds to or subtracts from the balance.
	TxType string

	// PaymentMode is how an expense was paid. The zero value means unknown.
	PaymentMode string

	// Date is a calendar day in UTC with no time-of-day meaning.
	Date struct {
		time.Time
	}

	// Transaction is the only entity of the ledger. It is never updated
	// after creation: callers create or delete.
	Transaction struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Date        Date            `json:"date"`
		Type        TxType          `json:"type"`
		PaymentMode PaymentMode     `json:"paymentMode,omitempty"`
		Tags        []string        `json:"tags,omitempty"`
		CreatedAt   time.Time       `json:"createdAt"`
	}
)

var (
	ErrRequired           = errors.New("is required")
	ErrInvalidAmount      = errors.New("must be greater than zero")
	ErrAmountTooLarge     = errors.New("must be at most " + MaxAmount.String())
	ErrInvalidType        = errors.New("must be income or expense")
	ErrInvalidPaymentMode = errors.New("unknown payment mode")
	ErrTooLong            = errors.New("too long")
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidTag         = errors.New("must not contain commas")
)

// TxTypes lists the valid transaction types.
func TxTypes() []TxType { return []TxType{Income, Expense} }

func (t TxType) IsValid() bool {
	return t == Income || t == Expense
}

func (t TxType) String() string { return string(t) }

// PaymentModes lists the payment modes offered for expenses.
func PaymentModes() []PaymentMode {
	return []PaymentMode{PaymentCash, PaymentUPI, PaymentNetBanking, PaymentCard, PaymentOther}
}

func (p PaymentMode) IsValid() bool {
	switch p {
	case PaymentCash, PaymentUPI, PaymentNetBanking, PaymentCard, PaymentOther:
		return true
	}
	return false
}

// IsSet reports whether a payment mode was recorded.
func (p PaymentMode) IsSet() bool { return p != "" }

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrRequired
	}
	return nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

// Before compares calendar days only.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks every field and reports all offending ones at once.
// The returned error is a ValidationErrors value.
func (t Transaction) Validate() error {
	var errs ValidationErrors

	if strings.TrimSpace(t.ID) == "" {
		errs = append(errs, fieldErr("id", ErrRequired))
	}
	switch {
	case !t.Amount.IsPositive():
		errs = append(errs, fieldErr("amount", ErrInvalidAmount))
	case t.Amount.GreaterThan(MaxAmount):
		errs = append(errs, fieldErr("amount", ErrAmountTooLarge))
	}
	desc := strings.TrimSpace(t.Description)
	switch {
	case desc == "":
		errs = append(errs, fieldErr("description", ErrRequired))
	case len(desc) > MaxDescriptionLength:
		errs = append(errs, fieldErr("description", ErrTooLong))
	}
	cat := strings.TrimSpace(t.Category)
	switch {
	case cat == "":
		errs = append(errs, fieldErr("category", ErrRequired))
	case len(cat) > MaxCategoryLength:
		errs = append(errs, fieldErr("category", ErrTooLong))
	}
	if err := t.Date.Validate(); err != nil {
		errs = append(errs, fieldErr("date", err))
	}
	if !t.Type.IsValid() {
		errs = append(errs, fieldErr("type", ErrInvalidType))
	}
	if t.PaymentMode.IsSet() && !t.PaymentMode.IsValid() {
		errs = append(errs, fieldErr("paymentMode", ErrInvalidPaymentMode))
	}
	if len(t.Tags) > MaxTags {
		errs = append(errs, fieldErr("tags", ErrTooLong))
	}
	// Sheets rows keep tags comma separated.
	for _, tag := range t.Tags {
		if len(tag) > MaxTagLength {
			errs = append(errs, fieldErr("tags", ErrTooLong))
			break
		}
		if strings.Contains(tag, ",") {
			errs = append(errs, fieldErr("tags", ErrInvalidTag))
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Normalize trims free-text fields and drops empty tags.
func (t Transaction) Normalize() Transaction {
	t.Description = strings.TrimSpace(t.Description)
	t.Category = strings.TrimSpace(t.Category)
	t.PaymentMode = PaymentMode(strings.ToLower(strings.TrimSpace(string(t.PaymentMode))))
	t.Type = TxType(strings.ToLower(strings.TrimSpace(string(t.Type))))
	if len(t.Tags) > 0 {
		tags := make([]string, 0, len(t.Tags))
		for _, tag := range t.Tags {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
		t.Tags = tags
	}
	return t
}

// Signed returns the amount with expenses negated.
func (t Transaction) Signed() decimal.Decimal {
	if t.Type == Expense {
		return t.Amount.Neg()
	}
	return t.Amount
}

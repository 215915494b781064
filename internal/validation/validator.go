// Package validation checks decoded request bodies and query parameters
// before they are turned into ledger values.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"bilancio/internal/core"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator with ledger rules and error
// mapping onto core.ValidationErrors.
type Validator struct {
	validate *validator.Validate
}

var (
	instance *Validator
	once     sync.Once
)

// Default returns the shared validator.
func Default() *Validator {
	once.Do(func() { instance = New() })
	return instance
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	_ = v.RegisterValidation("amount", validateAmount)
	_ = v.RegisterValidation("tx_type", validateTxType)
	_ = v.RegisterValidation("tx_type_filter", validateTxTypeFilter)
	_ = v.RegisterValidation("payment_mode", validatePaymentMode)
	_ = v.RegisterValidation("iso_date", validateISODate)
	_ = v.RegisterValidation("notblank", validateNotBlank)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{validate: v}
}

// Struct validates s and reports failures as core.ValidationErrors keyed by
// the JSON field name.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(core.ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, &core.FieldError{Field: fieldPath(fe), Err: errors.New(message(fe))})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return core.ErrRequired.Error()
	case "amount":
		if _, err := core.ParseAmount(fmt.Sprint(fe.Value())); err != nil {
			return err.Error()
		}
		return core.ErrInvalidAmount.Error()
	case "tx_type":
		return fmt.Sprintf("must be one of %s", joinTypes())
	case "tx_type_filter":
		return fmt.Sprintf("must be one of all, %s", joinTypes())
	case "payment_mode":
		return fmt.Sprintf("must be one of %s", joinModes())
	case "iso_date":
		return "must be a calendar date in YYYY-MM-DD form"
	case "max":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("must have at most %s items", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "uuid4", "uuid":
		return "must be a UUID"
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

func joinTypes() string {
	names := make([]string, 0, 2)
	for _, t := range core.TxTypes() {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}

func joinModes() string {
	names := make([]string, 0, 5)
	for _, m := range core.PaymentModes() {
		names = append(names, string(m))
	}
	return strings.Join(names, ", ")
}

func validateAmount(fl validator.FieldLevel) bool {
	_, err := core.ParseAmount(fl.Field().String())
	return err == nil
}

func validateTxType(fl validator.FieldLevel) bool {
	return core.TxType(fl.Field().String()).IsValid()
}

func validateTxTypeFilter(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == "" || s == "all" || core.TxType(s).IsValid()
}

// validatePaymentMode accepts the empty string, meaning no mode recorded.
func validatePaymentMode(fl validator.FieldLevel) bool {
	m := core.PaymentMode(fl.Field().String())
	return !m.IsSet() || m.IsValid()
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := core.ParseDate(fl.Field().String())
	return err == nil
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

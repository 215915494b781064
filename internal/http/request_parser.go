// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bilancio/internal/core"
	"bilancio/internal/services"
	"bilancio/internal/validation"
)

const maxBodyBytes = 64 << 10

// createTransactionRequest is the body of POST /transactions. Amount accepts
// a JSON number or a numeric string.
type createTransactionRequest struct {
	Amount      json.Number `json:"amount" validate:"required,amount"`
	Description string      `json:"description" validate:"notblank,max=200"`
	Category    string      `json:"category" validate:"notblank,max=64"`
	Date        string      `json:"date" validate:"required,iso_date"`
	Type        string      `json:"type" validate:"required,tx_type"`
	PaymentMode string      `json:"paymentMode" validate:"payment_mode"`
	Tags        []string    `json:"tags" validate:"max=10,dive,max=32"`
}

// sanitize trims free text and lowercases the enumerations.
func (req *createTransactionRequest) sanitize() {
	req.Description = sanitizeInput(req.Description)
	req.Category = sanitizeInput(req.Category)
	req.Date = strings.TrimSpace(req.Date)
	req.Type = strings.ToLower(strings.TrimSpace(req.Type))
	req.PaymentMode = strings.ToLower(strings.TrimSpace(req.PaymentMode))
	for i, tag := range req.Tags {
		req.Tags[i] = sanitizeInput(tag)
	}
}

// toNewTransaction converts a validated request.
func (req createTransactionRequest) toNewTransaction() (services.NewTransaction, error) {
	amount, err := core.ParseAmount(req.Amount.String())
	if err != nil {
		return services.NewTransaction{}, err
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return services.NewTransaction{}, err
	}
	return services.NewTransaction{
		Amount:      amount,
		Description: req.Description,
		Category:    req.Category,
		Date:        date,
		Type:        core.TxType(req.Type),
		PaymentMode: core.PaymentMode(req.PaymentMode),
		Tags:        req.Tags,
	}, nil
}

// listParams are the query parameters of GET /transactions.
type listParams struct {
	Text  string `query:"q" validate:"max=100"`
	Type  string `query:"type" validate:"tx_type_filter"`
	Limit int    `query:"limit" validate:"min=0,max=1000"`
}

// errBadBody marks a body that is not decodable JSON.
var errBadBody = errors.New("malformed request body")

// decodeJSON reads a single JSON object into dst, rejecting unknown fields
// and bodies over maxBodyBytes.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", errBadBody, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", errBadBody)
	}
	return nil
}

// parseCreateRequest decodes, sanitizes and validates a create body.
func parseCreateRequest(w http.ResponseWriter, r *http.Request) (services.NewTransaction, error) {
	var req createTransactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return services.NewTransaction{}, err
	}
	req.sanitize()
	if err := validation.Default().Struct(req); err != nil {
		return services.NewTransaction{}, err
	}
	return req.toNewTransaction()
}

// parseListParams reads and validates the list query string.
func parseListParams(query url.Values) (listParams, error) {
	p := listParams{
		Text: sanitizeInput(query.Get("q")),
		Type: strings.ToLower(strings.TrimSpace(query.Get("type"))),
	}
	limit, err := queryInt(query, "limit", 0)
	if err != nil {
		return p, err
	}
	p.Limit = limit
	if err := validation.Default().Struct(p); err != nil {
		return p, err
	}
	return p, nil
}

// queryInt reads an integer parameter, returning def when it is absent.
func queryInt(query url.Values, key string, def int) (int, error) {
	v := strings.TrimSpace(query.Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.ValidationErrors{{Field: key, Err: errors.New("must be an integer")}}
	}
	return n, nil
}

// boundedQueryInt is queryInt with an inclusive range check.
func boundedQueryInt(query url.Values, key string, def, min, max int) (int, error) {
	n, err := queryInt(query, key, def)
	if err != nil {
		return 0, err
	}
	if n < min || n > max {
		return 0, core.ValidationErrors{{Field: key, Err: fmt.Errorf("must be between %d and %d", min, max)}}
	}
	return n, nil
}

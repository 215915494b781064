// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for constructing JSON responses
// and the error envelope shared by every API route.

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/store"
)

// ErrorCode is the machine readable part of an API error.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION_FAILED"
	CodeBadRequest   ErrorCode = "BAD_REQUEST"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeRateLimited  ErrorCode = "RATE_LIMITED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// APIError is the body of every error response.
type APIError struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
	TraceID string            `json:"trace_id,omitempty"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

// JSONResponseBuilder provides a fluent API for building JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

// NewJSONResponse creates a new response builder with default 200 status.
func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

// Status sets the HTTP status code for the response.
func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

// Header adds a custom header to the response.
func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

// Body sets the value encoded as the response body.
func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the built response to the http.ResponseWriter.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(b.statusCode)
	if err := json.NewEncoder(w).Encode(b.body); err != nil {
		slog.Error("Failed to encode response", applog.FieldError, err)
	}
}

// ErrorResponse creates an error envelope carrying the request's trace id.
func ErrorResponse(r *http.Request, status int, code ErrorCode, message string, details map[string]string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(status).
		Body(errorEnvelope{Error: APIError{
			Code:    code,
			Message: message,
			Details: details,
			TraceID: trace.GetRequestID(r.Context()),
		}})
}

// BadRequestError creates a 400 Bad Request error response.
func BadRequestError(r *http.Request, message string) *JSONResponseBuilder {
	return ErrorResponse(r, http.StatusBadRequest, CodeBadRequest, message, nil)
}

// ValidationError creates a 422 response naming every offending field.
func ValidationError(r *http.Request, verrs core.ValidationErrors) *JSONResponseBuilder {
	return ErrorResponse(r, http.StatusUnprocessableEntity, CodeValidation, "validation failed", verrs.Fields())
}

// NotFoundError creates a 404 Not Found error response.
func NotFoundError(r *http.Request, message string) *JSONResponseBuilder {
	return ErrorResponse(r, http.StatusNotFound, CodeNotFound, message, nil)
}

// InternalServerError creates a 500 response. The message stays generic;
// the trace id links it to the logged cause.
func InternalServerError(r *http.Request) *JSONResponseBuilder {
	return ErrorResponse(r, http.StatusInternalServerError, CodeInternal, "internal server error", nil)
}

// writeError maps a service error onto the envelope and logs server faults.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if verrs, ok := core.AsValidation(err); ok {
		ValidationError(r, verrs).Write(w)
		return
	}
	switch {
	case errors.Is(err, errBadBody):
		BadRequestError(r, err.Error()).Write(w)
	case errors.Is(err, store.ErrNotFound):
		NotFoundError(r, "transaction not found").Write(w)
	case errors.Is(err, store.ErrDuplicate):
		ErrorResponse(r, http.StatusConflict, CodeConflict, "transaction already exists", nil).Write(w)
	case errors.Is(err, core.ErrNoSession):
		ErrorResponse(r, http.StatusUnauthorized, CodeUnauthorized, "missing session", nil).Write(w)
	default:
		applog.NewStructuredLogger(applog.FromContext(r.Context())).LogError(r.Context(),
			"Request failed", err, applog.ErrorTypeInternal, applog.ComponentHTTP, r.Method+" "+r.URL.Path, nil)
		InternalServerError(r).Write(w)
	}
}

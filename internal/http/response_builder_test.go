package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"bilancio/internal/core"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/store"
)

func TestJSONResponseBuilder(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/x").
		Body(map[string]int{"n": 1}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if got := w.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := w.Header().Get("Location"); got != "/x" {
		t.Errorf("Location = %q", got)
	}
	if w.Body.String() != "{\"n\":1}\n" {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
	if w.Code != http.StatusNoContent || w.Body.Len() != 0 {
		t.Errorf("got %d with %d bytes", w.Code, w.Body.Len())
	}
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
	}{
		{"validation", core.ValidationErrors{{Field: "amount", Err: core.ErrInvalidAmount}}, http.StatusUnprocessableEntity, CodeValidation},
		{"not found", fmt.Errorf("delete transaction: %w", store.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{"duplicate", fmt.Errorf("save transaction: %w", store.ErrDuplicate), http.StatusConflict, CodeConflict},
		{"no session", core.ErrNoSession, http.StatusUnauthorized, CodeUnauthorized},
		{"bad body", fmt.Errorf("%w: eof", errBadBody), http.StatusBadRequest, CodeBadRequest},
		{"anything else", errors.New("pq: connection reset"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req = req.WithContext(context.WithValue(req.Context(), trace.RequestIDKey, "req_1"))
			w := httptest.NewRecorder()
			writeError(w, req, tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var env errorEnvelope
			if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", env.Error.Code, tt.wantCode)
			}
			if env.Error.TraceID != "req_1" {
				t.Errorf("trace_id = %q", env.Error.TraceID)
			}
			if tt.wantStatus == http.StatusInternalServerError && env.Error.Message != "internal server error" {
				t.Errorf("internal errors must not leak causes, got %q", env.Error.Message)
			}
		})
	}
}

func TestValidationErrorDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	w := httptest.NewRecorder()
	ValidationError(req, core.ValidationErrors{
		{Field: "amount", Err: core.ErrInvalidAmount},
		{Field: "type", Err: core.ErrInvalidType},
	}).Write(w)

	var env errorEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Error.Details["amount"] != core.ErrInvalidAmount.Error() {
		t.Errorf("details = %v", env.Error.Details)
	}
	if _, ok := env.Error.Details["type"]; !ok {
		t.Errorf("details = %v, want type", env.Error.Details)
	}
}

package http

import (
	"net/http"
	"time"

	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/report"
	"bilancio/internal/services"
)

type dashboardResponse struct {
	report.Dashboard
	Formatted overviewResponse `json:"formatted"`
	Currency  currencyInfo     `json:"currency"`
}

type currencyInfo struct {
	Code           string `json:"code"`
	Symbol         string `json:"symbol"`
	Locale         string `json:"locale"`
	FractionDigits int    `json:"fractionDigits"`
}

func (s *Server) currency() currencyInfo {
	cfg := s.formatter.Config()
	return currencyInfo{
		Code:           cfg.CurrencyCode,
		Symbol:         s.formatter.Symbol(),
		Locale:         cfg.Locale,
		FractionDigits: cfg.FractionDigits,
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	window, err := boundedQueryInt(q, "window", s.dashboards.Defaults().SeriesWindow, 1, 120)
	if err != nil {
		writeError(w, r, err)
		return
	}
	limit, err := boundedQueryInt(q, "limit", s.dashboards.Defaults().RecentLimit, 1, 100)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dash, ok := s.dashboard(w, r, report.Options{SeriesWindow: window, RecentLimit: limit})
	if !ok {
		return
	}
	NewJSONResponse().Body(dashboardResponse{
		Dashboard: dash,
		Formatted: s.overview(dash),
		Currency:  s.currency(),
	}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]any{
		"income":       core.IncomeCategories(),
		"expense":      core.ExpenseCategories(),
		"paymentModes": core.PaymentModes(),
		"currency":     s.currency(),
	}).Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.ledgerSnapshot(w, r)
	if !ok {
		return
	}
	f, err := s.exporter.Workbook(txs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer f.Close()

	name := "bilancio-" + time.Now().UTC().Format(core.DateLayout) + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	if err := f.Write(w); err != nil {
		// headers are gone; all that is left is the log
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to stream workbook",
			applog.FieldOperation, applog.OpExport, applog.FieldError, err)
	}
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	if !s.allowSeed {
		ErrorResponse(r, http.StatusForbidden, CodeForbidden, "seeding is disabled", nil).Write(w)
		return
	}
	session, ok := requireSession(w, r)
	if !ok {
		return
	}
	created, err := services.Seed(r.Context(), s.ledger, session, services.DemoTransactions())
	if err != nil {
		writeError(w, r, err)
		return
	}
	applog.FromContext(r.Context()).WithComponent(applog.ComponentSeed).InfoContext(r.Context(),
		"Seeded demo ledger", applog.FieldUserID, session.UserID, "count", len(created))
	NewJSONResponse().Status(http.StatusCreated).
		Body(transactionList{Transactions: created, Count: len(created)}).
		Write(w)
}

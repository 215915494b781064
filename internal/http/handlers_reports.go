package http

import (
	"net/http"
	"sort"

	"bilancio/internal/core"
	"bilancio/internal/report"
)

type (
	overviewResponse struct {
		Balance          Money `json:"balance"`
		TotalIncome      Money `json:"totalIncome"`
		TotalExpense     Money `json:"totalExpense"`
		TransactionCount int   `json:"transactionCount"`
	}

	categoryEntry struct {
		Category string `json:"category"`
		Money
	}

	flowEntry struct {
		Category string `json:"category"`
		Income   Money  `json:"income"`
		Expense  Money  `json:"expense"`
	}

	paymentModeEntry struct {
		PaymentMode core.PaymentMode `json:"paymentMode"`
		Money
	}

	monthlyEntry struct {
		Month   string `json:"month"`
		Income  Money  `json:"income"`
		Expense Money  `json:"expense"`
	}

	monthGroup struct {
		Month        string             `json:"month"`
		Income       Money              `json:"income"`
		Expense      Money              `json:"expense"`
		Transactions []core.Transaction `json:"transactions"`
	}
)

// dashboard loads the caller's cached summary with the given options.
func (s *Server) dashboard(w http.ResponseWriter, r *http.Request, opts report.Options) (report.Dashboard, bool) {
	session, ok := requireSession(w, r)
	if !ok {
		return report.Dashboard{}, false
	}
	dash, err := s.dashboards.Dashboard(r.Context(), session, opts)
	if err != nil {
		writeError(w, r, err)
		return report.Dashboard{}, false
	}
	return dash, true
}

// ledgerSnapshot loads the caller's raw ledger for views the dashboard does
// not carry. Malformed records fail the request like Summarize does.
func (s *Server) ledgerSnapshot(w http.ResponseWriter, r *http.Request) ([]core.Transaction, bool) {
	session, ok := requireSession(w, r)
	if !ok {
		return nil, false
	}
	txs, err := s.ledger.All(r.Context(), session)
	if err == nil {
		err = report.ValidateAll(txs)
	}
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return txs, true
}

func (s *Server) overview(dash report.Dashboard) overviewResponse {
	return overviewResponse{
		Balance:          money(s.formatter, dash.Totals.Balance),
		TotalIncome:      money(s.formatter, dash.Totals.TotalIncome),
		TotalExpense:     money(s.formatter, dash.Totals.TotalExpense),
		TransactionCount: dash.TransactionCount,
	}
}

func (s *Server) categoryEntries(ranked []report.CategoryAmount) []categoryEntry {
	out := make([]categoryEntry, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, categoryEntry{Category: c.Category, Money: money(s.formatter, c.Amount)})
	}
	return out
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	dash, ok := s.dashboard(w, r, report.Options{})
	if !ok {
		return
	}
	NewJSONResponse().Body(s.overview(dash)).Write(w)
}

func (s *Server) handleCategoryTotals(w http.ResponseWriter, r *http.Request) {
	t, err := parseTxType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	dash, ok := s.dashboard(w, r, report.Options{})
	if !ok {
		return
	}
	ranked, total := dash.ExpenseCategories, dash.Totals.TotalExpense
	if t == core.Income {
		ranked, total = dash.IncomeCategories, dash.Totals.TotalIncome
	}
	NewJSONResponse().Body(map[string]any{
		"type":       t,
		"categories": s.categoryEntries(ranked),
		"total":      money(s.formatter, total),
	}).Write(w)
}

func (s *Server) handleCategoryNet(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.ledgerSnapshot(w, r)
	if !ok {
		return
	}
	net := report.NetByCategory(txs)
	names := make([]string, 0, len(net))
	for c := range net {
		names = append(names, c)
	}
	sort.Strings(names)
	out := make([]categoryEntry, 0, len(names))
	for _, c := range names {
		out = append(out, categoryEntry{Category: c, Money: money(s.formatter, net[c])})
	}
	NewJSONResponse().Body(map[string]any{"categories": out}).Write(w)
}

func (s *Server) handleCategoryFlows(w http.ResponseWriter, r *http.Request) {
	dash, ok := s.dashboard(w, r, report.Options{})
	if !ok {
		return
	}
	out := make([]flowEntry, 0, len(dash.CategoryFlows))
	for _, f := range dash.CategoryFlows {
		out = append(out, flowEntry{
			Category: f.Category,
			Income:   money(s.formatter, f.Income),
			Expense:  money(s.formatter, f.Expense),
		})
	}
	NewJSONResponse().Body(map[string]any{"categories": out}).Write(w)
}

func (s *Server) handlePaymentModes(w http.ResponseWriter, r *http.Request) {
	dash, ok := s.dashboard(w, r, report.Options{})
	if !ok {
		return
	}
	out := make([]paymentModeEntry, 0, len(dash.PaymentModes))
	for mode, amount := range dash.PaymentModes {
		out = append(out, paymentModeEntry{PaymentMode: mode, Money: money(s.formatter, amount)})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Amount.Cmp(out[j].Amount); c != 0 {
			return c > 0
		}
		return out[i].PaymentMode < out[j].PaymentMode
	})
	NewJSONResponse().Body(map[string]any{"paymentModes": out}).Write(w)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	window, err := boundedQueryInt(r.URL.Query(), "window", s.dashboards.Defaults().SeriesWindow, 1, 120)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dash, ok := s.dashboard(w, r, report.Options{SeriesWindow: window})
	if !ok {
		return
	}
	out := make([]monthlyEntry, 0, len(dash.Monthly))
	for _, p := range dash.Monthly {
		out = append(out, monthlyEntry{
			Month:   p.Month,
			Income:  money(s.formatter, p.Income),
			Expense: money(s.formatter, p.Expense),
		})
	}
	NewJSONResponse().Body(map[string]any{"window": window, "series": out}).Write(w)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, err := boundedQueryInt(r.URL.Query(), "limit", s.dashboards.Defaults().RecentLimit, 1, 100)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dash, ok := s.dashboard(w, r, report.Options{RecentLimit: limit})
	if !ok {
		return
	}
	NewJSONResponse().Body(transactionList{Transactions: dash.Recent, Count: len(dash.Recent)}).Write(w)
}

// handleMonths lists month buckets newest first, each ordered newest first.
func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	txs, ok := s.ledgerSnapshot(w, r)
	if !ok {
		return
	}
	groups := report.GroupByMonth(txs)
	keys := make([]report.Month, 0, len(groups))
	for k := range groups {
		m, err := report.ParseMonthKey(k)
		if err != nil {
			writeError(w, r, err)
			return
		}
		keys = append(keys, m)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[j].Before(keys[i]) })

	out := make([]monthGroup, 0, len(keys))
	for _, m := range keys {
		bucket := groups[m.Key()]
		out = append(out, monthGroup{
			Month:        m.Key(),
			Income:       money(s.formatter, report.TotalByType(bucket, core.Income)),
			Expense:      money(s.formatter, report.TotalByType(bucket, core.Expense)),
			Transactions: report.SortByDateDesc(bucket),
		})
	}
	NewJSONResponse().Body(map[string]any{"months": out}).Write(w)
}

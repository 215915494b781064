package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "bilancio/internal/log"
	"bilancio/internal/metrics"
	"bilancio/internal/middleware/ratelimit"
	"bilancio/internal/middleware/security"
	"bilancio/internal/middleware/trace"
	"bilancio/internal/report"
	"bilancio/internal/services"

	"github.com/gorilla/mux"
)

// APIPrefix is the mount point of the versioned API.
const APIPrefix = "/api/v1"

// Options carries the collaborators of the server.
type Options struct {
	Addr         string
	Ledger       *services.LedgerService
	Dashboards   *services.DashboardService
	Exporter     *services.Exporter
	Formatter    *report.Formatter
	Sessions     *SessionResolver
	Metrics      *metrics.Metrics
	Logger       *applog.Logger
	RateLimitRPM int
	AllowSeed    bool
	// Ready reports whether the backing store answers. Nil means always ready.
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	ledger     *services.LedgerService
	dashboards *services.DashboardService
	exporter   *services.Exporter
	formatter  *report.Formatter
	metrics    *metrics.Metrics
	logger     *applog.Logger
	ready      func(ctx context.Context) error
	allowSeed  bool
	started    time.Time

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.Config{Component: applog.ComponentHTTP})
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	s := &Server{
		ledger:     opts.Ledger,
		dashboards: opts.Dashboards,
		exporter:   opts.Exporter,
		formatter:  opts.Formatter,
		metrics:    m,
		logger:     logger,
		ready:      opts.Ready,
		allowSeed:  opts.AllowSeed,
		started:    time.Now(),
		detector:   security.NewDetector(),
		rateLimiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitRPM,
		}),
	}

	router := mux.NewRouter()
	router.Use(recordRoute)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)

	api := router.PathPrefix(APIPrefix).Subrouter()
	api.Use(opts.Sessions.Middleware)

	writes := api.NewRoute().Subrouter()
	writes.Use(s.rateLimiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited))
	writes.HandleFunc("/transactions", s.handleCreateTransaction).Methods(http.MethodPost)
	writes.HandleFunc("/transactions/{id}", s.handleDeleteTransaction).Methods(http.MethodDelete)
	writes.HandleFunc("/seed", s.handleSeed).Methods(http.MethodPost)

	api.HandleFunc("/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/reports/overview", s.handleOverview).Methods(http.MethodGet)
	api.HandleFunc("/reports/categories", s.handleCategoryTotals).Methods(http.MethodGet)
	api.HandleFunc("/reports/categories/net", s.handleCategoryNet).Methods(http.MethodGet)
	api.HandleFunc("/reports/categories/flows", s.handleCategoryFlows).Methods(http.MethodGet)
	api.HandleFunc("/reports/payment-modes", s.handlePaymentModes).Methods(http.MethodGet)
	api.HandleFunc("/reports/monthly", s.handleMonthly).Methods(http.MethodGet)
	api.HandleFunc("/reports/recent", s.handleRecent).Methods(http.MethodGet)
	api.HandleFunc("/reports/months", s.handleMonths).Methods(http.MethodGet)
	api.HandleFunc("/dashboard", s.handleDashboard).Methods(http.MethodGet)
	api.HandleFunc("/categories", s.handleCategories).Methods(http.MethodGet)
	api.HandleFunc("/export.xlsx", s.handleExport).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError(r, "route not found").Write(w)
	})

	tracer := trace.NewMiddleware(logger, s.detector.ExtractClientIP, routeTemplate, m)
	var handler http.Handler = router
	handler = s.detector.Middleware(false)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = tracer.Middleware(handler)
	handler = withRouteLabel(handler)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Metrics are labelled by route pattern, not by path, so ids do not explode
// cardinality. mux only exposes the matched route to handlers below it, so
// recordRoute writes the pattern into a holder the outer layers can read.
type routeLabel struct{ pattern string }

type routeLabelKey struct{}

func withRouteLabel(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), routeLabelKey{}, &routeLabel{})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func recordRoute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l, ok := r.Context().Value(routeLabelKey{}).(*routeLabel); ok {
			if route := mux.CurrentRoute(r); route != nil {
				if tpl, err := route.GetPathTemplate(); err == nil {
					l.pattern = tpl
				}
			}
		}
		next.ServeHTTP(w, r)
	})
}

func routeTemplate(r *http.Request) string {
	if l, ok := r.Context().Value(routeLabelKey{}).(*routeLabel); ok && l.pattern != "" {
		return l.pattern
	}
	return "unmatched"
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordRateLimited()
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).
		WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, s.detector.ExtractClientIP(r), applog.FieldPath, r.URL.Path)
	ErrorResponse(r, http.StatusTooManyRequests, CodeRateLimited, "rate limit exceeded, try again later", nil).Write(w)
}

// Shutdown stops background routines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

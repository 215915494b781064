package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"bilancio/internal/amqp"
	"bilancio/internal/backend"
	"bilancio/internal/cache"
	"bilancio/internal/cli"
	"bilancio/internal/config"
	apphttp "bilancio/internal/http"
	applog "bilancio/internal/log"
	"bilancio/internal/metrics"
	"bilancio/internal/report"
	"bilancio/internal/services"

	"golang.org/x/sync/errgroup"
)

func main() {
	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server exited with error", applog.FieldError, err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *applog.Logger) error {
	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	result, err := backend.NewFactory(logger.With(applog.FieldComponent, applog.ComponentBackend).Logger).CreateBackend(startCtx, backendCfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := result.Close(); err != nil {
			logger.Warn("Failed to close backend", applog.FieldError, err)
		}
	}()
	logger.Info("Initialized data backend", applog.FieldBackend, result.Type.String())

	formatter, err := report.NewFormatter(report.FormatConfig{
		Locale:         cfg.CurrencyLocale,
		CurrencyCode:   cfg.CurrencyCode,
		FractionDigits: cfg.CurrencyFractionDigits,
	})
	if err != nil {
		return err
	}
	defaults := report.Options{SeriesWindow: cfg.SeriesWindow, RecentLimit: cfg.RecentLimit}

	m := metrics.New()

	reportCache := cache.NewLRUCache[report.Dashboard](cfg.ReportCacheSize, cfg.ReportCacheTTL)
	cacheManager := cache.NewManager(logger.With(applog.FieldComponent, applog.ComponentCache).Logger)
	cacheManager.Register(reportCache)
	cacheManager.StartCleanup(cfg.ReportCacheTTL)
	defer cacheManager.Stop()

	dashboards := services.NewDashboardService(
		services.ProviderSource{Provider: result.Provider},
		reportCache, defaults, m, logger.WithComponent(applog.ComponentReport))

	ledgerOpts := []services.LedgerOption{
		services.WithInvalidator(dashboards),
		services.WithRecorder(m),
		services.WithLogger(logger.WithComponent(applog.ComponentLedger)),
	}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPPrefetch)
		if err != nil {
			logger.Warn("AMQP unavailable, running without event publishing",
				applog.FieldError, err, applog.FieldErrorType, applog.ErrorTypeNetwork)
		} else {
			defer client.Close()
			ledgerOpts = append(ledgerOpts, services.WithPublisher(client))
			logger.Info("Publishing transaction events", "exchange", cfg.AMQPExchange)
		}
	}
	ledger := services.NewLedgerService(result.Provider, ledgerOpts...)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:         ":" + cfg.Port,
		Ledger:       ledger,
		Dashboards:   dashboards,
		Exporter:     services.NewExporter(formatter, defaults),
		Formatter:    formatter,
		Sessions:     apphttp.NewSessionResolver(cfg.AuthJWTSecret, cfg.DefaultUserID),
		Metrics:      m,
		Logger:       logger.WithComponent(applog.ComponentHTTP),
		RateLimitRPM: cfg.RateLimitRPM,
		AllowSeed:    cfg.AllowSeed,
		Ready:        result.Ready,
	})

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	var g errgroup.Group
	g.Go(func() error {
		logger.Info("Starting bilancio server", "port", cfg.Port, applog.FieldBackend, result.Type.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
	return nil
}

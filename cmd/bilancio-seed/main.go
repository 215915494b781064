package main

import (
	"context"
	"flag"
	"os"
	"time"

	"bilancio/internal/backend"
	"bilancio/internal/cli"
	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/services"
)

func main() {
	user := flag.String("user", "", "user whose ledger is seeded (default DEFAULT_USER_ID)")
	random := flag.Int("random", 0, "generate N random transactions instead of the demo ledger")
	seed := flag.Uint64("seed", 1, "random generator seed")
	flag.Parse()

	cli.LoadEnvFile()
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	cfg := cli.LoadAndValidateConfig(bootLogger)
	logger := cli.SetupLogger(cfg.LogLevel, cfg.LogFormat).WithComponent(applog.ComponentSeed)

	userID := *user
	if userID == "" {
		userID = cfg.DefaultUserID
	}
	session, err := core.NewSession(userID)
	if err != nil {
		logger.Error("Invalid user", applog.FieldError, err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	result, err := backend.NewFactory(logger.With(applog.FieldComponent, applog.ComponentBackend).Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer result.Close()

	inputs := services.DemoTransactions()
	if *random > 0 {
		inputs = services.RandomTransactions(*seed, *random, time.Now())
	}

	ledger := services.NewLedgerService(result.Provider, services.WithLogger(logger))
	created, err := services.Seed(ctx, ledger, session, inputs)
	if err != nil {
		logger.Error("Seeding stopped", applog.FieldError, err, "created", len(created))
		result.Close()
		os.Exit(1)
	}
	logger.Info("Seeded ledger",
		applog.FieldUserID, session.UserID,
		applog.FieldBackend, result.Type.String(),
		"count", len(created))
}

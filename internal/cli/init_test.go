package cli

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"bilancio/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupLoggerHonoursLevelAndFormat(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logger := setupLogger(&buf, "warn", "json")
	logger.Info("dropped")
	logger.Warn("kept")
	slog.Error("via default")

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"msg":"kept"`)
	assert.Contains(t, out, "via default")
}

func TestLoadConfigRunsExtraChecks(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("PORT", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.DataBackend)

	_, err = LoadConfig(func(c *config.Config) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)

	t.Setenv("DATA_BACKEND", "floppy")
	_, err = LoadConfig()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid data backend 'floppy'"))
}

func TestShutdownRunsCleanup(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(&buf, "info", "text")
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil))) })

	sig := make(chan os.Signal, 1)
	cleaned := make(chan struct{})
	ctx, done := shutdownOn(sig, logger, time.Second, func(ctx context.Context) {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		close(cleaned)
	})

	sig <- syscall.SIGTERM
	WaitForShutdown(ctx, done)

	select {
	case <-cleaned:
	default:
		t.Fatal("cleanup did not run")
	}
	assert.Contains(t, buf.String(), "Shutdown complete")
}

func TestShutdownTimesOut(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(&buf, "info", "text")
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil))) })

	sig := make(chan os.Signal, 1)
	release := make(chan struct{})
	t.Cleanup(func() { close(release) })
	ctx, done := shutdownOn(sig, logger, 20*time.Millisecond, func(context.Context) { <-release })

	sig <- syscall.SIGINT
	WaitForShutdown(ctx, done)
	assert.Contains(t, buf.String(), "Shutdown timeout reached")
}

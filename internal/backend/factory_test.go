package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"bilancio/internal/config"
	"bilancio/internal/core"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietFactory() Factory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func exercise(t *testing.T, res *BackendResult) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, res.Ready(ctx))
	st, err := res.Provider.ForSession(core.Session{UserID: "u1"})
	require.NoError(t, err)
	tx := core.Transaction{
		ID: "id-1", Amount: core.MustAmount("12.5"), Description: "Tea",
		Category: "Food", Date: core.NewDate(2025, 3, 1), Type: core.Expense,
	}
	require.NoError(t, st.Create(ctx, tx))
	got, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NoError(t, st.Delete(ctx, "id-1"))
}

func TestCreateBackend(t *testing.T) {
	mr := miniredis.RunT(t)

	cases := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"file", Config{Type: FileBackend, DataDirectory: t.TempDir()}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "b.db")}},
		{"redis", Config{Type: RedisBackend, RedisURL: "redis://" + mr.Addr()}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := quietFactory().CreateBackend(context.Background(), tc.cfg)
			require.NoError(t, err)
			defer res.Close()
			assert.Equal(t, tc.cfg.Type, res.Type)
			exercise(t, res)
		})
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
	}{
		{"unknown type", Config{Type: "mongo"}},
		{"file without dir", Config{Type: FileBackend}},
		{"sqlite without path", Config{Type: SQLiteBackend}},
		{"postgres without dsn", Config{Type: PostgresBackend}},
		{"redis without url", Config{Type: RedisBackend}},
		{"sheets without id", Config{Type: SheetsBackend}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := quietFactory().CreateBackend(context.Background(), tc.cfg)
			assert.Error(t, err)
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		DataBackend:         "postgres",
		MirrorBackend:       "sheets",
		PostgresDSN:         "postgres://localhost/bilancio",
		GoogleSpreadsheetID: "sid",
	}
	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, PostgresBackend, cfg.Type)
	assert.Equal(t, "postgres://localhost/bilancio", cfg.PostgresDSN)

	mirror, err := MirrorFromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, SheetsBackend, mirror.Type)
	assert.Equal(t, "sid", mirror.GoogleSpreadsheetID)

	_, err = FromAppConfig(&config.Config{DataBackend: "nope"})
	assert.Error(t, err)
	_, err = FromAppConfig(nil)
	assert.Error(t, err)
}

func TestBackendTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"memory", "file", "sqlite", "postgres", "redis", "sheets"}, GetBackendTypeStrings())
	var nilResult *BackendResult
	assert.NoError(t, nilResult.Close())
	assert.NoError(t, nilResult.Ready(context.Background()))
}

package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"bilancio/internal/core"
	"bilancio/internal/store"
	"bilancio/internal/store/storetest"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func openTemp(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &storetest.Suite{
		NewProvider: func() store.Provider { return openTemp(t) },
	})
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	require.NoError(t, RunMigrations(path))

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Ping(context.Background()))
}

func TestListOrderedByDateDesc(t *testing.T) {
	db := openTemp(t)
	st, err := New(db, core.Session{UserID: "u"})
	require.NoError(t, err)
	ctx := context.Background()
	for _, tx := range storetest.Fixture() {
		require.NoError(t, st.Create(ctx, tx))
	}
	got, err := st.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	require.Equal(t, "tx-3", got[0].ID)
	require.Equal(t, "tx-1", got[2].ID)
	require.Nil(t, got[0].Tags)
}

func TestListRejectsCorruptCreatedAt(t *testing.T) {
	db := openTemp(t)
	st, err := New(db, core.Session{UserID: "u"})
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, st.Create(ctx, storetest.Fixture()[0]))

	_, err = db.db.ExecContext(ctx, `UPDATE transactions SET created_at = 'yesterday'`)
	require.NoError(t, err)

	_, err = st.List(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "created_at")
}

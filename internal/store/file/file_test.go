package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bilancio/internal/core"
	"bilancio/internal/store"
	"bilancio/internal/store/storetest"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestFileStore(t *testing.T) {
	suite.Run(t, &storetest.Suite{
		NewProvider: func() store.Provider {
			d, err := Open(t.TempDir())
			require.NoError(t, err)
			return d
		},
	})
}

func TestSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	session := core.Session{UserID: "user/with slash"}

	d, err := Open(dir)
	require.NoError(t, err)
	st, err := New(d, session)
	require.NoError(t, err)
	for _, tx := range storetest.Fixture() {
		require.NoError(t, st.Create(ctx, tx))
	}

	reopened, err := Open(dir)
	require.NoError(t, err)
	st2, err := New(reopened, session)
	require.NoError(t, err)
	got, err := st2.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	require.Equal(t, "user%2Fwith%20slash.json", entries[0].Name())
}

func TestCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "u.json"), []byte("{not json"), 0o644))
	d, err := Open(dir)
	require.NoError(t, err)
	st, err := New(d, core.Session{UserID: "u"})
	require.NoError(t, err)
	_, err = st.List(context.Background())
	require.Error(t, err)
}

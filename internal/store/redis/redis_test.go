package redis

import (
	"context"
	"testing"

	"bilancio/internal/core"
	"bilancio/internal/store"
	"bilancio/internal/store/storetest"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func openMini(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Open(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisStore(t *testing.T) {
	suite.Run(t, &storetest.Suite{
		NewProvider: func() store.Provider {
			c, _ := openMini(t)
			return c
		},
	})
}

func TestKeyLayout(t *testing.T) {
	c, mr := openMini(t)
	st, err := New(c, core.Session{UserID: "alice"})
	require.NoError(t, err)
	require.NoError(t, st.Create(context.Background(), storetest.Fixture()[0]))

	assert.Equal(t, []string{"bilancio:user:alice:tx"}, mr.Keys())
	fields, err := mr.HKeys("bilancio:user:alice:tx")
	require.NoError(t, err)
	assert.Equal(t, []string{"tx-1"}, fields)
}

func TestCorruptEntry(t *testing.T) {
	c, mr := openMini(t)
	mr.HSet("bilancio:user:bob:tx", "bad", "{oops")
	st, err := New(c, core.Session{UserID: "bob"})
	require.NoError(t, err)
	_, err = st.List(context.Background())
	assert.Error(t, err)
}

func TestOpenBadURL(t *testing.T) {
	_, err := Open(context.Background(), "http://not-redis")
	assert.Error(t, err)
}

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestLimiter(rpm, burst int) (*Limiter, *fakeClock) {
	clk := &fakeClock{t: time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)}
	rl := newLimiter(Config{RequestsPerMinute: rpm, Burst: burst})
	rl.now = clk.now
	return rl, clk
}

func TestAllowConsumesBurstThenRefills(t *testing.T) {
	rl, clk := newTestLimiter(60, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "request %d within burst", i)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "clients have separate buckets")

	clk.t = clk.t.Add(time.Second)
	assert.True(t, rl.Allow("1.2.3.4"), "one token per second at 60 rpm")
	assert.False(t, rl.Allow("1.2.3.4"))
}

func TestCleanupDropsStaleClients(t *testing.T) {
	rl, clk := newTestLimiter(60, 1)
	rl.Allow("a")
	clk.t = clk.t.Add(5 * time.Minute)
	rl.Allow("b")

	clk.t = clk.t.Add(6 * time.Minute)
	assert.Equal(t, 1, rl.cleanupStaleEntries())
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestDefaultsApplied(t *testing.T) {
	rl := newLimiter(Config{})
	assert.Equal(t, 60, rl.burst)
	assert.Equal(t, 10*time.Minute, rl.staleAfter)
}

func TestMiddlewareRejectsWithRetryAfter(t *testing.T) {
	rl, _ := newTestLimiter(60, 1)
	limited := 0
	h := rl.Middleware(func(r *http.Request) string { return "k" }, func(w http.ResponseWriter, r *http.Request) {
		limited++
		w.WriteHeader(http.StatusTooManyRequests)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, 1, limited)
	secs, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, secs, 1)
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}

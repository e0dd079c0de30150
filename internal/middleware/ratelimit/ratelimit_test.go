package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowBurstThenReject(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 60, Burst: 3})
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.1.1.1"), "request %d within burst", i)
	}
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "clients are limited independently")

	m := rl.GetMetrics()
	assert.EqualValues(t, 1, m.Rejected)
	assert.EqualValues(t, 2, m.ClientCount)
}

func TestDefaults(t *testing.T) {
	rl := NewLimiter(Config{})
	defer rl.Stop()
	assert.Equal(t, 10, rl.burst)
	assert.InDelta(t, 1.0, float64(rl.limit), 1e-9)
}

func TestCleanupDropsIdleClients(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 60, IdleTimeout: time.Minute})
	defer rl.Stop()

	base := time.Now()
	rl.now = func() time.Time { return base }
	rl.Allow("1.1.1.1")
	rl.now = func() time.Time { return base.Add(30 * time.Second) }
	rl.Allow("2.2.2.2")

	rl.now = func() time.Time { return base.Add(80 * time.Second) }
	rl.cleanupStaleEntries()
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestMiddleware(t *testing.T) {
	rl := NewLimiter(Config{RequestsPerMinute: 30, Burst: 1})
	defer rl.Stop()

	var limited bool
	h := rl.Middleware(
		func(*http.Request) string { return "9.9.9.9" },
		func(w http.ResponseWriter, r *http.Request) {
			limited = true
			w.WriteHeader(http.StatusTooManyRequests)
		},
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.True(t, limited)
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	assert.NotPanics(t, rl.Stop)
}

package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pfm/internal/log"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMiddleware(buf *bytes.Buffer, observe Observer) *Middleware {
	logger := log.New(log.Config{Level: slog.LevelDebug, JSON: true, Output: buf})
	return NewMiddleware(logger, func(*http.Request) string { return "10.1.2.3" }, observe)
}

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	var seen string
	m := newTestMiddleware(&buf, nil)

	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/1", nil))

	require.True(t, strings.HasPrefix(seen, "req_"))
	assert.Equal(t, seen, rec.Header().Get(HeaderRequestID))
	assert.Contains(t, buf.String(), `"request_id":"`+seen+`"`)
	assert.Contains(t, buf.String(), `"status_code":418`)
	assert.Contains(t, buf.String(), `"client_ip":"10.1.2.3"`)
	assert.EqualValues(t, 1, m.GetMetrics().TotalRequests)
}

func TestMiddlewareHonoursUpstreamID(t *testing.T) {
	var buf bytes.Buffer
	m := newTestMiddleware(&buf, nil)
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "edge-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "edge-123", rec.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "bad id with spaces\n")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.NotEqual(t, "bad id with spaces\n", rec.Header().Get(HeaderRequestID))
}

func TestMiddlewareObserves(t *testing.T) {
	var buf bytes.Buffer
	var status int
	var elapsed time.Duration = -1
	m := newTestMiddleware(&buf, func(r *http.Request, s int, d time.Duration) {
		status = s
		elapsed = d
	})
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
		w.WriteHeader(http.StatusInternalServerError)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, status, "first write commits the status")
	assert.GreaterOrEqual(t, elapsed, time.Duration(0))
}

func TestGetRequestIDEmpty(t *testing.T) {
	assert.Empty(t, GetRequestID(httptest.NewRequest(http.MethodGet, "/", nil).Context()))
}

package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(buf *bytes.Buffer, component string) *Logger {
	return New(Config{Level: slog.LevelDebug, Component: component, JSON: true, Output: buf})
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &rec))
	return rec
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestLoggerStampsComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, ComponentAuth)

	logger.Info("hello", FieldUserID, 7)
	rec := lastRecord(t, &buf)
	assert.Equal(t, "auth", rec[FieldComponent])
	assert.EqualValues(t, 7, rec[FieldUserID])

	logger.WithComponent(ComponentBudget).Warn("over")
	rec = lastRecord(t, &buf)
	assert.Equal(t, "budget", rec[FieldComponent])
	assert.Equal(t, "WARN", rec["level"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Level: slog.LevelWarn, JSON: true, Output: &buf})
	logger.Info("dropped")
	assert.Empty(t, buf.String())
	assert.Equal(t, ComponentApp, logger.Component())
}

func TestFromContext(t *testing.T) {
	fallback := FromContext(context.Background())
	assert.Equal(t, "unknown", fallback.Component())

	var buf bytes.Buffer
	logger := newJSONLogger(&buf, ComponentHTTP)
	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := newJSONLogger(&buf, ComponentHTTP)

	h := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).InfoContext(r.Context(), "inside")
		})))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	rec := lastRecord(t, &buf)
	assert.Equal(t, "req_1", rec[FieldRequestID])
	assert.Equal(t, "http", rec[FieldComponent])
}

func TestLogHTTPEndLevels(t *testing.T) {
	tests := []struct {
		status int
		level  string
	}{
		{200, "INFO"},
		{404, "WARN"},
		{500, "ERROR"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		sl := NewStructuredLogger(newJSONLogger(&buf, ComponentApp))
		r := httptest.NewRequest(http.MethodGet, "/api/users/1", nil)
		sl.LogHTTPEnd(context.Background(), r, "req_x", tt.status, 12, "10.0.0.1")

		rec := lastRecord(t, &buf)
		assert.Equal(t, tt.level, rec["level"])
		assert.EqualValues(t, tt.status, rec[FieldStatusCode])
		assert.Equal(t, tt.status < 400, rec[FieldSuccess])
		assert.Equal(t, "http", rec[FieldComponent])
	}
}

func TestDomainHelpers(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newJSONLogger(&buf, ComponentApp))
	ctx := context.Background()

	sl.LogMilestoneChanged(ctx, 3, 2, true)
	rec := lastRecord(t, &buf)
	assert.Equal(t, "milestones", rec[FieldComponent])
	assert.EqualValues(t, 2, rec[FieldStep])
	assert.Equal(t, true, rec[FieldCompleted])

	sl.LogBudgetAlert(ctx, 3, NewFields().WithBudget("800.00", "1000.00", 80, 75, "2025-03"), true)
	rec = lastRecord(t, &buf)
	assert.Equal(t, "budget", rec[FieldComponent])
	assert.EqualValues(t, 75, rec[FieldAlertLevel])
	assert.Equal(t, "2025-03", rec[FieldPeriod])
	assert.Equal(t, true, rec[FieldNewlyCrossed])

	sl.LogError(ctx, "boom", errors.New("disk full"), ComponentStorage, OpCreate, nil)
	rec = lastRecord(t, &buf)
	assert.Equal(t, "disk full", rec[FieldError])
	assert.Equal(t, "storage", rec[FieldComponent])
}

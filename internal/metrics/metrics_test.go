package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUsesIsolatedRegistries(t *testing.T) {
	a := New("pfm")
	b := New("pfm")
	a.Notification("smtp", nil)
	assert.Equal(t, 1.0, testutil.ToFloat64(a.NotificationsTotal.WithLabelValues("smtp", "sent")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.NotificationsTotal.WithLabelValues("smtp", "sent")))
}

func TestRecorders(t *testing.T) {
	m := New("pfm")
	m.Notification("telegram", errors.New("boom"))
	m.Transition(3, true)
	m.BudgetAlert(90, true)
	m.CacheLookup(false)
	m.ObserveHTTP(http.MethodGet, "/api/milestones", 200, 10*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.NotificationsTotal.WithLabelValues("telegram", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MilestoneTransitions.WithLabelValues("3", "completed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BudgetAlerts.WithLabelValues("90", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReportCacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "/api/milestones", "200")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Notification("smtp", nil)
	m.Evaluation("ok")
	m.CacheLookup(true)
	assert.Nil(t, m.Registry())
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New("pfm")
	m.Evaluation("report")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "pfm_milestone_evaluations_total"))
}

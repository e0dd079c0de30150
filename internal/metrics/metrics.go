// Package metrics holds the Prometheus collectors for the API and the
// notifier worker. Each Metrics owns its registry so tests and multiple
// processes never collide on registration.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metrics for pfm. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequestsTotal counts requests by method, route and status.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration is the request latency by route.
	HTTPRequestDuration *prometheus.HistogramVec

	// MilestoneEvaluations counts evaluator runs by outcome.
	MilestoneEvaluations *prometheus.CounterVec

	// MilestoneTransitions counts persisted completion changes.
	MilestoneTransitions *prometheus.CounterVec

	// BudgetAlerts counts crossed thresholds and whether they were new.
	BudgetAlerts *prometheus.CounterVec

	// NotificationsTotal counts deliveries by channel and status.
	NotificationsTotal *prometheus.CounterVec

	// ReportCacheRequests counts report cache lookups by result.
	ReportCacheRequests *prometheus.CounterVec
}

// New creates and registers the collectors on a fresh registry.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"route"},
		),

		MilestoneEvaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "milestone_evaluations_total",
				Help:      "Total number of milestone evaluations",
			},
			[]string{"outcome"},
		),

		MilestoneTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "milestone_transitions_total",
				Help:      "Total number of persisted milestone completion changes",
			},
			[]string{"step", "direction"},
		),

		BudgetAlerts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "budget_alerts_total",
				Help:      "Total number of budget threshold checks that crossed a level",
			},
			[]string{"level", "newly_crossed"},
		),

		NotificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Total number of notification deliveries",
			},
			[]string{"channel", "status"},
		),

		ReportCacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "report_cache_requests_total",
				Help:      "Total number of report cache lookups",
			},
			[]string{"result"},
		),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (m *Metrics) Evaluation(outcome string) {
	if m == nil {
		return
	}
	m.MilestoneEvaluations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Transition(step int, completed bool) {
	if m == nil {
		return
	}
	direction := "regressed"
	if completed {
		direction = "completed"
	}
	m.MilestoneTransitions.WithLabelValues(strconv.Itoa(step), direction).Inc()
}

func (m *Metrics) BudgetAlert(level int, newlyCrossed bool) {
	if m == nil {
		return
	}
	m.BudgetAlerts.WithLabelValues(strconv.Itoa(level), strconv.FormatBool(newlyCrossed)).Inc()
}

func (m *Metrics) Notification(channel string, err error) {
	if m == nil {
		return
	}
	status := "sent"
	if err != nil {
		status = "failed"
	}
	m.NotificationsTotal.WithLabelValues(channel, status).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ReportCacheRequests.WithLabelValues(result).Inc()
}

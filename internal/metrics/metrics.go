// Package metrics exposes Prometheus instrumentation for the sentinel.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hellybrine/terraforms/pkg/policy"
)

// Metrics holds the sentinel's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	EvaluationsTotal    *prometheus.CounterVec
	NotificationsTotal  *prometheus.CounterVec
	CleanupActionsTotal *prometheus.CounterVec
	CurrentCost         prometheus.Gauge

	ResizeRequestsTotal *prometheus.CounterVec
	ResizeDuration      prometheus.Histogram
}

// New creates and registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		EvaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentinel",
				Name:      "evaluations_total",
				Help:      "Cost evaluations by resulting tier",
			},
			[]string{"tier"},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentinel",
				Name:      "notifications_total",
				Help:      "Notification delivery attempts by outcome",
			},
			[]string{"outcome"},
		),
		CleanupActionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentinel",
				Name:      "cleanup_actions_total",
				Help:      "Cleanup action attempts by category and outcome",
			},
			[]string{"category", "outcome"},
		),
		CurrentCost: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "sentinel",
				Name:      "current_cost_usd",
				Help:      "Most recently observed period spend in USD",
			},
		),
		ResizeRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sentinel",
				Name:      "resize_requests_total",
				Help:      "Image resize requests by status",
			},
			[]string{"status"},
		),
		ResizeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "sentinel",
				Name:      "resize_duration_seconds",
				Help:      "Image resize request duration",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	registry.MustRegister(
		m.EvaluationsTotal,
		m.NotificationsTotal,
		m.CleanupActionsTotal,
		m.CurrentCost,
		m.ResizeRequestsTotal,
		m.ResizeDuration,
	)
	return m
}

// ObserveEvaluation records the outcome of one policy evaluation.
func (m *Metrics) ObserveEvaluation(report *policy.Report) {
	m.EvaluationsTotal.WithLabelValues(string(report.Tier)).Inc()
	m.CurrentCost.Set(report.CurrentCost)

	if report.Tier != policy.TierNormal {
		outcome := "failed"
		if report.AlertSent {
			outcome = "delivered"
		}
		m.NotificationsTotal.WithLabelValues(outcome).Inc()
	}

	if report.NukeResult == nil || report.NukeResult.Report == nil {
		return
	}
	for _, attempt := range report.NukeResult.Report.Attempted {
		outcome := "ok"
		if !attempt.OK {
			outcome = "failed"
		}
		m.CleanupActionsTotal.WithLabelValues(string(attempt.Category), outcome).Inc()
	}
}

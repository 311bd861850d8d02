// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "expenses"

var requestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	},
	[]string{"route", "method", "status"},
)

var decisions = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "decisions_total",
		Help:      "Approve/deny calls by requested status and whether a row was updated.",
	},
	[]string{"status", "updated"},
)

var reports = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "reports_generated_total",
		Help:      "CSV reports served, by report type.",
	},
	[]string{"report"},
)

// ObserveRequest records the latency of one HTTP request.
func ObserveRequest(route, method string, status int, elapsed time.Duration) {
	requestDuration.
		WithLabelValues(route, method, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

// ObserveDecision counts an approve or deny attempt.
func ObserveDecision(status string, updated bool) {
	decisions.WithLabelValues(status, strconv.FormatBool(updated)).Inc()
}

// ObserveReport counts a generated CSV report.
func ObserveReport(report string) {
	reports.WithLabelValues(report).Inc()
}

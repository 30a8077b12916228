package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	AuditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audits_total",
			Help: "Total number of audit attempts.",
		},
		[]string{"status", "error_type"}, // status: success, failure, cached
	)

	AuditDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audit_duration_seconds",
			Help:    "Duration of complete audits (fetch, analyze, validate).",
			Buckets: []float64{1, 2, 5, 10, 15, 30, 60, 120},
		},
		[]string{"domain"},
	)

	FetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "browser_fetch_duration_seconds",
			Help:    "Duration of headless browser fetches.",
			Buckets: []float64{1, 2, 3, 5, 10, 30, 60},
		},
	)

	ValidatorRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validator_runs_total",
			Help: "HTML validator outcomes.",
		},
		[]string{"outcome"}, // valid, invalid, unknown, unavailable
	)

	ValidatorDownloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validator_downloads_total",
			Help: "Validator archive download attempts.",
		},
		[]string{"status"},
	)

	AuditsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audits_in_flight",
			Help: "Audits currently holding a browser slot.",
		},
	)
)

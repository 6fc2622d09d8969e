package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tiereddocs"

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	DocumentOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "document_operations_total", Help: "Number of document operations by operation and outcome."},
		[]string{"operation", "outcome"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency by method, route and status.", Buckets: prometheus.DefBuckets},
		[]string{"method", "route", "status"},
	)
	DocumentsExported = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: namespace, Name: "documents_exported_total", Help: "Number of archived documents written to object storage."},
	)
)

// Outcome labels for DocumentOperations.
const (
	OutcomeSuccess    = "success"
	OutcomeNotFound   = "not_found"
	OutcomeValidation = "validation_error"
	OutcomeError      = "error"
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(DocumentOperations)
	reg.MustRegister(HTTPRequestDuration)
	reg.MustRegister(DocumentsExported)
}

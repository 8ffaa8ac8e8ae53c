package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors exposed on /metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimitHits       *prometheus.CounterVec

	// Business metrics
	QuotationsCreated    prometheus.Counter
	QuotationTransitions *prometheus.CounterVec
	FollowupsProcessed   *prometheus.CounterVec
	RentInvoicesCreated  prometheus.Counter
	PaymentsRecorded     *prometheus.CounterVec

	// Infrastructure
	CacheOperations *prometheus.CounterVec
	JobRuns         *prometheus.CounterVec
}

// NewMetrics registers every collector on reg. A nil reg uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status code",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_limit_hits_total",
				Help: "Requests rejected by the rate limiter by path",
			},
			[]string{"path"},
		),
		QuotationsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "quotations_created_total",
				Help: "Total number of quotations created",
			},
		),
		QuotationTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quotation_status_transitions_total",
				Help: "Quotation status transitions by target status",
			},
			[]string{"to"},
		),
		FollowupsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "followups_processed_total",
				Help: "Quotation follow-ups processed by result",
			},
			[]string{"result"},
		),
		RentInvoicesCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "rent_invoices_generated_total",
				Help: "Total number of rent invoices generated",
			},
		),
		PaymentsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_recorded_total",
				Help: "Payment entries recorded by type and status",
			},
			[]string{"type", "status"},
		),
		CacheOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_operations_total",
				Help: "Cache operations by operation and result (hit, miss, error)",
			},
			[]string{"op", "result"},
		),
		JobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "background_job_runs_total",
				Help: "Background job executions by job and result",
			},
			[]string{"job", "result"},
		),
	}
}

// NewNop returns metrics bound to a throwaway registry, for tests and CLI runs.
func NewNop() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}

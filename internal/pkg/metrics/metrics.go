// internal/pkg/metrics/metrics.go
package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// --- Inbound (server) metrics ---
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests processed.",
		},
		[]string{"method", "route", "code"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "Latency of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_errors_total",
			Help: "Total number of HTTP requests resulting in client or server errors.",
		},
		[]string{"method", "route", "code"},
	)

	// --- Outbound (client) metrics ---
	HTTPClientRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_client_requests_total",
			Help: "Total number of outbound HTTP requests.",
		},
		[]string{"method", "code"},
	)
	HTTPClientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_client_request_duration_seconds",
			Help:    "Latency of outbound HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "code"},
	)
	HTTPClientErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_client_request_errors_total",
			Help: "Total number of outbound HTTP requests that failed or returned error status.",
		},
		[]string{"method", "code"},
	)

	// --- Audit pipeline metrics ---
	AuditsSubmittedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audits_submitted_total",
			Help: "Total number of audits accepted for processing.",
		},
	)
	AuditsFinishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audits_finished_total",
			Help: "Total number of audits that reached a terminal status.",
		},
		[]string{"status"},
	)
	AuditPipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audit_pipeline_duration_seconds",
			Help:    "Wall time of one audit pipeline run.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 45, 60, 90},
		},
		[]string{"status"},
	)
	AuditExtractorFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_extractor_failures_total",
			Help: "Total number of extractor runs that degraded to an absent sub-record.",
		},
		[]string{"extractor"},
	)
	AuditLinkProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_link_probes_total",
			Help: "Total number of link probes by outcome.",
		},
		[]string{"outcome"},
	)
	AuditQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_queue_depth",
			Help: "Number of audits waiting for a worker.",
		},
	)

	// --- Runtime metrics ---
	CPUCount = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "process_cpu_count",
			Help: "Number of CPU cores available.",
		},
		func() float64 { return float64(runtime.NumCPU()) },
	)
)

func MetricsRegister() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	// 2) register exactly once
	reg.MustRegister(
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPRequestErrorsTotal,
		HTTPClientRequestsTotal,
		HTTPClientRequestDuration,
		HTTPClientErrorsTotal,
		AuditsSubmittedTotal,
		AuditsFinishedTotal,
		AuditPipelineDuration,
		AuditExtractorFailuresTotal,
		AuditLinkProbesTotal,
		AuditQueueDepth,
		CPUCount,
	)

	return reg
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_http_requests_total",
			Help: "Total HTTP requests by method, path and status code",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rental_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// External call telemetry fed by the apiclient monitor hook.
	ExternalRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rental_external_request_duration_seconds",
			Help:    "Latency of calls to external services",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "url"},
	)

	ExternalResponseBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_external_response_bytes_total",
			Help: "Bytes received from external services",
		},
		[]string{"method", "url"},
	)

	ExternalRateLimitDelay = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rental_external_rate_limit_delay_seconds",
			Help:    "Backoff delays imposed by external rate limits",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	// System gauges sampled by the metrics collector.
	SystemCPUPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rental_system_cpu_percent",
		Help: "Host CPU utilisation",
	})

	SystemMemoryPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rental_system_memory_percent",
		Help: "Host memory utilisation",
	})

	SystemDiskPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "rental_system_disk_percent",
		Help: "Host disk utilisation of the root filesystem",
	})

	BookingConflictsResolved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rental_booking_conflicts_resolved_total",
		Help: "Agreements cancelled by the booking conflict resolver",
	})

	PaymentsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rental_payments_generated_total",
			Help: "Payment records created, by type",
		},
		[]string{"type"},
	)
)

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Checkout results used as the "result" label.
const (
	ResultSuccess           = "success"
	ResultInvalid           = "invalid"
	ResultInvalidSplit      = "invalid_split"
	ResultNotFound          = "not_found"
	ResultInsufficientStock = "insufficient_stock"
	ResultError             = "error"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkouts_total",
			Help: "Checkout attempts by result",
		},
		[]string{"result"},
	)

	CheckoutDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checkout_duration_seconds",
			Help:    "Time to validate, compute and commit a checkout",
			Buckets: prometheus.DefBuckets,
		},
	)

	CheckoutGrandTotal = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "checkout_grand_total",
			Help:    "Grand total of committed invoices",
			Buckets: []float64{100, 500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
		},
	)

	AuditWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "audit_write_failures_total",
			Help: "Audit entries that could not be written to the primary store",
		},
	)

	SaleEventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sale_events_published_total",
			Help: "SaleCompleted events by publish result",
		},
		[]string{"result"},
	)
)

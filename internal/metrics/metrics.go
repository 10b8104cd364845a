// Package metrics registers the service's Prometheus collectors and the
// helpers the services record through.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "casebreak"

// unmatchedRoute labels requests no route matched, so probing clients cannot
// grow the path label without bound.
const unmatchedRoute = "unmatched"

func counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.NewCounterVec(prometheus.CounterOpts{Namespace: Namespace, Name: name, Help: help}, labels)
}

func gauge(name, help string) prometheus.Gauge {
	return promauto.NewGauge(prometheus.GaugeOpts{Namespace: Namespace, Name: name, Help: help})
}

// HTTP traffic.
var (
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route template.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status_code"})

	HTTPRequestTotal     = counterVec("http_requests_total", "HTTP requests by route template.", "method", "route", "status_code")
	HTTPRequestsInFlight = gauge("http_requests_in_flight", "HTTP requests currently being served.")
)

// Checkout and fulfillment.
var (
	CheckoutsTotal   = counterVec("checkouts_total", "Checkouts by outcome.", "status")
	CheckoutDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "checkout_duration_seconds",
		Help:      "Time spent in the checkout transaction.",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})
	// UnitReservationsTotal is labelled full, partial or none by how much of the request stock covered.
	UnitReservationsTotal  = counterVec("unit_reservations_total", "Unit stock reservations by result.", "result")
	CaseBreakRequestsTotal = counterVec("case_break_requests_total", "Break-case request events.", "event")
	UnitPricePreviewsTotal = counterVec("unit_price_previews_total", "Unit price previews by outcome.", "status")
	NotificationsTotal     = counterVec("notifications_total", "Notifications by event type and outcome.", "type", "status")
)

// Dependencies.
var (
	// CircuitBreakerState is 0 closed, 1 open, 2 half-open.
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "circuit_breaker_state",
		Help:      "Circuit breaker state (0 closed, 1 open, 2 half-open).",
	}, []string{"name"})

	CacheOperationsTotal = counterVec("cache_operations_total", "Price cache operations by result.", "operation", "result")
	CacheSize            = gauge("cache_size", "Entries in the price cache.")
	CacheCapacity        = gauge("cache_capacity", "Maximum entries in the price cache.")
)

// PrometheusMiddleware records latency and count per route template.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		labels := []string{c.Request.Method, route, strconv.Itoa(c.Writer.Status())}
		HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		HTTPRequestTotal.WithLabelValues(labels...).Inc()
	}
}

func RecordCheckout(duration time.Duration, status string) {
	CheckoutDuration.Observe(duration.Seconds())
	CheckoutsTotal.WithLabelValues(status).Inc()
}

// RecordReservation classifies a reservation by how much of the request stock covered.
func RecordReservation(requested, reserved int) {
	result := "partial"
	switch {
	case reserved == requested:
		result = "full"
	case reserved == 0:
		result = "none"
	}
	UnitReservationsTotal.WithLabelValues(result).Inc()
}

func RecordCaseBreakRequest(event string) {
	CaseBreakRequestsTotal.WithLabelValues(event).Inc()
}

func RecordUnitPricePreview(status string) {
	UnitPricePreviewsTotal.WithLabelValues(status).Inc()
}

func RecordNotification(eventType, status string) {
	NotificationsTotal.WithLabelValues(eventType, status).Inc()
}

func SetCircuitBreakerState(name string, state int) {
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

func RecordCacheOperation(operation, result string) {
	CacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

func UpdateCacheMetrics(size, capacity int) {
	CacheSize.Set(float64(size))
	CacheCapacity.Set(float64(capacity))
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records the outcomes of the order lifecycle and the gateway
// round-trips behind it.
type CheckoutMetrics struct {
	ordersPlaced *prometheus.CounterVec
	failures     *prometheus.CounterVec
	gatewayCalls *prometheus.CounterVec
	duration     *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	ordersPlaced := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Orders durably persisted, by payment method.",
	}, []string{"method"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_failures_total",
		Help: "Checkout attempts rejected before persistence, by error code.",
	}, []string{"code"})
	gatewayCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_calls_total",
		Help: "Payment gateway round-trips, by operation and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of checkout attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	reg.MustRegister(ordersPlaced, failures, gatewayCalls, duration)
	return &CheckoutMetrics{
		ordersPlaced: ordersPlaced,
		failures:     failures,
		gatewayCalls: gatewayCalls,
		duration:     duration,
	}
}

// IncOrderPlaced counts a durably persisted order.
func (c *CheckoutMetrics) IncOrderPlaced(method string) {
	if c == nil || c.ordersPlaced == nil {
		return
	}
	c.ordersPlaced.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncFailure counts a checkout rejected before persistence.
func (c *CheckoutMetrics) IncFailure(code string) {
	if c == nil || c.failures == nil {
		return
	}
	c.failures.WithLabelValues(normalizeLabel(code)).Inc()
}

// IncGatewayCall counts one gateway round-trip.
func (c *CheckoutMetrics) IncGatewayCall(operation, outcome string) {
	if c == nil || c.gatewayCalls == nil {
		return
	}
	c.gatewayCalls.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// ObserveDuration records how long a checkout attempt took.
func (c *CheckoutMetrics) ObserveDuration(method string, duration time.Duration) {
	if c == nil || c.duration == nil {
		return
	}
	c.duration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

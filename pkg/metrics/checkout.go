package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

const (
	OutcomeSuccess   = "success"
	OutcomeEmptyCart = "empty_cart"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)

// CheckoutMetrics records checkout attempts and simulated charges.
type CheckoutMetrics struct {
	attempts *prometheus.CounterVec
	charged  prometheus.Counter
	lines    prometheus.Histogram
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts by outcome.",
	}, []string{"outcome"})
	charged := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "checkout_charged_amount_total",
		Help: "Sum of simulated charges across successful checkouts.",
	})
	lines := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "checkout_lines",
		Help:    "Number of cart lines drained per successful checkout.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})
	reg.MustRegister(attempts, charged, lines)
	return &CheckoutMetrics{
		attempts: attempts,
		charged:  charged,
		lines:    lines,
	}
}

// ObserveSuccess counts a completed checkout with its line count and total.
func (c *CheckoutMetrics) ObserveSuccess(lineCount int, total decimal.Decimal) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(OutcomeSuccess).Inc()
	c.lines.Observe(float64(lineCount))
	c.charged.Add(total.InexactFloat64())
}

// IncOutcome counts a checkout that ended without charging.
func (c *CheckoutMetrics) IncOutcome(outcome string) {
	if c == nil || c.attempts == nil {
		return
	}
	c.attempts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records outcomes of order submissions.
type CheckoutMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of order submissions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_outcomes_total",
		Help: "Order submission outcomes by terminal state.",
	}, []string{"outcome"})
	reg.MustRegister(duration, outcomes)
	return &CheckoutMetrics{
		duration: duration,
		outcomes: outcomes,
	}
}

// ObserveSubmission records one completed submission with its terminal outcome.
func (c *CheckoutMetrics) ObserveSubmission(outcome string, duration time.Duration) {
	if c == nil || c.outcomes == nil {
		return
	}
	label := normalizeLabel(outcome)
	c.outcomes.WithLabelValues(label).Inc()
	c.duration.WithLabelValues(label).Observe(duration.Seconds())
}

func normalizeLabel(outcome string) string {
	if outcome == "" {
		return "unknown"
	}
	return outcome
}

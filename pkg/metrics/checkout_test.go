package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveSubmissionCountsOutcomes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := NewCheckoutMetrics(reg)

	m.ObserveSubmission("succeeded", 120*time.Millisecond)
	m.ObserveSubmission("succeeded", 80*time.Millisecond)
	m.ObserveSubmission("order_failed", 40*time.Millisecond)
	m.ObserveSubmission("", 10*time.Millisecond)

	require.Equal(t, float64(2), testutil.ToFloat64(m.outcomes.WithLabelValues("succeeded")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.outcomes.WithLabelValues("order_failed")))
	require.Equal(t, float64(1), testutil.ToFloat64(m.outcomes.WithLabelValues("unknown")))
}

func TestNilReceiverIsSafe(t *testing.T) {
	t.Parallel()

	var m *CheckoutMetrics
	m.ObserveSubmission("succeeded", time.Second)

	unregistered := NewCheckoutMetrics(nil)
	unregistered.ObserveSubmission("succeeded", time.Second)
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Placement outcomes recorded by CheckoutMetrics.
const (
	OutcomePlaced        = "placed"
	OutcomePersistFailed = "persist_failed"
	OutcomeConflict      = "conflict"
	OutcomeRejected      = "rejected"
)

// CheckoutMetrics records order placement and notification outcomes.
type CheckoutMetrics struct {
	duration      *prometheus.HistogramVec
	placements    *prometheus.CounterVec
	notifications *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "order_placement_duration_seconds",
		Help:    "Duration of order placement attempts in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_placements_total",
		Help: "Order placement attempts by outcome.",
	}, []string{"outcome"})
	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_notifications_total",
		Help: "Order notification attempts by channel and result.",
	}, []string{"channel", "result"})
	reg.MustRegister(duration, placements, notifications)
	return &CheckoutMetrics{
		duration:      duration,
		placements:    placements,
		notifications: notifications,
	}
}

// ObservePlacement counts one placement attempt and records its duration.
func (c *CheckoutMetrics) ObservePlacement(outcome string, duration time.Duration) {
	if c == nil || c.placements == nil {
		return
	}
	outcome = normalizeLabel(outcome)
	c.placements.WithLabelValues(outcome).Inc()
	c.duration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncNotification counts one notification attempt on the named channel.
func (c *CheckoutMetrics) IncNotification(channel string, success bool) {
	if c == nil || c.notifications == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	c.notifications.WithLabelValues(normalizeLabel(channel), result).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

// Package metrics holds the service's Prometheus collectors. One instance is
// built at startup and injected; nothing here is package-global.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	WebhooksReceived  *prometheus.CounterVec
	WebhooksRejected  *prometheus.CounterVec
	EventsApplied     *prometheus.CounterVec
	BookingsConfirmed prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		WebhooksReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_webhooks_received_total",
			Help: "Webhook deliveries received, by processor.",
		}, []string{"processor"}),
		WebhooksRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_webhooks_rejected_total",
			Help: "Webhook deliveries rejected before reconciliation, by processor and reason.",
		}, []string{"processor", "reason"}),
		EventsApplied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_events_applied_total",
			Help: "Normalized payment events handed to reconciliation, by processor and kind.",
		}, []string{"processor", "kind"}),
		BookingsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bookings_confirmed_total",
			Help: "Bookings promoted to confirmed by reconciliation.",
		}),
	}
	reg.MustRegister(m.WebhooksReceived, m.WebhooksRejected, m.EventsApplied, m.BookingsConfirmed)
	return m
}

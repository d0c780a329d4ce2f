package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FulfillmentMetrics holds every counter the engine records.
type FulfillmentMetrics struct {
	// Webhook ingestion
	WebhookEventsReceivedTotal prometheus.CounterVec
	WebhookEventsRejectedTotal prometheus.CounterVec

	// Event processor
	EventsAppliedTotal prometheus.CounterVec
	EventsSkippedTotal prometheus.CounterVec
	EventsUnknownTotal prometheus.CounterVec

	// Ticket poller
	PollAttemptsTotal         prometheus.CounterVec
	PollExhaustedTotal        prometheus.CounterVec
	TicketDocumentsPersisted  prometheus.CounterVec
	PollDuration              prometheus.HistogramVec

	// Payment orchestration
	SettlementsTotal       prometheus.CounterVec
	RefundsClassifiedTotal prometheus.CounterVec
	IntentsCreatedTotal    prometheus.CounterVec

	// Providers
	ProviderErrorsTotal prometheus.CounterVec
}

func NewFulfillmentMetrics() *FulfillmentMetrics {
	return &FulfillmentMetrics{
		WebhookEventsReceivedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_received_total",
				Help: "Inbound webhook events accepted after signature verification",
			},
			[]string{"provider", "event_type"},
		),

		WebhookEventsRejectedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_rejected_total",
				Help: "Inbound webhook events rejected at the door",
			},
			[]string{"provider", "reason"},
		),

		EventsAppliedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_applied_total",
				Help: "Events whose business effect was applied to an order",
			},
			[]string{"event_type"},
		),

		EventsSkippedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_skipped_total",
				Help: "Events skipped by the idempotency ledger",
			},
			[]string{"event_type"},
		),

		EventsUnknownTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "events_unknown_total",
				Help: "Events of unrecognized type, logged and ignored",
			},
			[]string{"event_type"},
		),

		PollAttemptsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_poll_attempts_total",
				Help: "Ticket poll attempts against the booking provider",
			},
			[]string{"outcome"},
		),

		PollExhaustedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_poll_exhausted_total",
				Help: "Poll chains that hit the attempt budget without documents",
			},
			[]string{},
		),

		TicketDocumentsPersisted: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ticket_documents_persisted_total",
				Help: "Ticket documents upserted by the poller",
			},
			[]string{"identity"},
		),

		PollDuration: *promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ticket_poll_duration_seconds",
				Help:    "Duration of a single poll attempt",
				Buckets: prometheus.DefBuckets,
			},
			[]string{},
		),

		SettlementsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_settlements_total",
				Help: "Booking-provider payment settlements by outcome",
			},
			[]string{"outcome"},
		),

		RefundsClassifiedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refunds_classified_total",
				Help: "Charge refunds classified as full or partial",
			},
			[]string{"kind"},
		),

		IntentsCreatedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payment_intents_created_total",
				Help: "Payment-provider charge intents created",
			},
			[]string{"outcome"},
		),

		ProviderErrorsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "provider_errors_total",
				Help: "Transport or provider errors on outbound calls",
			},
			[]string{"provider", "call"},
		),
	}
}

package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

// Process applies one queued webhook event at most once. The ledger gate runs
// before any business effect; the trailing ledger record and audit stamp are
// best-effort because every upsert below is itself idempotent on redelivery.
func (p *DefaultEventProcessor) Process(ctx context.Context, raw []byte) error {
	event, err := domain.DecodeBookingEvent(raw)
	if err != nil {
		return fmt.Errorf("failed to decode event: %w", err)
	}
	env := event.Envelope

	audit := &domain.WebhookEvent{
		ID:             env.ID,
		Type:           env.Type,
		IdempotencyKey: env.IdempotencyKey,
	}
	key := audit.LedgerKey()

	seen, err := p.Ledger.Seen(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to check idempotency ledger: %w", err)
	}
	if seen {
		slog.Info("event already applied, skipping", "event_id", env.ID, "type", env.Type)
		if p.Metrics != nil {
			p.Metrics.EventsSkippedTotal.WithLabelValues(env.Type).Inc()
		}
		return nil
	}

	switch {
	case event.Order != nil:
		err = p.applyOrderSnapshot(ctx, event)
	case event.Change != nil:
		err = p.applyAirlineChange(ctx, event)
	case event.Cancellation != nil && env.Type == domain.EventCancellationCreated:
		err = p.applyCancellationCreated(ctx, event)
	case event.Cancellation != nil && env.Type == domain.EventCancellationConfirmed:
		err = p.applyCancellationConfirmed(ctx, event)
	case env.Type == domain.EventPing:
		// test no-op
	default:
		// Forward compatible: new provider types must never wedge the queue.
		slog.Warn("ignoring unrecognized event type", "event_id", env.ID, "type", env.Type)
		if p.Metrics != nil {
			p.Metrics.EventsUnknownTotal.WithLabelValues(env.Type).Inc()
		}
	}
	if err != nil {
		return err
	}

	// Best-effort from here down: the business effect already landed.
	if err := p.Ledger.Record(ctx, key); err != nil {
		slog.Error("failed to record idempotency key", "key", key, "error", err.Error())
	}
	if err := p.Events.MarkProcessed(ctx, env.ID); err != nil {
		slog.Error("failed to stamp audit row", "event_id", env.ID, "error", err.Error())
	}
	if p.Metrics != nil {
		p.Metrics.EventsAppliedTotal.WithLabelValues(env.Type).Inc()
	}
	return nil
}

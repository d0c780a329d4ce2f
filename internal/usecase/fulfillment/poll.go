package fulfillment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

// Poll runs one attempt of the self-requeuing ticket chain. Terminal outcomes
// (documents persisted, or attempt budget exhausted) release the per-order
// dedupe guard; everything else requeues with backoff.
func (uc *DefaultFulfillmentUsecase) Poll(ctx context.Context, job domain.PollJob) error {
	started := time.Now()
	defer func() {
		if uc.Metrics != nil {
			uc.Metrics.PollDuration.WithLabelValues().Observe(time.Since(started).Seconds())
		}
	}()

	order, err := uc.Orders.GetByID(ctx, job.OrderID)
	if err != nil {
		// Order row gone is terminal, not retryable.
		if cerr := uc.Scheduler.Complete(ctx, job); cerr != nil {
			slog.Error("failed to release poll guard", "order_id", job.OrderID, "error", cerr.Error())
		}
		return fmt.Errorf("poll attempt %d: %w", job.Attempt, err)
	}

	providerOrder, err := uc.Booking.GetOrder(ctx, order.ProviderBookingID)
	if err != nil {
		slog.Warn("ticket poll fetch failed",
			"order_id", order.ID, "attempt", job.Attempt, "error", err.Error())
		if uc.Metrics != nil {
			uc.Metrics.PollAttemptsTotal.WithLabelValues("fetch_error").Inc()
			uc.Metrics.ProviderErrorsTotal.WithLabelValues("booking", "get_order").Inc()
		}
		return uc.requeueOrGiveUp(ctx, job)
	}

	etickets := filterElectronicTickets(providerOrder.Documents)
	if len(etickets) == 0 {
		if uc.Metrics != nil {
			uc.Metrics.PollAttemptsTotal.WithLabelValues("no_documents").Inc()
		}
		return uc.requeueOrGiveUp(ctx, job)
	}

	persisted, err := uc.PersistDocuments(ctx, order, etickets)
	if err != nil {
		return fmt.Errorf("poll attempt %d: %w", job.Attempt, err)
	}

	if err := uc.Orders.MarkEticketReady(ctx, order.ID); err != nil {
		return fmt.Errorf("failed to mark order %s eticket-ready: %w", order.ID, err)
	}

	slog.Info("ticket documents fulfilled",
		"order_id", order.ID, "attempt", job.Attempt, "documents", persisted)
	if uc.Metrics != nil {
		uc.Metrics.PollAttemptsTotal.WithLabelValues("fulfilled").Inc()
	}
	return uc.Scheduler.Complete(ctx, job)
}

func (uc *DefaultFulfillmentUsecase) requeueOrGiveUp(ctx context.Context, job domain.PollJob) error {
	if job.Attempt >= domain.MaxPollAttempts {
		// Documents may simply never materialize in this environment; the
		// chain ends without error.
		slog.Warn("ticket poll attempt budget exhausted", "order_id", job.OrderID, "attempts", job.Attempt)
		if uc.Metrics != nil {
			uc.Metrics.PollExhaustedTotal.WithLabelValues().Inc()
		}
		return uc.Scheduler.Complete(ctx, job)
	}

	next := domain.PollJob{OrderID: job.OrderID, Attempt: job.Attempt + 1}
	return uc.Scheduler.Requeue(ctx, next, domain.PollBackoff(job.Attempt))
}

func filterElectronicTickets(docs []domain.ProviderDocument) []domain.ProviderDocument {
	var out []domain.ProviderDocument
	for _, d := range docs {
		if d.Type == domain.DocumentTypeElectronicTicket {
			out = append(out, d)
		}
	}
	return out
}

package events

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jaevor/go-nanoid"
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

// applyOrderSnapshot merges an order.created/order.updated snapshot into the
// local Order. Updates may be sparse deltas delivered out of order, so the
// merge only touches fields the snapshot carries.
func (p *DefaultEventProcessor) applyOrderSnapshot(ctx context.Context, event *domain.BookingEvent) error {
	snap := event.Order
	env := event.Envelope

	eventType := env.Type
	patch := &domain.OrderPatch{
		ProviderBookingID: snap.ID,
		OfferID:           snap.OfferID,
		Amount:            snap.TotalAmount,
		Currency:          snap.TotalCurrency,
		AwaitingPayment:   snap.AwaitingPayment,
		PaymentRequiredBy: snap.PaymentRequiredBy,
		LiveMode:          snap.LiveMode,
		LastEventType:     &eventType,
	}
	if snap.Status != nil {
		if status := mapProviderStatus(*snap.Status); status != domain.StatusUnknown {
			patch.Status = &status
		}
	}

	order, err := p.Orders.Merge(ctx, patch, p.defaultsForSnapshot(snap, env.Type))
	if err != nil {
		return fmt.Errorf("failed to merge order snapshot %s: %w", snap.ID, err)
	}

	if len(snap.Documents) > 0 {
		if _, err := p.Fulfillment.PersistDocuments(ctx, order, snap.Documents); err != nil {
			return fmt.Errorf("failed to persist inline documents for order %s: %w", order.ID, err)
		}
	}

	if snap.Status != nil && (*snap.Status == "confirmed" || *snap.Status == "ticketed") {
		if err := p.Fulfillment.EnqueuePoll(ctx, order.ID); err != nil {
			// Business effect already landed; a lost poll is re-triggered by
			// the next order.updated delivery.
			slog.Error("failed to enqueue ticket poll", "order_id", order.ID, "error", err.Error())
		}
	}

	return nil
}

// defaultsForSnapshot builds the row inserted when an event references a
// booking id we have never seen. The placeholder owner is a recovery
// compromise: the originating booking flow normally registers the order first.
func (p *DefaultEventProcessor) defaultsForSnapshot(snap *domain.OrderSnapshot, eventType string) *domain.Order {
	order := &domain.Order{
		ID:                uuid.NewString(),
		ProviderBookingID: snap.ID,
		UserID:            placeholderOwnerID(),
		LastEventType:     eventType,
	}
	if snap.OfferID != nil {
		order.OfferID = *snap.OfferID
	}
	if snap.Status != nil {
		order.Status = mapProviderStatus(*snap.Status)
	}
	if snap.TotalAmount != nil {
		order.Amount = *snap.TotalAmount
	}
	if snap.TotalCurrency != nil {
		order.Currency = *snap.TotalCurrency
	}
	if snap.AwaitingPayment != nil {
		order.AwaitingPayment = *snap.AwaitingPayment
	}
	if snap.PaymentRequiredBy != nil {
		order.PaymentRequiredBy = snap.PaymentRequiredBy
	}
	if snap.LiveMode != nil {
		order.LiveMode = *snap.LiveMode
	}
	return order
}

func placeholderOwnerID() string {
	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return "recovered-owner"
	}
	owner := "recovered-" + idGenerator()
	slog.Warn("event referenced unknown order, creating placeholder owner", "owner_id", owner)
	return owner
}

func mapProviderStatus(providerStatus string) domain.OrderStatus {
	switch providerStatus {
	case "awaiting_payment", "hold", "payment_required":
		return domain.StatusAwaitingPayment
	case "confirmed", "ticketed":
		return domain.StatusConfirmed
	case "paid":
		return domain.StatusPaid
	case "changed":
		return domain.StatusChanged
	case "cancelled":
		return domain.StatusCancelled
	case "refunded":
		return domain.StatusRefunded
	default:
		return domain.StatusUnknown
	}
}

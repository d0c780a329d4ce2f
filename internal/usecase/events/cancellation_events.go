package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

func (p *DefaultEventProcessor) applyCancellationCreated(ctx context.Context, event *domain.BookingEvent) error {
	snap := event.Cancellation

	orderID, err := p.resolveLocalOrderID(ctx, snap.OrderID)
	if err != nil {
		return err
	}

	err = p.Cancellations.Upsert(ctx, &domain.Cancellation{
		ProviderID:     snap.ID,
		OrderID:        orderID,
		RefundAmount:   snap.RefundAmount,
		RefundCurrency: snap.RefundCurrency,
		ExpiresAt:      snap.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert cancellation quote %s: %w", snap.ID, err)
	}
	return nil
}

func (p *DefaultEventProcessor) applyCancellationConfirmed(ctx context.Context, event *domain.BookingEvent) error {
	snap := event.Cancellation

	orderID, err := p.resolveLocalOrderID(ctx, snap.OrderID)
	if err != nil {
		return err
	}

	// The confirm may beat the quote event; upsert first so the mirror always
	// converges to a confirmed row.
	err = p.Cancellations.Upsert(ctx, &domain.Cancellation{
		ProviderID:     snap.ID,
		OrderID:        orderID,
		RefundAmount:   snap.RefundAmount,
		RefundCurrency: snap.RefundCurrency,
		ExpiresAt:      snap.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert cancellation %s: %w", snap.ID, err)
	}

	confirmedAt := time.Now()
	if snap.ConfirmedAt != nil {
		confirmedAt = *snap.ConfirmedAt
	}
	if err := p.Cancellations.Confirm(ctx, snap.ID, confirmedAt); err != nil {
		return fmt.Errorf("failed to confirm cancellation %s: %w", snap.ID, err)
	}

	if err := p.Orders.SetStatus(ctx, orderID, domain.StatusCancelled); err != nil {
		return fmt.Errorf("failed to mark order %s cancelled: %w", orderID, err)
	}
	if err := p.Orders.SetPaymentStatus(ctx, orderID, domain.PaymentStatusCancelled); err != nil {
		return fmt.Errorf("failed to mark payment cancelled on order %s: %w", orderID, err)
	}
	return nil
}

func (p *DefaultEventProcessor) applyAirlineChange(ctx context.Context, event *domain.BookingEvent) error {
	change := event.Change

	orderID, err := p.resolveLocalOrderID(ctx, change.OrderID)
	if err != nil {
		return err
	}

	err = p.Changes.UpsertChange(ctx, &domain.Change{
		ProviderID:     change.ID,
		OrderID:        orderID,
		ChangeAmount:   change.ChangeAmount,
		ChangeCurrency: change.ChangeCurrency,
		RawPayload:     string(event.Envelope.Data.Object),
		ConfirmedAt:    change.ConfirmedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to persist airline change %s: %w", change.ID, err)
	}

	if err := p.Orders.SetStatus(ctx, orderID, domain.StatusChanged); err != nil {
		return fmt.Errorf("failed to mark order %s changed: %w", orderID, err)
	}
	return nil
}

// resolveLocalOrderID maps a provider booking id onto the local row, creating
// a placeholder order when the referencing event arrived first.
func (p *DefaultEventProcessor) resolveLocalOrderID(ctx context.Context, providerBookingID string) (string, error) {
	order, err := p.Orders.GetByProviderBookingID(ctx, providerBookingID)
	if err == nil {
		return order.ID, nil
	}
	if !errors.Is(err, domain.ErrOrderNotFound) {
		return "", err
	}

	slog.Warn("event for unknown booking, creating placeholder order", "provider_booking_id", providerBookingID)
	placeholder := &domain.Order{
		ID:                uuid.NewString(),
		ProviderBookingID: providerBookingID,
		UserID:            placeholderOwnerID(),
	}
	if err := p.Orders.Create(ctx, placeholder); err != nil {
		// Lost the race with a concurrent creator; re-read.
		order, readErr := p.Orders.GetByProviderBookingID(ctx, providerBookingID)
		if readErr != nil {
			return "", fmt.Errorf("failed to create placeholder order: %w", err)
		}
		return order.ID, nil
	}
	return placeholder.ID, nil
}

package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/skylane/skylane-fulfillment-service/internal/currency"
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

// HandleChargeRefunded classifies a provider-side refund and, for full
// refunds only, drives the two-phase booking cancellation. A booking-side
// failure after the money already moved is an operational follow-up, never an
// error back to the webhook delivery.
func (uc *DefaultPaymentUsecase) HandleChargeRefunded(ctx context.Context, n *domain.ChargeNotification) error {
	order, err := uc.resolveOrder(ctx, n)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			slog.Error("refund for unknown order", "intent_id", n.IntentID, "refund_id", n.RefundID)
			return nil
		}
		return err
	}

	full, err := currency.Equal(n.RefundAmount, n.RefundCurrency, order.Amount, order.Currency)
	if err != nil {
		return fmt.Errorf("failed to classify refund %s: %w", n.RefundID, err)
	}

	kind := domain.RefundKindPartial
	if full {
		kind = domain.RefundKindFull
	}
	if uc.Metrics != nil {
		uc.Metrics.RefundsClassifiedTotal.WithLabelValues(string(kind)).Inc()
	}

	err = uc.Refunds.Upsert(ctx, &domain.Refund{
		OrderID:          order.ID,
		ProviderRefundID: n.RefundID,
		ChargeID:         n.ChargeID,
		Kind:             kind,
		Amount:           n.RefundAmount,
		Currency:         n.RefundCurrency,
	})
	if err != nil {
		return fmt.Errorf("failed to record refund %s: %w", n.RefundID, err)
	}

	if !full {
		// Partial refund policy is out of automatic scope: record the state,
		// leave the booking alone.
		if err := uc.Orders.SetStatus(ctx, order.ID, domain.StatusPartiallyRefunded); err != nil {
			return err
		}
		return nil
	}

	if _, err := uc.cancelBooking(ctx, order); err != nil {
		slog.Error("booking cancellation after full refund failed; needs operator follow-up",
			"order_id", order.ID, "refund_id", n.RefundID, "error", err.Error())
		return nil
	}

	if err := uc.Orders.SetStatus(ctx, order.ID, domain.StatusRefunded); err != nil {
		return err
	}
	return uc.Orders.SetPaymentStatus(ctx, order.ID, domain.PaymentStatusRefunded)
}

// cancelBooking runs the two-phase quote-then-confirm cancellation and
// mirrors the result locally. The quote is returned so callers can report
// the provider's refund figures.
func (uc *DefaultPaymentUsecase) cancelBooking(ctx context.Context, order *domain.Order) (*domain.ProviderCancellation, error) {
	quote, err := uc.Booking.CreateCancellation(ctx, order.ProviderBookingID)
	if err != nil {
		if uc.Metrics != nil {
			uc.Metrics.ProviderErrorsTotal.WithLabelValues("booking", "create_cancellation").Inc()
		}
		return nil, fmt.Errorf("cancellation quote: %w", err)
	}
	if quote.ID == "" {
		return nil, fmt.Errorf("cancellation quote: %w", domain.ErrNoConfirmationID)
	}

	err = uc.Cancellations.Upsert(ctx, &domain.Cancellation{
		ProviderID:     quote.ID,
		OrderID:        order.ID,
		RefundAmount:   quote.RefundAmount,
		RefundCurrency: quote.RefundCurrency,
		ExpiresAt:      quote.ExpiresAt,
	})
	if err != nil {
		slog.Error("failed to mirror cancellation quote", "provider_id", quote.ID, "error", err.Error())
	}

	confirmed, err := uc.Booking.ConfirmCancellation(ctx, quote.ID)
	if err != nil {
		if uc.Metrics != nil {
			uc.Metrics.ProviderErrorsTotal.WithLabelValues("booking", "confirm_cancellation").Inc()
		}
		return nil, fmt.Errorf("cancellation confirm: %w", err)
	}

	if confirmed.ConfirmedAt != nil {
		if err := uc.Cancellations.Confirm(ctx, quote.ID, *confirmed.ConfirmedAt); err != nil {
			slog.Error("failed to mirror cancellation confirm", "provider_id", quote.ID, "error", err.Error())
		}
	}
	return quote, nil
}

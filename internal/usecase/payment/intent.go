package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/skylane/skylane-fulfillment-service/internal/currency"
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

// CreateIntent creates a Payment-Provider charge intent for a hold order.
// Instant orders were already settled by the Booking Provider and must never
// be charged a second time.
func (uc *DefaultPaymentUsecase) CreateIntent(ctx context.Context, orderID string) (*domain.ProviderIntent, error) {
	order, err := uc.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !order.AwaitingPayment {
		if uc.Metrics != nil {
			uc.Metrics.IntentsCreatedTotal.WithLabelValues("rejected_settled").Inc()
		}
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrAlreadySettled)
	}

	if _, err := currency.ToMinorUnits(order.Amount, order.Currency); err != nil {
		return nil, err
	}

	intent, err := uc.Payments.CreateIntent(ctx, order.ID, order.Amount, order.Currency, intentIdempotencyKey(order))
	if err != nil {
		if uc.Metrics != nil {
			uc.Metrics.IntentsCreatedTotal.WithLabelValues("provider_error").Inc()
		}
		return nil, fmt.Errorf("failed to create intent for order %s: %w", orderID, err)
	}

	if err := uc.Orders.MarkPaymentLinkage(ctx, order.ID, "payment_provider", intent.ID); err != nil {
		return nil, fmt.Errorf("failed to link intent %s to order %s: %w", intent.ID, orderID, err)
	}
	if err := uc.Orders.SetPaymentStatus(ctx, order.ID, domain.PaymentStatusPending); err != nil {
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.IntentsCreatedTotal.WithLabelValues("created").Inc()
	}
	return intent, nil
}

// intentIdempotencyKey is a stable hash over the charge-relevant order state:
// the same order and amount always maps to the same provider-side intent.
func intentIdempotencyKey(order *domain.Order) string {
	sum := sha256.Sum256([]byte(order.ID + "|" + order.Amount + "|" + order.Currency))
	return hex.EncodeToString(sum[:])
}

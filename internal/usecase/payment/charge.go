package payment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

// HandleChargeSucceeded aligns the Booking Provider with a successful charge.
// Hold orders get settled with the charge id as idempotency key, so provider
// redeliveries of the same charge can never double-settle; a settlement
// failure is the one error deliberately returned to the webhook handler to
// force a redelivery-driven retry.
func (uc *DefaultPaymentUsecase) HandleChargeSucceeded(ctx context.Context, n *domain.ChargeNotification) error {
	order, err := uc.resolveOrder(ctx, n)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			slog.Error("charge succeeded for unknown order", "intent_id", n.IntentID, "order_id", n.OrderID)
			return nil
		}
		return err
	}

	if !order.AwaitingPayment {
		// Instant order: the Booking Provider settled it at creation. Only
		// persist the linkage and move on to ticketing.
		if err := uc.Orders.MarkPaymentLinkage(ctx, order.ID, "payment_provider", n.IntentID); err != nil {
			return err
		}
		return uc.Poller.EnqueuePoll(ctx, order.ID)
	}

	if err := uc.Booking.SettlePayment(ctx, order.ProviderBookingID, n.Amount, n.Currency, n.ChargeID); err != nil {
		if uc.Metrics != nil {
			uc.Metrics.SettlementsTotal.WithLabelValues("failed").Inc()
			uc.Metrics.ProviderErrorsTotal.WithLabelValues("booking", "settle_payment").Inc()
		}
		return fmt.Errorf("%w: order %s charge %s: %v", domain.ErrSettlementFailed, order.ID, n.ChargeID, err)
	}
	if uc.Metrics != nil {
		uc.Metrics.SettlementsTotal.WithLabelValues("settled").Inc()
	}

	if err := uc.Orders.MarkPaid(ctx, order.ID, "payment_provider", n.IntentID, time.Now()); err != nil {
		return fmt.Errorf("failed to mark order %s paid: %w", order.ID, err)
	}

	return uc.Poller.EnqueuePoll(ctx, order.ID)
}

func (uc *DefaultPaymentUsecase) HandleChargeFailed(ctx context.Context, n *domain.ChargeNotification) error {
	order, err := uc.resolveOrder(ctx, n)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			slog.Error("charge failed for unknown order", "intent_id", n.IntentID, "order_id", n.OrderID)
			return nil
		}
		return err
	}

	if err := uc.Orders.SetPaymentStatus(ctx, order.ID, domain.PaymentStatusFailed); err != nil {
		return err
	}
	return uc.Orders.SetStatus(ctx, order.ID, domain.StatusPaymentFailed)
}

// resolveOrder prefers the order id carried in intent metadata and falls back
// to the persisted intent linkage.
func (uc *DefaultPaymentUsecase) resolveOrder(ctx context.Context, n *domain.ChargeNotification) (*domain.Order, error) {
	if n.OrderID != "" {
		order, err := uc.Orders.GetByID(ctx, n.OrderID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, domain.ErrOrderNotFound) {
			return nil, err
		}
	}
	if n.IntentID == "" {
		return nil, domain.ErrOrderNotFound
	}
	return uc.Orders.GetByPaymentIntentID(ctx, n.IntentID)
}

package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

const (
	stepPolicyCheck   = "policy_check"
	stepCancelBooking = "cancel_booking"
	stepMoneyRefund   = "money_refund"
	stepStatusUpdate  = "status_update"
)

// RefundOrder is the user-initiated inverse of the webhook-driven flow:
// policy pre-check, booking cancellation, then the optional money refund.
// Every step lands in the result, so "booking cancelled but refund failed"
// is reported precisely instead of masked as one opaque error.
func (uc *DefaultPaymentUsecase) RefundOrder(ctx context.Context, orderID string) (*domain.RefundResult, error) {
	order, err := uc.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result := &domain.RefundResult{OrderID: order.ID}

	// Policy pre-check against the provider's stated conditions.
	providerOrder, err := uc.Booking.GetOrder(ctx, order.ProviderBookingID)
	if err != nil {
		result.Steps = append(result.Steps, domain.RefundStep{
			Name: stepPolicyCheck, Code: "provider_unreachable", Message: err.Error(),
		})
		return result, nil
	}
	if !providerOrder.Refundable {
		result.Steps = append(result.Steps, domain.RefundStep{
			Name: stepPolicyCheck, Code: "not_refundable",
			Message: domain.ErrNotRefundable.Error(),
		})
		return result, nil
	}
	result.Steps = append(result.Steps, domain.RefundStep{Name: stepPolicyCheck, OK: true})

	// Two-phase booking cancellation.
	quote, err := uc.cancelBooking(ctx, order)
	if err != nil {
		result.Steps = append(result.Steps, domain.RefundStep{
			Name: stepCancelBooking, Code: "cancellation_failed", Message: err.Error(),
		})
		return result, nil
	}
	result.Cancelled = true
	result.RefundAmount = quote.RefundAmount
	result.RefundCurrency = quote.RefundCurrency
	result.Steps = append(result.Steps, domain.RefundStep{Name: stepCancelBooking, OK: true})

	// Money side, skipped gracefully when no charge record resolves.
	uc.refundMoney(ctx, order, quote, result)

	// Local status converges regardless of the money-side outcome: the
	// booking is cancelled either way.
	statusErr := uc.Orders.SetStatus(ctx, order.ID, domain.StatusRefunded)
	if statusErr == nil && result.MoneyRefunded {
		statusErr = uc.Orders.SetPaymentStatus(ctx, order.ID, domain.PaymentStatusRefunded)
	} else if statusErr == nil {
		statusErr = uc.Orders.SetPaymentStatus(ctx, order.ID, domain.PaymentStatusCancelled)
	}
	if statusErr != nil {
		result.Steps = append(result.Steps, domain.RefundStep{
			Name: stepStatusUpdate, Code: "persist_failed", Message: statusErr.Error(),
		})
		return result, nil
	}
	result.Steps = append(result.Steps, domain.RefundStep{Name: stepStatusUpdate, OK: true})

	result.OK = result.Cancelled && (result.MoneyRefunded || result.RefundSkipped)
	return result, nil
}

func (uc *DefaultPaymentUsecase) refundMoney(ctx context.Context, order *domain.Order, quote *domain.ProviderCancellation, result *domain.RefundResult) {
	intent, err := uc.resolveIntent(ctx, order)
	if err != nil {
		result.Steps = append(result.Steps, domain.RefundStep{
			Name: stepMoneyRefund, Code: "intent_lookup_failed", Message: err.Error(),
		})
		return
	}
	if intent == nil || intent.ChargeID == "" {
		// No charge to refund (e.g. instant order paid on the booking side).
		result.RefundSkipped = true
		result.Steps = append(result.Steps, domain.RefundStep{
			Name: stepMoneyRefund, OK: true, Code: "no_charge_record",
		})
		return
	}

	amount, currencyCode := quote.RefundAmount, quote.RefundCurrency
	if amount == "" {
		amount, currencyCode = order.Amount, order.Currency
	}

	refund, err := uc.Payments.CreateRefund(ctx, intent.ChargeID, amount, currencyCode,
		refundIdempotencyKey(intent.ChargeID, amount, currencyCode))
	if err != nil {
		if uc.Metrics != nil {
			uc.Metrics.ProviderErrorsTotal.WithLabelValues("payment", "create_refund").Inc()
		}
		result.Steps = append(result.Steps, domain.RefundStep{
			Name: stepMoneyRefund, Code: "refund_failed", Message: err.Error(),
		})
		return
	}

	err = uc.Refunds.Upsert(ctx, &domain.Refund{
		OrderID:          order.ID,
		ProviderRefundID: refund.ID,
		ChargeID:         intent.ChargeID,
		Kind:             domain.RefundKindFull,
		Amount:           amount,
		Currency:         currencyCode,
	})
	if err != nil {
		slog.Error("failed to record refund row", "refund_id", refund.ID, "error", err.Error())
	}

	result.MoneyRefunded = true
	result.Steps = append(result.Steps, domain.RefundStep{Name: stepMoneyRefund, OK: true})
}

func (uc *DefaultPaymentUsecase) resolveIntent(ctx context.Context, order *domain.Order) (*domain.ProviderIntent, error) {
	if order.PaymentIntentID != "" {
		intent, err := uc.Payments.GetIntent(ctx, order.PaymentIntentID)
		if err != nil {
			return nil, fmt.Errorf("get intent %s: %w", order.PaymentIntentID, err)
		}
		return intent, nil
	}
	return uc.Payments.FindIntentByOrder(ctx, order.ID)
}

func refundIdempotencyKey(chargeID, amount, currencyCode string) string {
	sum := sha256.Sum256([]byte(chargeID + "|" + amount + "|" + currencyCode))
	return hex.EncodeToString(sum[:])
}

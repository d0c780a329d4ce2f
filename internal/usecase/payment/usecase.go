package payment

import (
	"context"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/metrics"
)

type PaymentUsecase interface {
	CreateIntent(ctx context.Context, orderID string) (*domain.ProviderIntent, error)
	HandleChargeSucceeded(ctx context.Context, notification *domain.ChargeNotification) error
	HandleChargeFailed(ctx context.Context, notification *domain.ChargeNotification) error
	HandleChargeRefunded(ctx context.Context, notification *domain.ChargeNotification) error
	RefundOrder(ctx context.Context, orderID string) (*domain.RefundResult, error)
}

// Poller is the slice of the fulfillment usecase the orchestrator needs: a
// paid order gets a ticket poll.
type Poller interface {
	EnqueuePoll(ctx context.Context, orderID string) error
}

type DefaultPaymentUsecase struct {
	Orders        domain.OrderRepository
	Refunds       domain.RefundRepository
	Cancellations domain.CancellationRepository
	Booking       domain.BookingProvider
	Payments      domain.PaymentProvider
	Poller        Poller
	Metrics       *metrics.FulfillmentMetrics
}

func NewDefaultPaymentUsecase(
	orders domain.OrderRepository,
	refunds domain.RefundRepository,
	cancellations domain.CancellationRepository,
	booking domain.BookingProvider,
	payments domain.PaymentProvider,
	poller Poller,
	paymentMetrics *metrics.FulfillmentMetrics) *DefaultPaymentUsecase {

	return &DefaultPaymentUsecase{
		Orders:        orders,
		Refunds:       refunds,
		Cancellations: cancellations,
		Booking:       booking,
		Payments:      payments,
		Poller:        poller,
		Metrics:       paymentMetrics,
	}
}

package setup

import (
	"strings"

	"github.com/skylane/skylane-fulfillment-service/internal/usecase/change"
	"github.com/skylane/skylane-fulfillment-service/internal/usecase/events"
	"github.com/skylane/skylane-fulfillment-service/internal/usecase/fulfillment"
	"github.com/skylane/skylane-fulfillment-service/internal/usecase/payment"
)

type UseCases struct {
	Fulfillment fulfillment.FulfillmentUsecase
	Events      events.EventProcessor
	Payments    payment.PaymentUsecase
	Changes     change.ChangeUsecase
}

func InitializeUseCases(deps *Dependencies) *UseCases {
	fulfillmentUsecase := fulfillment.NewDefaultFulfillmentUsecase(
		deps.Repositories.OrderRepo,
		deps.Repositories.TicketRepo,
		deps.Booking,
		deps.Scheduler,
		deps.Metrics,
	)

	eventProcessor := events.NewDefaultEventProcessor(
		deps.Repositories.OrderRepo,
		deps.Repositories.CancellationRepo,
		deps.Repositories.ChangeRepo,
		deps.Repositories.WebhookEventRepo,
		deps.Repositories.Ledger,
		fulfillmentUsecase,
		deps.Metrics,
	)

	paymentUsecase := payment.NewDefaultPaymentUsecase(
		deps.Repositories.OrderRepo,
		deps.Repositories.RefundRepo,
		deps.Repositories.CancellationRepo,
		deps.Booking,
		deps.Payments,
		fulfillmentUsecase,
		deps.Metrics,
	)

	changeUsecase := change.NewDefaultChangeUsecase(
		deps.Repositories.OrderRepo,
		deps.Repositories.ChangeRepo,
		deps.Booking,
	)

	return &UseCases{
		Fulfillment: fulfillmentUsecase,
		Events:      eventProcessor,
		Payments:    paymentUsecase,
		Changes:     changeUsecase,
	}
}

// AllowUnverifiedWebhooks honors the escape hatch outside prod only.
func AllowUnverifiedWebhooks(deps *Dependencies) bool {
	if strings.EqualFold(deps.Config.Env, "prod") {
		return false
	}
	return deps.Config.BookingProvider.AllowUnverified
}

package fulfillment

import (
	"context"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/metrics"
)

type FulfillmentUsecase interface {
	EnqueuePoll(ctx context.Context, orderID string) error
	Poll(ctx context.Context, job domain.PollJob) error
	PersistDocuments(ctx context.Context, order *domain.Order, docs []domain.ProviderDocument) (int, error)
}

type DefaultFulfillmentUsecase struct {
	Orders    domain.OrderRepository
	Tickets   domain.TicketDocumentRepository
	Booking   domain.BookingProvider
	Scheduler domain.PollScheduler
	Metrics   *metrics.FulfillmentMetrics
}

func NewDefaultFulfillmentUsecase(
	orders domain.OrderRepository,
	tickets domain.TicketDocumentRepository,
	booking domain.BookingProvider,
	scheduler domain.PollScheduler,
	pollMetrics *metrics.FulfillmentMetrics) *DefaultFulfillmentUsecase {

	return &DefaultFulfillmentUsecase{
		Orders:    orders,
		Tickets:   tickets,
		Booking:   booking,
		Scheduler: scheduler,
		Metrics:   pollMetrics,
	}
}

// EnqueuePoll schedules the first attempt of a poll chain. The scheduler
// dedupes by order, so calling this while a poll is pending is a no-op.
func (uc *DefaultFulfillmentUsecase) EnqueuePoll(ctx context.Context, orderID string) error {
	return uc.Scheduler.Enqueue(ctx, domain.PollJob{OrderID: orderID, Attempt: 1}, 0)
}

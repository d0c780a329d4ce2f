package events

import (
	"context"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/metrics"
)

type EventProcessor interface {
	Process(ctx context.Context, raw []byte) error
}

// Fulfillment is the slice of the fulfillment usecase the processor needs:
// document persistence on inline snapshots and poll scheduling on
// confirmation.
type Fulfillment interface {
	PersistDocuments(ctx context.Context, order *domain.Order, docs []domain.ProviderDocument) (int, error)
	EnqueuePoll(ctx context.Context, orderID string) error
}

type DefaultEventProcessor struct {
	Orders        domain.OrderRepository
	Cancellations domain.CancellationRepository
	Changes       domain.ChangeRepository
	Events        domain.WebhookEventRepository
	Ledger        domain.IdempotencyLedger
	Fulfillment   Fulfillment
	Metrics       *metrics.FulfillmentMetrics
}

func NewDefaultEventProcessor(
	orders domain.OrderRepository,
	cancellations domain.CancellationRepository,
	changes domain.ChangeRepository,
	events domain.WebhookEventRepository,
	ledger domain.IdempotencyLedger,
	fulfillment Fulfillment,
	eventMetrics *metrics.FulfillmentMetrics) *DefaultEventProcessor {

	return &DefaultEventProcessor{
		Orders:        orders,
		Cancellations: cancellations,
		Changes:       changes,
		Events:        events,
		Ledger:        ledger,
		Fulfillment:   fulfillment,
		Metrics:       eventMetrics,
	}
}

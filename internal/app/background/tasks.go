package background

import (
	"context"
	"log"
	"time"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/usecase/events"
	"github.com/skylane/skylane-fulfillment-service/internal/usecase/fulfillment"
)

// DueScheduler claims poll jobs whose delay has elapsed.
type DueScheduler interface {
	PopDue(ctx context.Context, now time.Time) ([]domain.PollJob, error)
}

type BackgroundTasks struct {
	Events      events.EventProcessor
	Fulfillment fulfillment.FulfillmentUsecase
	Orders      domain.OrderRepository
	Subscriber  domain.SubscriberPort
	Scheduler   DueScheduler
	Topic       string
	GroupID     string
}

func NewBackgroundTasks(
	eventProcessor events.EventProcessor,
	fulfillmentUsecase fulfillment.FulfillmentUsecase,
	orders domain.OrderRepository,
	subscriber domain.SubscriberPort,
	scheduler DueScheduler,
	topic, groupID string) *BackgroundTasks {

	return &BackgroundTasks{
		Events:      eventProcessor,
		Fulfillment: fulfillmentUsecase,
		Orders:      orders,
		Subscriber:  subscriber,
		Scheduler:   scheduler,
		Topic:       topic,
		GroupID:     groupID,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startEventWorker(ctx)
	go bt.startPollDispatcher(ctx)
	go bt.startPaymentDeadlineSweep(ctx)
}

// startEventWorker drains the webhook event queue. Processing errors are
// logged and the message is not retried here; the idempotency ledger makes a
// later provider redelivery safe.
func (bt *BackgroundTasks) startEventWorker(ctx context.Context) {
	messages, err := bt.Subscriber.Subscribe(bt.Topic, bt.GroupID)
	if err != nil {
		log.Printf("event worker: subscribe failed: %v\n", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				log.Printf("event worker: queue closed\n")
				return
			}
			if err := bt.Events.Process(ctx, msg.Value); err != nil {
				log.Printf("event worker: processing failed: %v\n", err)
			}
		}
	}
}

// startPollDispatcher claims due poll jobs and runs the attempts. Polls are
// quick HTTP round trips, so a modest tick keeps latency low without hammering
// redis.
func (bt *BackgroundTasks) startPollDispatcher(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			jobs, err := bt.Scheduler.PopDue(ctx, time.Now())
			if err != nil {
				log.Printf("poll dispatcher: %v\n", err)
				continue
			}
			for _, job := range jobs {
				if err := bt.Fulfillment.Poll(ctx, job); err != nil {
					log.Printf("poll dispatcher: order %s attempt %d: %v\n", job.OrderID, job.Attempt, err)
				}
			}
		}
	}
}

// startPaymentDeadlineSweep fails hold orders whose payment window lapsed
// without a charge.
func (bt *BackgroundTasks) startPaymentDeadlineSweep(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			expired, err := bt.Orders.FindHoldOrdersPastDeadline(ctx, time.Now())
			if err != nil {
				log.Printf("deadline sweep: %v\n", err)
				continue
			}
			for _, order := range expired {
				if err := bt.Orders.SetStatus(ctx, order.ID, domain.StatusPaymentFailed); err != nil {
					log.Printf("deadline sweep: order %s: %v\n", order.ID, err)
					continue
				}
				if err := bt.Orders.SetPaymentStatus(ctx, order.ID, domain.PaymentStatusFailed); err != nil {
					log.Printf("deadline sweep: order %s: %v\n", order.ID, err)
				}
			}
		}
	}
}

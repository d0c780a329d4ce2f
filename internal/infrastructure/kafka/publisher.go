package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

// EventPublisher writes verified webhook events to the durable queue. The
// HTTP handlers return as soon as the write is acknowledged; all business
// logic runs in the consuming worker.
type EventPublisher struct {
	writer *kafka.Writer
}

func NewEventPublisher(brokers []string, topic string) *EventPublisher {
	return &EventPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

func (p *EventPublisher) Publish(msgs ...domain.Message) error {
	km := make([]kafka.Message, 0, len(msgs))
	now := time.Now()
	for _, m := range msgs {
		km = append(km, kafka.Message{
			Key:   m.Key,
			Value: m.Value,
			Time:  now,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return p.writer.WriteMessages(ctx, km...)
}

func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

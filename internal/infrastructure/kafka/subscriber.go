package kafka

import (
	"context"

	"github.com/segmentio/kafka-go"
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

type EventSubscriber struct {
	brokers []string
}

func NewEventSubscriber(brokers []string) *EventSubscriber {
	return &EventSubscriber{brokers: brokers}
}

func (s *EventSubscriber) Subscribe(topic, groupID string) (<-chan domain.Message, error) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: s.brokers,
		Topic:   topic,
		GroupID: groupID,
	})
	out := make(chan domain.Message)
	go func() {
		defer reader.Close()
		for {
			m, err := reader.ReadMessage(context.Background())
			if err != nil {
				close(out)
				return
			}
			out <- domain.Message{Key: m.Key, Value: m.Value}
		}
	}()
	return out, nil
}

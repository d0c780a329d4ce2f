package mappers

import (
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMWebhookEvent(event *domain.WebhookEvent) *models.WebhookEventModel {
	return &models.WebhookEventModel{
		ID:             event.ID,
		Type:           event.Type,
		IdempotencyKey: event.IdempotencyKey,
		APIVersion:     event.APIVersion,
		LiveMode:       event.LiveMode,
		RemoteCreated:  event.RemoteCreated,
		Payload:        event.Payload,
		ProcessedAt:    event.ProcessedAt,
	}
}

func ToDomainWebhookEvent(model *models.WebhookEventModel) *domain.WebhookEvent {
	return &domain.WebhookEvent{
		ID:             model.ID,
		Type:           model.Type,
		IdempotencyKey: model.IdempotencyKey,
		APIVersion:     model.APIVersion,
		LiveMode:       model.LiveMode,
		RemoteCreated:  model.RemoteCreated,
		Payload:        model.Payload,
		ProcessedAt:    model.ProcessedAt,
		CreatedAt:      model.CreatedAt,
	}
}

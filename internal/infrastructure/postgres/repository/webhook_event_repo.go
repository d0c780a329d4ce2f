package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultWebhookEventRepository struct {
	DB *gorm.DB
}

func NewDefaultWebhookEventRepository(db *gorm.DB) *DefaultWebhookEventRepository {
	return &DefaultWebhookEventRepository{DB: db}
}

// Insert audits the raw event. A redelivered event id conflicts on the
// primary key and is silently kept as the first copy.
func (r *DefaultWebhookEventRepository) Insert(ctx context.Context, event *domain.WebhookEvent) error {
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(mappers.ToGORMWebhookEvent(event)).Error
	if err != nil {
		return fmt.Errorf("failed to audit webhook event %s: %w", event.ID, err)
	}
	return nil
}

func (r *DefaultWebhookEventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	return r.DB.WithContext(ctx).
		Model(&models.WebhookEventModel{}).
		Where("id = ?", eventID).
		Update("processed_at", time.Now()).Error
}

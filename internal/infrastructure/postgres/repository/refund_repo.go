package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultRefundRepository struct {
	DB *gorm.DB
}

func NewDefaultRefundRepository(db *gorm.DB) *DefaultRefundRepository {
	return &DefaultRefundRepository{DB: db}
}

func (r *DefaultRefundRepository) Upsert(ctx context.Context, refund *domain.Refund) error {
	model := mappers.ToGORMRefund(refund)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_refund_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"kind", "amount", "currency",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert refund %s: %w", refund.ProviderRefundID, err)
	}
	return nil
}

func (r *DefaultRefundRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.Refund, error) {
	var refundModels []models.RefundModel
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Find(&refundModels).Error; err != nil {
		return nil, err
	}

	refunds := make([]*domain.Refund, len(refundModels))
	for i := range refundModels {
		refunds[i] = mappers.ToDomainRefund(&refundModels[i])
	}
	return refunds, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultCancellationRepository struct {
	DB *gorm.DB
}

func NewDefaultCancellationRepository(db *gorm.DB) *DefaultCancellationRepository {
	return &DefaultCancellationRepository{DB: db}
}

func (r *DefaultCancellationRepository) Upsert(ctx context.Context, cancellation *domain.Cancellation) error {
	model := mappers.ToGORMCancellation(cancellation)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"refund_amount", "refund_currency", "expires_at",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert cancellation %s: %w", cancellation.ProviderID, err)
	}
	return nil
}

func (r *DefaultCancellationRepository) Confirm(ctx context.Context, providerID string, confirmedAt time.Time) error {
	return r.DB.WithContext(ctx).
		Model(&models.CancellationModel{}).
		Where("provider_id = ?", providerID).
		Update("confirmed_at", confirmedAt).Error
}

func (r *DefaultCancellationRepository) GetByProviderID(ctx context.Context, providerID string) (*domain.Cancellation, error) {
	var model models.CancellationModel
	err := r.DB.WithContext(ctx).First(&model, "provider_id = ?", providerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainCancellation(&model), nil
}

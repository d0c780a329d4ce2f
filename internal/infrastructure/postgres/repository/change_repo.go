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

type DefaultChangeRepository struct {
	DB *gorm.DB
}

func NewDefaultChangeRepository(db *gorm.DB) *DefaultChangeRepository {
	return &DefaultChangeRepository{DB: db}
}

func (r *DefaultChangeRepository) UpsertChange(ctx context.Context, change *domain.Change) error {
	model := mappers.ToGORMChange(change)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"change_amount", "change_currency", "confirmed_at",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert change %s: %w", change.ProviderID, err)
	}
	return nil
}

func (r *DefaultChangeRepository) UpsertChangeRequest(ctx context.Context, request *domain.ChangeRequest) error {
	model := mappers.ToGORMChangeRequest(request)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_id"}},
		DoNothing: true,
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert change request %s: %w", request.ProviderID, err)
	}
	return nil
}

func (r *DefaultChangeRepository) UpsertChangeOffer(ctx context.Context, offer *domain.ChangeOffer) error {
	model := mappers.ToGORMChangeOffer(offer)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "provider_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"change_amount", "change_currency", "expires_at",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert change offer %s: %w", offer.ProviderID, err)
	}
	return nil
}

func (r *DefaultChangeRepository) ListChangesByOrderID(ctx context.Context, orderID string) ([]*domain.Change, error) {
	var changeModels []models.ChangeModel
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Find(&changeModels).Error; err != nil {
		return nil, err
	}

	changes := make([]*domain.Change, len(changeModels))
	for i := range changeModels {
		changes[i] = mappers.ToDomainChange(&changeModels[i])
	}
	return changes, nil
}

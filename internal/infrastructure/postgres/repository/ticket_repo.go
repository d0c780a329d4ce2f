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

type DefaultTicketDocumentRepository struct {
	DB *gorm.DB
}

func NewDefaultTicketDocumentRepository(db *gorm.DB) *DefaultTicketDocumentRepository {
	return &DefaultTicketDocumentRepository{DB: db}
}

// Upsert is keyed by (order_id, unique_id): redelivery updates the URL in
// place, it never duplicates the row.
func (r *DefaultTicketDocumentRepository) Upsert(ctx context.Context, doc *domain.TicketDocument) error {
	model := mappers.ToGORMTicketDocument(doc)
	if model.ID == "" {
		model.ID = uuid.NewString()
	}

	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "unique_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "type"}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert ticket document %s/%s: %w", doc.OrderID, doc.UniqueID, err)
	}
	return nil
}

func (r *DefaultTicketDocumentRepository) ListByOrderID(ctx context.Context, orderID string) ([]*domain.TicketDocument, error) {
	var docModels []models.TicketDocumentModel
	if err := r.DB.WithContext(ctx).Where("order_id = ?", orderID).Find(&docModels).Error; err != nil {
		return nil, err
	}

	docs := make([]*domain.TicketDocument, len(docModels))
	for i := range docModels {
		docs[i] = mappers.ToDomainTicketDocument(&docModels[i])
	}
	return docs, nil
}

package mappers

import (
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMTicketDocument(doc *domain.TicketDocument) *models.TicketDocumentModel {
	return &models.TicketDocumentModel{
		ID:       doc.ID,
		OrderID:  doc.OrderID,
		Type:     doc.Type,
		UniqueID: doc.UniqueID,
		URL:      doc.URL,
	}
}

func ToDomainTicketDocument(model *models.TicketDocumentModel) *domain.TicketDocument {
	return &domain.TicketDocument{
		ID:        model.ID,
		OrderID:   model.OrderID,
		Type:      model.Type,
		UniqueID:  model.UniqueID,
		URL:       model.URL,
		CreatedAt: model.CreatedAt,
	}
}

package fulfillment

import (
	"context"
	"errors"
	"fmt"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"gorm.io/gorm"
)

// PersistDocuments upserts provider documents with collision-safe identity.
// Sandbox environments return constant placeholder identifiers, so on a
// uniqueness violation the engine falls back first to an id qualified by the
// local order row, then to one namespaced by the provider booking id. A
// document is never silently dropped or attached to the wrong order.
func (uc *DefaultFulfillmentUsecase) PersistDocuments(ctx context.Context, order *domain.Order, docs []domain.ProviderDocument) (int, error) {
	persisted := 0
	for _, providerDoc := range docs {
		doc := &domain.TicketDocument{
			OrderID:  order.ID,
			Type:     providerDoc.Type,
			UniqueID: providerDoc.UniqueIdentifier,
			URL:      providerDoc.URL,
		}

		identity := "provider"
		err := uc.Tickets.Upsert(ctx, doc)
		if isDuplicateKey(err) {
			identity = "order_scoped"
			doc.UniqueID = fmt.Sprintf("%s-%s", providerDoc.UniqueIdentifier, order.ID)
			err = uc.Tickets.Upsert(ctx, doc)
		}
		if isDuplicateKey(err) {
			identity = "booking_namespaced"
			doc.UniqueID = fmt.Sprintf("%s:%s", order.ProviderBookingID, providerDoc.UniqueIdentifier)
			err = uc.Tickets.Upsert(ctx, doc)
		}
		if err != nil {
			return persisted, fmt.Errorf("failed to persist document %s: %w", providerDoc.UniqueIdentifier, err)
		}

		persisted++
		if uc.Metrics != nil {
			uc.Metrics.TicketDocumentsPersisted.WithLabelValues(identity).Inc()
		}
	}
	return persisted, nil
}

func isDuplicateKey(err error) bool {
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, domain.ErrDuplicateKey))
}

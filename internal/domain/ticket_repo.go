package domain

import "context"

type TicketDocumentRepository interface {
	// Upsert is keyed by (OrderID, UniqueID); re-delivery of the same
	// document must not duplicate rows.
	Upsert(ctx context.Context, doc *TicketDocument) error
	ListByOrderID(ctx context.Context, orderID string) ([]*TicketDocument, error)
}

package domain

import "time"

const DocumentTypeElectronicTicket = "electronic_ticket"

// TicketDocument is one issued ticket artifact per passenger/segment.
// Uniqueness is scoped to (OrderID, UniqueID); sandbox environments are known
// to hand out constant placeholder identifiers across orders.
type TicketDocument struct {
	ID        string
	OrderID   string
	Type      string
	UniqueID  string
	URL       string
	CreatedAt time.Time
}

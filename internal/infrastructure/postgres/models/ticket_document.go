package models

import "time"

type TicketDocumentModel struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	OrderID   string    `gorm:"type:uuid;not null;uniqueIndex:idx_order_unique_id,priority:1"`
	Type      string    `gorm:"not null"`
	UniqueID  string    `gorm:"not null;uniqueIndex:idx_order_unique_id,priority:2"`
	URL       string
	CreatedAt time.Time
}

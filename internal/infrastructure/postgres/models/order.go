package models

import (
	"time"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

type OrderModel struct {
	ID                string             `gorm:"primaryKey;type:uuid"`
	ProviderBookingID string             `gorm:"uniqueIndex;not null"`
	OfferID           string
	UserID            string             `gorm:"index"`
	Status            domain.OrderStatus `gorm:"index:idx_status"`
	Amount            string
	Currency          string
	PaymentProvider   string
	PaymentIntentID   *string            `gorm:"uniqueIndex"`
	PaymentStatus     domain.PaymentStatus
	PaidAt            *time.Time
	AwaitingPayment   bool               `gorm:"index:idx_awaiting_deadline"`
	PaymentRequiredBy *time.Time         `gorm:"index:idx_awaiting_deadline"`
	LiveMode          bool
	LastEventType     string
	EticketReady      bool
	TicketDocuments   []TicketDocumentModel `gorm:"foreignKey:OrderID;references:ID"`
	Refunds           []RefundModel         `gorm:"foreignKey:OrderID;references:ID"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

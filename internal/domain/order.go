package domain

import "time"

type OrderStatus string

const (
	StatusUnknown           OrderStatus = ""
	StatusAwaitingPayment   OrderStatus = "AWAITING_PAYMENT"
	StatusConfirmed         OrderStatus = "CONFIRMED"
	StatusPaid              OrderStatus = "PAID"
	StatusChanged           OrderStatus = "CHANGED"
	StatusCancelled         OrderStatus = "CANCELLED"
	StatusRefunded          OrderStatus = "REFUNDED"
	StatusPartiallyRefunded OrderStatus = "PARTIALLY_REFUNDED"
	StatusPaymentFailed     OrderStatus = "PAYMENT_FAILED"
)

type PaymentStatus string

const (
	PaymentStatusUnknown   PaymentStatus = ""
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

type Order struct {
	ID                string
	ProviderBookingID string
	OfferID           string
	UserID            string
	Status            OrderStatus
	Amount            string
	Currency          string
	PaymentProvider   string
	PaymentIntentID   string
	PaymentStatus     PaymentStatus
	PaidAt            *time.Time
	AwaitingPayment   bool
	PaymentRequiredBy *time.Time
	LiveMode          bool
	LastEventType     string
	EticketReady      bool
	TicketDocuments   []*TicketDocument
	Refunds           []*Refund
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// OrderPatch carries the fields an event snapshot may update. Nil pointers are
// left untouched on merge so out-of-order deltas never blank earlier data.
type OrderPatch struct {
	ProviderBookingID string
	OfferID           *string
	Status            *OrderStatus
	Amount            *string
	Currency          *string
	PaymentStatus     *PaymentStatus
	AwaitingPayment   *bool
	PaymentRequiredBy *time.Time
	LiveMode          *bool
	LastEventType     *string
}

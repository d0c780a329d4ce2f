package domain

import (
	"context"
	"time"
)

// ProviderOrder is the Booking Provider's order detail as consumed here.
type ProviderOrder struct {
	ID                string
	OfferID           string
	Status            string
	TotalAmount       string
	TotalCurrency     string
	AwaitingPayment   bool
	PaymentRequiredBy *time.Time
	LiveMode          bool
	Documents         []ProviderDocument
	RefundableBefore  *time.Time
	Refundable        bool
}

type ProviderCancellation struct {
	ID             string
	OrderID        string
	RefundAmount   string
	RefundCurrency string
	ExpiresAt      *time.Time
	ConfirmedAt    *time.Time
}

type ProviderChangeRequest struct {
	ID      string
	OrderID string
	Offers  []ProviderChangeOffer
}

type ProviderChangeOffer struct {
	ID             string
	ChangeAmount   string
	ChangeCurrency string
	ExpiresAt      *time.Time
}

type BookingProvider interface {
	GetOrder(ctx context.Context, orderID string) (*ProviderOrder, error)
	CreateCancellation(ctx context.Context, orderID string) (*ProviderCancellation, error)
	ConfirmCancellation(ctx context.Context, cancellationID string) (*ProviderCancellation, error)
	GetCancellation(ctx context.Context, cancellationID string) (*ProviderCancellation, error)
	// SettlePayment is idempotency-key protected: retrying with the same key
	// never double-settles.
	SettlePayment(ctx context.Context, orderID, amount, currency, idempotencyKey string) error
	CreateChangeRequest(ctx context.Context, orderID string) (*ProviderChangeRequest, error)
	ListChangeOffers(ctx context.Context, changeRequestID string) ([]ProviderChangeOffer, error)
	ConfirmChangeOffer(ctx context.Context, offerID string) (*ProviderChangeRequest, error)
}

type ProviderIntent struct {
	ID       string
	ChargeID string
	Amount   string
	Currency string
	Status   string
}

type ProviderRefund struct {
	ID       string
	ChargeID string
	Amount   string
	Currency string
	Status   string
}

type PaymentProvider interface {
	CreateIntent(ctx context.Context, orderID, amount, currency, idempotencyKey string) (*ProviderIntent, error)
	GetIntent(ctx context.Context, intentID string) (*ProviderIntent, error)
	// FindIntentByOrder resolves the charge record for an order, or nil when
	// none exists.
	FindIntentByOrder(ctx context.Context, orderID string) (*ProviderIntent, error)
	CreateRefund(ctx context.Context, chargeID, amount, currency, idempotencyKey string) (*ProviderRefund, error)
}

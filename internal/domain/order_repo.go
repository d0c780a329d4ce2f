package domain

import (
	"context"
	"time"
)

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	GetByProviderBookingID(ctx context.Context, providerBookingID string) (*Order, error)
	GetByPaymentIntentID(ctx context.Context, intentID string) (*Order, error)
	// Merge upserts by provider booking id: inserts when unknown, otherwise
	// applies only the patch's non-nil fields. Never regresses fields the
	// patch does not carry.
	Merge(ctx context.Context, patch *OrderPatch, defaults *Order) (*Order, error)
	SetStatus(ctx context.Context, orderID string, status OrderStatus) error
	SetPaymentStatus(ctx context.Context, orderID string, status PaymentStatus) error
	MarkPaid(ctx context.Context, orderID string, provider, intentID string, paidAt time.Time) error
	MarkPaymentLinkage(ctx context.Context, orderID string, provider, intentID string) error
	MarkEticketReady(ctx context.Context, orderID string) error
	FindHoldOrdersPastDeadline(ctx context.Context, now time.Time) ([]*Order, error)
}

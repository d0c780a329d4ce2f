package domain

import (
	"context"
	"time"
)

type CancellationRepository interface {
	// Upsert is keyed by provider id; quote events and confirm events may
	// arrive in either order.
	Upsert(ctx context.Context, cancellation *Cancellation) error
	Confirm(ctx context.Context, providerID string, confirmedAt time.Time) error
	GetByProviderID(ctx context.Context, providerID string) (*Cancellation, error)
}

type ChangeRepository interface {
	UpsertChange(ctx context.Context, change *Change) error
	UpsertChangeRequest(ctx context.Context, request *ChangeRequest) error
	UpsertChangeOffer(ctx context.Context, offer *ChangeOffer) error
	ListChangesByOrderID(ctx context.Context, orderID string) ([]*Change, error)
}

type RefundRepository interface {
	Upsert(ctx context.Context, refund *Refund) error
	ListByOrderID(ctx context.Context, orderID string) ([]*Refund, error)
}

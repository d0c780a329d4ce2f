package domain

import "time"

// Cancellation mirrors the Booking Provider's cancellation quote. Local audit
// only; the provider stays the source of truth for money movement.
type Cancellation struct {
	ID             string
	ProviderID     string
	OrderID        string
	RefundAmount   string
	RefundCurrency string
	ExpiresAt      *time.Time
	ConfirmedAt    *time.Time
	CreatedAt      time.Time
}

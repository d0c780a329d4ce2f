package domain

import "time"

// Local mirrors of the Booking Provider's order-change workflow.
// Write-once, updated on confirm.

type ChangeRequest struct {
	ID         string
	ProviderID string
	OrderID    string
	CreatedAt  time.Time
}

type ChangeOffer struct {
	ID              string
	ProviderID      string
	ChangeRequestID string
	ChangeAmount    string
	ChangeCurrency  string
	ExpiresAt       *time.Time
	CreatedAt       time.Time
}

type Change struct {
	ID             string
	ProviderID     string
	OrderID        string
	ChangeAmount   string
	ChangeCurrency string
	// RawPayload keeps the provider's change document verbatim for
	// airline-initiated changes.
	RawPayload  string
	ConfirmedAt *time.Time
	CreatedAt   time.Time
}

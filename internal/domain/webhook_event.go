package domain

import "time"

// WebhookEvent is the append-only audit row for an inbound provider event.
// The provider event id is the primary key; duplicate inserts are tolerated.
type WebhookEvent struct {
	ID             string
	Type           string
	IdempotencyKey string
	APIVersion     string
	LiveMode       bool
	RemoteCreated  *time.Time
	Payload        []byte
	ProcessedAt    *time.Time
	CreatedAt      time.Time
}

// LedgerKey returns the at-most-once key for the event:
// "type|idempotencyKey" when the provider supplied one, else "event|eventID".
func (e *WebhookEvent) LedgerKey() string {
	if e.IdempotencyKey != "" {
		return e.Type + "|" + e.IdempotencyKey
	}
	return "event|" + e.ID
}

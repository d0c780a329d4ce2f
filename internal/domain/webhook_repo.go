package domain

import "context"

type WebhookEventRepository interface {
	// Insert swallows duplicate primary-key conflicts: redelivered events are
	// audited once and never fail ingestion.
	Insert(ctx context.Context, event *WebhookEvent) error
	MarkProcessed(ctx context.Context, eventID string) error
}

// IdempotencyLedger is the durable at-most-once gate. Existence of a key means
// the business effect already landed.
type IdempotencyLedger interface {
	Seen(ctx context.Context, key string) (bool, error)
	Record(ctx context.Context, key string) error
}

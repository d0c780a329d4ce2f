package models

import "time"

// WebhookEventModel is the append-only ingestion audit. The provider event id
// is the primary key so redelivered events collide instead of duplicating.
type WebhookEventModel struct {
	ID             string `gorm:"primaryKey"`
	Type           string `gorm:"index"`
	IdempotencyKey string
	APIVersion     string
	LiveMode       bool
	RemoteCreated  *time.Time
	Payload        []byte     `gorm:"type:jsonb"`
	ProcessedAt    *time.Time
	CreatedAt      time.Time
}

// IdempotencyKeyModel existence alone is the at-most-once gate.
type IdempotencyKeyModel struct {
	Key       string `gorm:"primaryKey"`
	CreatedAt time.Time
}

package models

import "time"

type CancellationModel struct {
	ID             string `gorm:"primaryKey;type:uuid"`
	ProviderID     string `gorm:"uniqueIndex;not null"`
	OrderID        string `gorm:"type:uuid;index"`
	RefundAmount   string
	RefundCurrency string
	ExpiresAt      *time.Time
	ConfirmedAt    *time.Time
	CreatedAt      time.Time
}

type ChangeRequestModel struct {
	ID         string `gorm:"primaryKey;type:uuid"`
	ProviderID string `gorm:"uniqueIndex;not null"`
	OrderID    string `gorm:"type:uuid;index"`
	CreatedAt  time.Time
}

type ChangeOfferModel struct {
	ID              string `gorm:"primaryKey;type:uuid"`
	ProviderID      string `gorm:"uniqueIndex;not null"`
	ChangeRequestID string `gorm:"index"`
	ChangeAmount    string
	ChangeCurrency  string
	ExpiresAt       *time.Time
	CreatedAt       time.Time
}

type ChangeModel struct {
	ID             string `gorm:"primaryKey;type:uuid"`
	ProviderID     string `gorm:"uniqueIndex;not null"`
	OrderID        string `gorm:"type:uuid;index"`
	ChangeAmount   string
	ChangeCurrency string
	RawPayload     string `gorm:"type:jsonb"`
	ConfirmedAt    *time.Time
	CreatedAt      time.Time
}

package models

import (
	"time"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

type RefundModel struct {
	ID               string `gorm:"primaryKey;type:uuid"`
	OrderID          string `gorm:"type:uuid;index"`
	ProviderRefundID string `gorm:"uniqueIndex;not null"`
	ChargeID         string `gorm:"index"`
	Kind             domain.RefundKind
	Amount           string
	Currency         string
	CreatedAt        time.Time
}

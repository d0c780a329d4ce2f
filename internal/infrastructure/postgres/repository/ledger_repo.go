package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultIdempotencyLedger implements the at-most-once gate on a single
// key column; existence of the row is the whole contract.
type DefaultIdempotencyLedger struct {
	DB *gorm.DB
}

func NewDefaultIdempotencyLedger(db *gorm.DB) *DefaultIdempotencyLedger {
	return &DefaultIdempotencyLedger{DB: db}
}

func (l *DefaultIdempotencyLedger) Seen(ctx context.Context, key string) (bool, error) {
	var entry models.IdempotencyKeyModel
	err := l.DB.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read idempotency ledger: %w", err)
	}
	return true, nil
}

func (l *DefaultIdempotencyLedger) Record(ctx context.Context, key string) error {
	err := l.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoNothing: true,
	}).Create(&models.IdempotencyKeyModel{Key: key}).Error
	if err != nil {
		return fmt.Errorf("failed to record idempotency key: %w", err)
	}
	return nil
}

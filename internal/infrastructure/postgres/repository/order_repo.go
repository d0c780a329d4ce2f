package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/mappers"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultOrderRepository struct {
	DB *gorm.DB
}

func NewDefaultOrderRepository(db *gorm.DB) *DefaultOrderRepository {
	return &DefaultOrderRepository{DB: db}
}

func (r *DefaultOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.DB.WithContext(ctx).Create(mappers.ToGORMOrder(order)).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *DefaultOrderRepository) GetByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var model models.OrderModel
	err := r.DB.WithContext(ctx).
		Preload("TicketDocuments").
		Preload("Refunds").
		First(&model, "id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainOrder(&model), nil
}

func (r *DefaultOrderRepository) GetByProviderBookingID(ctx context.Context, providerBookingID string) (*domain.Order, error) {
	var model models.OrderModel
	err := r.DB.WithContext(ctx).
		Preload("TicketDocuments").
		Preload("Refunds").
		First(&model, "provider_booking_id = ?", providerBookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainOrder(&model), nil
}

func (r *DefaultOrderRepository) GetByPaymentIntentID(ctx context.Context, intentID string) (*domain.Order, error) {
	var model models.OrderModel
	err := r.DB.WithContext(ctx).First(&model, "payment_intent_id = ?", intentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return mappers.ToDomainOrder(&model), nil
}

// Merge upserts by provider booking id so the webhook processor, poller and
// payment orchestrator can mutate the same row concurrently without
// read-modify-write races. Non-nil patch fields win; a terminal status is
// never overwritten by a non-terminal one.
func (r *DefaultOrderRepository) Merge(ctx context.Context, patch *domain.OrderPatch, defaults *domain.Order) (*domain.Order, error) {
	assignments := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if patch.OfferID != nil {
		assignments["offer_id"] = *patch.OfferID
	}
	if patch.Status != nil {
		assignments["status"] = gorm.Expr(
			"CASE WHEN order_models.status IN ('CANCELLED','REFUNDED') THEN order_models.status ELSE ? END",
			string(*patch.Status),
		)
	}
	if patch.Amount != nil {
		assignments["amount"] = *patch.Amount
	}
	if patch.Currency != nil {
		assignments["currency"] = *patch.Currency
	}
	if patch.PaymentStatus != nil {
		assignments["payment_status"] = string(*patch.PaymentStatus)
	}
	if patch.AwaitingPayment != nil {
		assignments["awaiting_payment"] = *patch.AwaitingPayment
	}
	if patch.PaymentRequiredBy != nil {
		assignments["payment_required_by"] = *patch.PaymentRequiredBy
	}
	if patch.LiveMode != nil {
		assignments["live_mode"] = *patch.LiveMode
	}
	if patch.LastEventType != nil {
		assignments["last_event_type"] = *patch.LastEventType
	}

	model := mappers.ToGORMOrder(defaults)
	err := r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider_booking_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(model).Error
	if err != nil {
		return nil, fmt.Errorf("failed to merge order %s: %w", patch.ProviderBookingID, err)
	}

	return r.GetByProviderBookingID(ctx, patch.ProviderBookingID)
}

func (r *DefaultOrderRepository) SetStatus(ctx context.Context, orderID string, status domain.OrderStatus) error {
	return r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

func (r *DefaultOrderRepository) SetPaymentStatus(ctx context.Context, orderID string, status domain.PaymentStatus) error {
	return r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Update("payment_status", status).Error
}

func (r *DefaultOrderRepository) MarkPaid(ctx context.Context, orderID string, provider, intentID string, paidAt time.Time) error {
	return r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_provider":  provider,
			"payment_intent_id": intentID,
			"payment_status":    domain.PaymentStatusPaid,
			"paid_at":           paidAt,
			"awaiting_payment":  false,
			"status":            domain.StatusPaid,
		}).Error
}

// MarkPaymentLinkage persists provider/intent linkage without touching the
// money state. Used for instant orders the booking provider settled itself.
func (r *DefaultOrderRepository) MarkPaymentLinkage(ctx context.Context, orderID string, provider, intentID string) error {
	return r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"payment_provider":  provider,
			"payment_intent_id": intentID,
		}).Error
}

func (r *DefaultOrderRepository) MarkEticketReady(ctx context.Context, orderID string) error {
	return r.DB.WithContext(ctx).
		Model(&models.OrderModel{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"eticket_ready": true,
			"status": gorm.Expr(
				"CASE WHEN order_models.status IN ('CANCELLED','REFUNDED','PAID') THEN order_models.status ELSE ? END",
				string(domain.StatusConfirmed),
			),
		}).Error
}

func (r *DefaultOrderRepository) FindHoldOrdersPastDeadline(ctx context.Context, now time.Time) ([]*domain.Order, error) {
	var orderModels []models.OrderModel
	err := r.DB.WithContext(ctx).
		Where("awaiting_payment = ? AND payment_required_by IS NOT NULL AND payment_required_by < ? AND payment_status <> ?",
			true, now, domain.PaymentStatusPaid).
		Find(&orderModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired hold orders: %w", err)
	}

	orders := make([]*domain.Order, len(orderModels))
	for i := range orderModels {
		orders[i] = mappers.ToDomainOrder(&orderModels[i])
	}
	return orders, nil
}

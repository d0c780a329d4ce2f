package mappers

import (
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMOrder(order *domain.Order) *models.OrderModel {
	var intentID *string
	if order.PaymentIntentID != "" {
		id := order.PaymentIntentID
		intentID = &id
	}

	return &models.OrderModel{
		ID:                order.ID,
		ProviderBookingID: order.ProviderBookingID,
		OfferID:           order.OfferID,
		UserID:            order.UserID,
		Status:            order.Status,
		Amount:            order.Amount,
		Currency:          order.Currency,
		PaymentProvider:   order.PaymentProvider,
		PaymentIntentID:   intentID,
		PaymentStatus:     order.PaymentStatus,
		PaidAt:            order.PaidAt,
		AwaitingPayment:   order.AwaitingPayment,
		PaymentRequiredBy: order.PaymentRequiredBy,
		LiveMode:          order.LiveMode,
		LastEventType:     order.LastEventType,
		EticketReady:      order.EticketReady,
	}
}

func ToDomainOrder(model *models.OrderModel) *domain.Order {
	intentID := ""
	if model.PaymentIntentID != nil {
		intentID = *model.PaymentIntentID
	}

	order := &domain.Order{
		ID:                model.ID,
		ProviderBookingID: model.ProviderBookingID,
		OfferID:           model.OfferID,
		UserID:            model.UserID,
		Status:            model.Status,
		Amount:            model.Amount,
		Currency:          model.Currency,
		PaymentProvider:   model.PaymentProvider,
		PaymentIntentID:   intentID,
		PaymentStatus:     model.PaymentStatus,
		PaidAt:            model.PaidAt,
		AwaitingPayment:   model.AwaitingPayment,
		PaymentRequiredBy: model.PaymentRequiredBy,
		LiveMode:          model.LiveMode,
		LastEventType:     model.LastEventType,
		EticketReady:      model.EticketReady,
		CreatedAt:         model.CreatedAt,
		UpdatedAt:         model.UpdatedAt,
	}

	for i := range model.TicketDocuments {
		order.TicketDocuments = append(order.TicketDocuments, ToDomainTicketDocument(&model.TicketDocuments[i]))
	}
	for i := range model.Refunds {
		order.Refunds = append(order.Refunds, ToDomainRefund(&model.Refunds[i]))
	}

	return order
}

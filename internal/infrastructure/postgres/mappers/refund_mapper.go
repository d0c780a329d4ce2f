package mappers

import (
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMRefund(refund *domain.Refund) *models.RefundModel {
	return &models.RefundModel{
		ID:               refund.ID,
		OrderID:          refund.OrderID,
		ProviderRefundID: refund.ProviderRefundID,
		ChargeID:         refund.ChargeID,
		Kind:             refund.Kind,
		Amount:           refund.Amount,
		Currency:         refund.Currency,
	}
}

func ToDomainRefund(model *models.RefundModel) *domain.Refund {
	return &domain.Refund{
		ID:               model.ID,
		OrderID:          model.OrderID,
		ProviderRefundID: model.ProviderRefundID,
		ChargeID:         model.ChargeID,
		Kind:             model.Kind,
		Amount:           model.Amount,
		Currency:         model.Currency,
		CreatedAt:        model.CreatedAt,
	}
}

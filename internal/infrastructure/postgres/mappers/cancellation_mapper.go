package mappers

import (
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/postgres/models"
)

func ToGORMCancellation(c *domain.Cancellation) *models.CancellationModel {
	return &models.CancellationModel{
		ID:             c.ID,
		ProviderID:     c.ProviderID,
		OrderID:        c.OrderID,
		RefundAmount:   c.RefundAmount,
		RefundCurrency: c.RefundCurrency,
		ExpiresAt:      c.ExpiresAt,
		ConfirmedAt:    c.ConfirmedAt,
	}
}

func ToDomainCancellation(model *models.CancellationModel) *domain.Cancellation {
	return &domain.Cancellation{
		ID:             model.ID,
		ProviderID:     model.ProviderID,
		OrderID:        model.OrderID,
		RefundAmount:   model.RefundAmount,
		RefundCurrency: model.RefundCurrency,
		ExpiresAt:      model.ExpiresAt,
		ConfirmedAt:    model.ConfirmedAt,
		CreatedAt:      model.CreatedAt,
	}
}

func ToGORMChange(c *domain.Change) *models.ChangeModel {
	return &models.ChangeModel{
		ID:             c.ID,
		ProviderID:     c.ProviderID,
		OrderID:        c.OrderID,
		ChangeAmount:   c.ChangeAmount,
		ChangeCurrency: c.ChangeCurrency,
		RawPayload:     c.RawPayload,
		ConfirmedAt:    c.ConfirmedAt,
	}
}

func ToDomainChange(model *models.ChangeModel) *domain.Change {
	return &domain.Change{
		ID:             model.ID,
		ProviderID:     model.ProviderID,
		OrderID:        model.OrderID,
		ChangeAmount:   model.ChangeAmount,
		ChangeCurrency: model.ChangeCurrency,
		RawPayload:     model.RawPayload,
		ConfirmedAt:    model.ConfirmedAt,
		CreatedAt:      model.CreatedAt,
	}
}

func ToGORMChangeRequest(r *domain.ChangeRequest) *models.ChangeRequestModel {
	return &models.ChangeRequestModel{
		ID:         r.ID,
		ProviderID: r.ProviderID,
		OrderID:    r.OrderID,
	}
}

func ToGORMChangeOffer(o *domain.ChangeOffer) *models.ChangeOfferModel {
	return &models.ChangeOfferModel{
		ID:              o.ID,
		ProviderID:      o.ProviderID,
		ChangeRequestID: o.ChangeRequestID,
		ChangeAmount:    o.ChangeAmount,
		ChangeCurrency:  o.ChangeCurrency,
		ExpiresAt:       o.ExpiresAt,
	}
}

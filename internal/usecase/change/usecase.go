package change

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

type ChangeUsecase interface {
	RequestChange(ctx context.Context, orderID string) (*domain.ChangeRequest, []*domain.ChangeOffer, error)
	ConfirmOffer(ctx context.Context, offerID string) error
}

type DefaultChangeUsecase struct {
	Orders  domain.OrderRepository
	Changes domain.ChangeRepository
	Booking domain.BookingProvider
}

func NewDefaultChangeUsecase(
	orders domain.OrderRepository,
	changes domain.ChangeRepository,
	booking domain.BookingProvider) *DefaultChangeUsecase {

	return &DefaultChangeUsecase{Orders: orders, Changes: changes, Booking: booking}
}

// RequestChange opens an order-change request with the Booking Provider and
// mirrors the request and its offers. The provider may return offers inline
// or require a follow-up list call.
func (uc *DefaultChangeUsecase) RequestChange(ctx context.Context, orderID string) (*domain.ChangeRequest, []*domain.ChangeOffer, error) {
	order, err := uc.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}

	providerRequest, err := uc.Booking.CreateChangeRequest(ctx, order.ProviderBookingID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create change request for order %s: %w", orderID, err)
	}

	request := &domain.ChangeRequest{
		ID:         uuid.NewString(),
		ProviderID: providerRequest.ID,
		OrderID:    order.ID,
	}
	if err := uc.Changes.UpsertChangeRequest(ctx, request); err != nil {
		return nil, nil, fmt.Errorf("failed to mirror change request %s: %w", providerRequest.ID, err)
	}

	providerOffers := providerRequest.Offers
	if len(providerOffers) == 0 {
		providerOffers, err = uc.Booking.ListChangeOffers(ctx, providerRequest.ID)
		if err != nil {
			// The request itself succeeded; offers can be listed again later.
			slog.Warn("failed to list change offers", "change_request_id", providerRequest.ID, "error", err.Error())
		}
	}

	offers := make([]*domain.ChangeOffer, 0, len(providerOffers))
	for _, po := range providerOffers {
		offer := &domain.ChangeOffer{
			ID:              uuid.NewString(),
			ProviderID:      po.ID,
			ChangeRequestID: providerRequest.ID,
			ChangeAmount:    po.ChangeAmount,
			ChangeCurrency:  po.ChangeCurrency,
			ExpiresAt:       po.ExpiresAt,
		}
		if err := uc.Changes.UpsertChangeOffer(ctx, offer); err != nil {
			return nil, nil, fmt.Errorf("failed to mirror change offer %s: %w", po.ID, err)
		}
		offers = append(offers, offer)
	}

	return request, offers, nil
}

// ConfirmOffer accepts one of the provider's change offers and records the
// resulting change against the order.
func (uc *DefaultChangeUsecase) ConfirmOffer(ctx context.Context, offerID string) error {
	confirmed, err := uc.Booking.ConfirmChangeOffer(ctx, offerID)
	if err != nil {
		return fmt.Errorf("failed to confirm change offer %s: %w", offerID, err)
	}

	order, err := uc.Orders.GetByProviderBookingID(ctx, confirmed.OrderID)
	if err != nil {
		return fmt.Errorf("confirmed change for unknown booking %s: %w", confirmed.OrderID, err)
	}

	now := time.Now()
	chg := &domain.Change{
		ID:          uuid.NewString(),
		ProviderID:  confirmed.ID,
		OrderID:     order.ID,
		ConfirmedAt: &now,
	}
	for _, offer := range confirmed.Offers {
		if offer.ID == offerID {
			chg.ChangeAmount = offer.ChangeAmount
			chg.ChangeCurrency = offer.ChangeCurrency
		}
	}
	if err := uc.Changes.UpsertChange(ctx, chg); err != nil {
		return fmt.Errorf("failed to record change %s: %w", confirmed.ID, err)
	}

	return uc.Orders.SetStatus(ctx, order.ID, domain.StatusChanged)
}

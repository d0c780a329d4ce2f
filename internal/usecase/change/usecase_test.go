package change

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

type fakeOrders struct {
	byID     map[string]*domain.Order
	statuses map[string]domain.OrderStatus
}

func (s *fakeOrders) Create(_ context.Context, order *domain.Order) error {
	s.byID[order.ID] = order
	return nil
}

func (s *fakeOrders) GetByID(_ context.Context, orderID string) (*domain.Order, error) {
	if o, ok := s.byID[orderID]; ok {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (s *fakeOrders) GetByProviderBookingID(_ context.Context, id string) (*domain.Order, error) {
	for _, o := range s.byID {
		if o.ProviderBookingID == id {
			return o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (s *fakeOrders) GetByPaymentIntentID(_ context.Context, _ string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (s *fakeOrders) Merge(_ context.Context, _ *domain.OrderPatch, defaults *domain.Order) (*domain.Order, error) {
	return defaults, nil
}

func (s *fakeOrders) SetStatus(_ context.Context, orderID string, status domain.OrderStatus) error {
	if s.statuses == nil {
		s.statuses = map[string]domain.OrderStatus{}
	}
	s.statuses[orderID] = status
	return nil
}

func (s *fakeOrders) SetPaymentStatus(_ context.Context, _ string, _ domain.PaymentStatus) error {
	return nil
}
func (s *fakeOrders) MarkPaid(_ context.Context, _, _, _ string, _ time.Time) error { return nil }
func (s *fakeOrders) MarkPaymentLinkage(_ context.Context, _, _, _ string) error    { return nil }
func (s *fakeOrders) MarkEticketReady(_ context.Context, _ string) error            { return nil }
func (s *fakeOrders) FindHoldOrdersPastDeadline(_ context.Context, _ time.Time) ([]*domain.Order, error) {
	return nil, nil
}

type fakeChanges struct {
	requests []*domain.ChangeRequest
	offers   []*domain.ChangeOffer
	changes  []*domain.Change
}

func (s *fakeChanges) UpsertChange(_ context.Context, c *domain.Change) error {
	s.changes = append(s.changes, c)
	return nil
}
func (s *fakeChanges) UpsertChangeRequest(_ context.Context, r *domain.ChangeRequest) error {
	s.requests = append(s.requests, r)
	return nil
}
func (s *fakeChanges) UpsertChangeOffer(_ context.Context, o *domain.ChangeOffer) error {
	s.offers = append(s.offers, o)
	return nil
}
func (s *fakeChanges) ListChangesByOrderID(_ context.Context, _ string) ([]*domain.Change, error) {
	return nil, nil
}

type fakeBooking struct {
	request *domain.ProviderChangeRequest
}

func (p *fakeBooking) GetOrder(_ context.Context, _ string) (*domain.ProviderOrder, error) {
	return nil, errors.New("not implemented")
}
func (p *fakeBooking) CreateCancellation(_ context.Context, _ string) (*domain.ProviderCancellation, error) {
	return nil, errors.New("not implemented")
}
func (p *fakeBooking) ConfirmCancellation(_ context.Context, _ string) (*domain.ProviderCancellation, error) {
	return nil, errors.New("not implemented")
}
func (p *fakeBooking) GetCancellation(_ context.Context, _ string) (*domain.ProviderCancellation, error) {
	return nil, errors.New("not implemented")
}
func (p *fakeBooking) SettlePayment(_ context.Context, _, _, _, _ string) error {
	return errors.New("not implemented")
}
func (p *fakeBooking) CreateChangeRequest(_ context.Context, _ string) (*domain.ProviderChangeRequest, error) {
	return p.request, nil
}
func (p *fakeBooking) ListChangeOffers(_ context.Context, _ string) ([]domain.ProviderChangeOffer, error) {
	return p.request.Offers, nil
}
func (p *fakeBooking) ConfirmChangeOffer(_ context.Context, _ string) (*domain.ProviderChangeRequest, error) {
	return p.request, nil
}

func TestRequestChangeMirrorsRequestAndOffers(t *testing.T) {
	orders := &fakeOrders{byID: map[string]*domain.Order{
		"o1": {ID: "o1", ProviderBookingID: "ord_b1"},
	}}
	changes := &fakeChanges{}
	booking := &fakeBooking{request: &domain.ProviderChangeRequest{
		ID:      "ocr_req_1",
		OrderID: "ord_b1",
		Offers: []domain.ProviderChangeOffer{
			{ID: "oco_1", ChangeAmount: "25.00", ChangeCurrency: "EUR"},
			{ID: "oco_2", ChangeAmount: "40.00", ChangeCurrency: "EUR"},
		},
	}}

	uc := NewDefaultChangeUsecase(orders, changes, booking)
	request, offers, err := uc.RequestChange(context.Background(), "o1")
	if err != nil {
		t.Fatalf("request change: %v", err)
	}

	if request.ProviderID != "ocr_req_1" || request.OrderID != "o1" {
		t.Fatalf("request mirror %+v", request)
	}
	if len(offers) != 2 || len(changes.offers) != 2 {
		t.Fatalf("expected 2 mirrored offers, got %d/%d", len(offers), len(changes.offers))
	}
	if changes.offers[0].ChangeRequestID != "ocr_req_1" {
		t.Fatalf("offer not linked to request: %+v", changes.offers[0])
	}
}

func TestRequestChangeUnknownOrder(t *testing.T) {
	uc := NewDefaultChangeUsecase(&fakeOrders{byID: map[string]*domain.Order{}}, &fakeChanges{}, &fakeBooking{})
	if _, _, err := uc.RequestChange(context.Background(), "ghost"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestConfirmOfferRecordsChange(t *testing.T) {
	orders := &fakeOrders{byID: map[string]*domain.Order{
		"o1": {ID: "o1", ProviderBookingID: "ord_b1"},
	}}
	changes := &fakeChanges{}
	booking := &fakeBooking{request: &domain.ProviderChangeRequest{
		ID:      "ocr_req_1",
		OrderID: "ord_b1",
		Offers: []domain.ProviderChangeOffer{
			{ID: "oco_1", ChangeAmount: "25.00", ChangeCurrency: "EUR"},
		},
	}}

	uc := NewDefaultChangeUsecase(orders, changes, booking)
	if err := uc.ConfirmOffer(context.Background(), "oco_1"); err != nil {
		t.Fatalf("confirm offer: %v", err)
	}

	if len(changes.changes) != 1 {
		t.Fatalf("change row not recorded")
	}
	chg := changes.changes[0]
	if chg.OrderID != "o1" || chg.ChangeAmount != "25.00" || chg.ConfirmedAt == nil {
		t.Fatalf("change %+v", chg)
	}
	if orders.statuses["o1"] != domain.StatusChanged {
		t.Fatalf("order not marked CHANGED, got %s", orders.statuses["o1"])
	}
}

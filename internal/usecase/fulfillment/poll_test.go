package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

type fakeOrderStore struct {
	byID         map[string]*domain.Order
	eticketReady map[string]bool
}

func newFakeOrderStore(orders ...*domain.Order) *fakeOrderStore {
	s := &fakeOrderStore{byID: map[string]*domain.Order{}, eticketReady: map[string]bool{}}
	for _, o := range orders {
		s.byID[o.ID] = o
	}
	return s
}

func (s *fakeOrderStore) Create(_ context.Context, order *domain.Order) error {
	s.byID[order.ID] = order
	return nil
}

func (s *fakeOrderStore) GetByID(_ context.Context, orderID string) (*domain.Order, error) {
	if o, ok := s.byID[orderID]; ok {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (s *fakeOrderStore) GetByProviderBookingID(_ context.Context, id string) (*domain.Order, error) {
	for _, o := range s.byID {
		if o.ProviderBookingID == id {
			return o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (s *fakeOrderStore) GetByPaymentIntentID(_ context.Context, _ string) (*domain.Order, error) {
	return nil, domain.ErrOrderNotFound
}

func (s *fakeOrderStore) Merge(_ context.Context, _ *domain.OrderPatch, defaults *domain.Order) (*domain.Order, error) {
	return defaults, nil
}

func (s *fakeOrderStore) SetStatus(_ context.Context, _ string, _ domain.OrderStatus) error {
	return nil
}

func (s *fakeOrderStore) SetPaymentStatus(_ context.Context, _ string, _ domain.PaymentStatus) error {
	return nil
}

func (s *fakeOrderStore) MarkPaid(_ context.Context, _, _, _ string, _ time.Time) error {
	return nil
}

func (s *fakeOrderStore) MarkPaymentLinkage(_ context.Context, _, _, _ string) error {
	return nil
}

func (s *fakeOrderStore) MarkEticketReady(_ context.Context, orderID string) error {
	s.eticketReady[orderID] = true
	return nil
}

func (s *fakeOrderStore) FindHoldOrdersPastDeadline(_ context.Context, _ time.Time) ([]*domain.Order, error) {
	return nil, nil
}

// fakeTicketStore enforces global uniqueness on UniqueID, the way sandbox
// placeholder identifiers collide across orders.
type fakeTicketStore struct {
	rows map[string]*domain.TicketDocument // UniqueID -> row
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{rows: map[string]*domain.TicketDocument{}}
}

func (s *fakeTicketStore) Upsert(_ context.Context, doc *domain.TicketDocument) error {
	if existing, ok := s.rows[doc.UniqueID]; ok {
		if existing.OrderID != doc.OrderID {
			return domain.ErrDuplicateKey
		}
		*existing = *doc
		return nil
	}
	cp := *doc
	s.rows[doc.UniqueID] = &cp
	return nil
}

func (s *fakeTicketStore) ListByOrderID(_ context.Context, orderID string) ([]*domain.TicketDocument, error) {
	var out []*domain.TicketDocument
	for _, row := range s.rows {
		if row.OrderID == orderID {
			out = append(out, row)
		}
	}
	return out, nil
}

type scheduledJob struct {
	job   domain.PollJob
	delay time.Duration
}

type fakeScheduler struct {
	requeued  []scheduledJob
	completed []domain.PollJob
}

func (s *fakeScheduler) Enqueue(_ context.Context, job domain.PollJob, delay time.Duration) error {
	s.requeued = append(s.requeued, scheduledJob{job: job, delay: delay})
	return nil
}

func (s *fakeScheduler) Requeue(_ context.Context, job domain.PollJob, delay time.Duration) error {
	s.requeued = append(s.requeued, scheduledJob{job: job, delay: delay})
	return nil
}

func (s *fakeScheduler) Complete(_ context.Context, job domain.PollJob) error {
	s.completed = append(s.completed, job)
	return nil
}

type fakeBookingProvider struct {
	orders map[string]*domain.ProviderOrder
	err    error
}

func (p *fakeBookingProvider) GetOrder(_ context.Context, orderID string) (*domain.ProviderOrder, error) {
	if p.err != nil {
		return nil, p.err
	}
	if o, ok := p.orders[orderID]; ok {
		return o, nil
	}
	return nil, fmt.Errorf("provider: order %s not found", orderID)
}

func (p *fakeBookingProvider) CreateCancellation(_ context.Context, _ string) (*domain.ProviderCancellation, error) {
	return nil, errors.New("not implemented")
}
func (p *fakeBookingProvider) ConfirmCancellation(_ context.Context, _ string) (*domain.ProviderCancellation, error) {
	return nil, errors.New("not implemented")
}
func (p *fakeBookingProvider) GetCancellation(_ context.Context, _ string) (*domain.ProviderCancellation, error) {
	return nil, errors.New("not implemented")
}
func (p *fakeBookingProvider) SettlePayment(_ context.Context, _, _, _, _ string) error {
	return errors.New("not implemented")
}
func (p *fakeBookingProvider) CreateChangeRequest(_ context.Context, _ string) (*domain.ProviderChangeRequest, error) {
	return nil, errors.New("not implemented")
}
func (p *fakeBookingProvider) ListChangeOffers(_ context.Context, _ string) ([]domain.ProviderChangeOffer, error) {
	return nil, errors.New("not implemented")
}
func (p *fakeBookingProvider) ConfirmChangeOffer(_ context.Context, _ string) (*domain.ProviderChangeRequest, error) {
	return nil, errors.New("not implemented")
}

func testOrder(id, bookingID string) *domain.Order {
	return &domain.Order{ID: id, ProviderBookingID: bookingID, Status: domain.StatusConfirmed}
}

func TestPollPersistsDocumentsAndCompletes(t *testing.T) {
	order := testOrder("o1", "ord_b1")
	orders := newFakeOrderStore(order)
	tickets := newFakeTicketStore()
	scheduler := &fakeScheduler{}
	booking := &fakeBookingProvider{orders: map[string]*domain.ProviderOrder{
		"ord_b1": {ID: "ord_b1", Documents: []domain.ProviderDocument{
			{Type: domain.DocumentTypeElectronicTicket, UniqueIdentifier: "160-001", URL: "https://t/1"},
			{Type: "itinerary", UniqueIdentifier: "skip-me"},
		}},
	}}

	uc := NewDefaultFulfillmentUsecase(orders, tickets, booking, scheduler, nil)
	if err := uc.Poll(context.Background(), domain.PollJob{OrderID: "o1", Attempt: 3}); err != nil {
		t.Fatalf("poll: %v", err)
	}

	docs, _ := tickets.ListByOrderID(context.Background(), "o1")
	if len(docs) != 1 {
		t.Fatalf("expected only the electronic ticket persisted, got %d", len(docs))
	}
	if !orders.eticketReady["o1"] {
		t.Fatalf("order not marked eticket-ready")
	}
	if len(scheduler.completed) != 1 {
		t.Fatalf("chain must complete, completed=%d", len(scheduler.completed))
	}
	if len(scheduler.requeued) != 0 {
		t.Fatalf("fulfilled chain must not requeue")
	}
}

func TestPollRequeuesWithBackoff(t *testing.T) {
	order := testOrder("o1", "ord_b1")
	scheduler := &fakeScheduler{}
	booking := &fakeBookingProvider{orders: map[string]*domain.ProviderOrder{
		"ord_b1": {ID: "ord_b1"},
	}}

	uc := NewDefaultFulfillmentUsecase(newFakeOrderStore(order), newFakeTicketStore(), booking, scheduler, nil)

	for _, tc := range []struct {
		attempt int
		delay   time.Duration
	}{
		{1, 5 * time.Second},
		{2, 8 * time.Second},
		{3, 12800 * time.Millisecond},
		{10, 60 * time.Second},
	} {
		scheduler.requeued = nil
		if err := uc.Poll(context.Background(), domain.PollJob{OrderID: "o1", Attempt: tc.attempt}); err != nil {
			t.Fatalf("attempt %d: %v", tc.attempt, err)
		}
		if len(scheduler.requeued) != 1 {
			t.Fatalf("attempt %d: expected requeue", tc.attempt)
		}
		got := scheduler.requeued[0]
		if got.job.Attempt != tc.attempt+1 {
			t.Fatalf("attempt %d: next attempt %d", tc.attempt, got.job.Attempt)
		}
		if got.delay != tc.delay {
			t.Fatalf("attempt %d: delay %v, want %v", tc.attempt, got.delay, tc.delay)
		}
	}
}

func TestPollGivesUpAfterAttemptBudget(t *testing.T) {
	order := testOrder("o1", "ord_b1")
	scheduler := &fakeScheduler{}
	booking := &fakeBookingProvider{orders: map[string]*domain.ProviderOrder{"ord_b1": {ID: "ord_b1"}}}

	uc := NewDefaultFulfillmentUsecase(newFakeOrderStore(order), newFakeTicketStore(), booking, scheduler, nil)
	err := uc.Poll(context.Background(), domain.PollJob{OrderID: "o1", Attempt: domain.MaxPollAttempts})
	if err != nil {
		t.Fatalf("exhaustion is not an error: %v", err)
	}
	if len(scheduler.requeued) != 0 {
		t.Fatalf("exhausted chain must not requeue")
	}
	if len(scheduler.completed) != 1 {
		t.Fatalf("exhausted chain must release the guard")
	}
}

func TestPollFetchErrorRequeues(t *testing.T) {
	order := testOrder("o1", "ord_b1")
	scheduler := &fakeScheduler{}
	booking := &fakeBookingProvider{err: errors.New("502 bad gateway")}

	uc := NewDefaultFulfillmentUsecase(newFakeOrderStore(order), newFakeTicketStore(), booking, scheduler, nil)
	if err := uc.Poll(context.Background(), domain.PollJob{OrderID: "o1", Attempt: 1}); err != nil {
		t.Fatalf("transient fetch error must requeue, not fail: %v", err)
	}
	if len(scheduler.requeued) != 1 {
		t.Fatalf("expected requeue after fetch error")
	}
}

func TestPollMissingOrderCompletesWithError(t *testing.T) {
	scheduler := &fakeScheduler{}
	uc := NewDefaultFulfillmentUsecase(newFakeOrderStore(), newFakeTicketStore(), &fakeBookingProvider{}, scheduler, nil)

	if err := uc.Poll(context.Background(), domain.PollJob{OrderID: "ghost", Attempt: 1}); err == nil {
		t.Fatalf("missing order must surface an error")
	}
	if len(scheduler.completed) != 1 {
		t.Fatalf("missing order must still release the guard")
	}
}

func TestPersistDocumentsCollisionFallback(t *testing.T) {
	tickets := newFakeTicketStore()
	uc := NewDefaultFulfillmentUsecase(newFakeOrderStore(), tickets, &fakeBookingProvider{}, &fakeScheduler{}, nil)

	first := testOrder("o1", "ord_b1")
	second := testOrder("o2", "ord_b2")
	// Sandbox placeholder: both orders report the same identifier.
	docs := []domain.ProviderDocument{{Type: domain.DocumentTypeElectronicTicket, UniqueIdentifier: "0000000000000"}}

	if _, err := uc.PersistDocuments(context.Background(), first, docs); err != nil {
		t.Fatalf("first order: %v", err)
	}
	if _, err := uc.PersistDocuments(context.Background(), second, docs); err != nil {
		t.Fatalf("second order: %v", err)
	}

	firstDocs, _ := tickets.ListByOrderID(context.Background(), "o1")
	secondDocs, _ := tickets.ListByOrderID(context.Background(), "o2")
	if len(firstDocs) != 1 || len(secondDocs) != 1 {
		t.Fatalf("each order must keep its own document, got %d and %d", len(firstDocs), len(secondDocs))
	}
	if secondDocs[0].UniqueID == "0000000000000" {
		t.Fatalf("colliding identifier must be re-qualified, got %q", secondDocs[0].UniqueID)
	}

	// Redelivery of the first order's document stays a single row.
	if _, err := uc.PersistDocuments(context.Background(), first, docs); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	firstDocs, _ = tickets.ListByOrderID(context.Background(), "o1")
	if len(firstDocs) != 1 {
		t.Fatalf("redelivery duplicated the document: %d rows", len(firstDocs))
	}
}

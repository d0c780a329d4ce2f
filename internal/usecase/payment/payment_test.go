package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
)

type fakeOrders struct {
	byID map[string]*domain.Order
}

func newFakeOrders(orders ...*domain.Order) *fakeOrders {
	s := &fakeOrders{byID: map[string]*domain.Order{}}
	for _, o := range orders {
		s.byID[o.ID] = o
	}
	return s
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

func (s *fakeOrders) GetByPaymentIntentID(_ context.Context, intentID string) (*domain.Order, error) {
	for _, o := range s.byID {
		if o.PaymentIntentID == intentID {
			return o, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (s *fakeOrders) Merge(_ context.Context, _ *domain.OrderPatch, defaults *domain.Order) (*domain.Order, error) {
	return defaults, nil
}

func (s *fakeOrders) SetStatus(_ context.Context, orderID string, status domain.OrderStatus) error {
	o, ok := s.byID[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (s *fakeOrders) SetPaymentStatus(_ context.Context, orderID string, status domain.PaymentStatus) error {
	o, ok := s.byID[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.PaymentStatus = status
	return nil
}

func (s *fakeOrders) MarkPaid(_ context.Context, orderID, provider, intentID string, paidAt time.Time) error {
	o, ok := s.byID[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = domain.StatusPaid
	o.PaymentStatus = domain.PaymentStatusPaid
	o.PaymentProvider = provider
	o.PaymentIntentID = intentID
	o.PaidAt = &paidAt
	return nil
}

func (s *fakeOrders) MarkPaymentLinkage(_ context.Context, orderID, provider, intentID string) error {
	o, ok := s.byID[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.PaymentProvider = provider
	o.PaymentIntentID = intentID
	return nil
}

func (s *fakeOrders) MarkEticketReady(_ context.Context, orderID string) error {
	o, ok := s.byID[orderID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.EticketReady = true
	return nil
}

func (s *fakeOrders) FindHoldOrdersPastDeadline(_ context.Context, _ time.Time) ([]*domain.Order, error) {
	return nil, nil
}

type fakeRefunds struct {
	rows []*domain.Refund
}

func (s *fakeRefunds) Upsert(_ context.Context, refund *domain.Refund) error {
	for i, r := range s.rows {
		if r.ProviderRefundID == refund.ProviderRefundID {
			cp := *refund
			s.rows[i] = &cp
			return nil
		}
	}
	cp := *refund
	s.rows = append(s.rows, &cp)
	return nil
}

func (s *fakeRefunds) ListByOrderID(_ context.Context, orderID string) ([]*domain.Refund, error) {
	var out []*domain.Refund
	for _, r := range s.rows {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeCancellations struct {
	upserts   []*domain.Cancellation
	confirmed []string
}

func (s *fakeCancellations) Upsert(_ context.Context, c *domain.Cancellation) error {
	cp := *c
	s.upserts = append(s.upserts, &cp)
	return nil
}

func (s *fakeCancellations) Confirm(_ context.Context, providerID string, _ time.Time) error {
	s.confirmed = append(s.confirmed, providerID)
	return nil
}

func (s *fakeCancellations) GetByProviderID(_ context.Context, _ string) (*domain.Cancellation, error) {
	return nil, errors.New("not implemented")
}

type settleCall struct {
	orderID, amount, currency, idempotencyKey string
}

type fakeBooking struct {
	orders       map[string]*domain.ProviderOrder
	settleCalls  []settleCall
	settleErr    error
	cancelErr    error
	confirmErr   error
	quoteCounter int
}

func (p *fakeBooking) GetOrder(_ context.Context, orderID string) (*domain.ProviderOrder, error) {
	if o, ok := p.orders[orderID]; ok {
		return o, nil
	}
	return nil, errors.New("provider: not found")
}

func (p *fakeBooking) CreateCancellation(_ context.Context, orderID string) (*domain.ProviderCancellation, error) {
	if p.cancelErr != nil {
		return nil, p.cancelErr
	}
	p.quoteCounter++
	return &domain.ProviderCancellation{
		ID:             "ocr_1",
		OrderID:        orderID,
		RefundAmount:   "100.00",
		RefundCurrency: "EUR",
	}, nil
}

func (p *fakeBooking) ConfirmCancellation(_ context.Context, cancellationID string) (*domain.ProviderCancellation, error) {
	if p.confirmErr != nil {
		return nil, p.confirmErr
	}
	now := time.Now()
	return &domain.ProviderCancellation{ID: cancellationID, ConfirmedAt: &now}, nil
}

func (p *fakeBooking) GetCancellation(_ context.Context, _ string) (*domain.ProviderCancellation, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeBooking) SettlePayment(_ context.Context, orderID, amount, currency, idempotencyKey string) error {
	p.settleCalls = append(p.settleCalls, settleCall{orderID, amount, currency, idempotencyKey})
	return p.settleErr
}

func (p *fakeBooking) CreateChangeRequest(_ context.Context, _ string) (*domain.ProviderChangeRequest, error) {
	return nil, errors.New("not implemented")
}
func (p *fakeBooking) ListChangeOffers(_ context.Context, _ string) ([]domain.ProviderChangeOffer, error) {
	return nil, errors.New("not implemented")
}
func (p *fakeBooking) ConfirmChangeOffer(_ context.Context, _ string) (*domain.ProviderChangeRequest, error) {
	return nil, errors.New("not implemented")
}

type fakePayments struct {
	intents      map[string]*domain.ProviderIntent // intent id -> intent
	byOrder      map[string]*domain.ProviderIntent
	intentKeys   []string
	refunds      []*domain.ProviderRefund
	refundErr    error
	intentErr    error
}

func (p *fakePayments) CreateIntent(_ context.Context, orderID, amount, currency, idempotencyKey string) (*domain.ProviderIntent, error) {
	if p.intentErr != nil {
		return nil, p.intentErr
	}
	p.intentKeys = append(p.intentKeys, idempotencyKey)
	return &domain.ProviderIntent{ID: "pi_" + orderID, Amount: amount, Currency: currency, Status: "requires_payment"}, nil
}

func (p *fakePayments) GetIntent(_ context.Context, intentID string) (*domain.ProviderIntent, error) {
	if i, ok := p.intents[intentID]; ok {
		return i, nil
	}
	return nil, errors.New("provider: intent not found")
}

func (p *fakePayments) FindIntentByOrder(_ context.Context, orderID string) (*domain.ProviderIntent, error) {
	if i, ok := p.byOrder[orderID]; ok {
		return i, nil
	}
	return nil, nil
}

func (p *fakePayments) CreateRefund(_ context.Context, chargeID, amount, currency, _ string) (*domain.ProviderRefund, error) {
	if p.refundErr != nil {
		return nil, p.refundErr
	}
	refund := &domain.ProviderRefund{ID: "re_1", ChargeID: chargeID, Amount: amount, Currency: currency, Status: "succeeded"}
	p.refunds = append(p.refunds, refund)
	return refund, nil
}

type fakePoller struct {
	enqueued []string
}

func (p *fakePoller) EnqueuePoll(_ context.Context, orderID string) error {
	p.enqueued = append(p.enqueued, orderID)
	return nil
}

func holdOrder() *domain.Order {
	return &domain.Order{
		ID:                "o1",
		ProviderBookingID: "ord_b1",
		Status:            domain.StatusAwaitingPayment,
		Amount:            "100.00",
		Currency:          "EUR",
		AwaitingPayment:   true,
	}
}

func newPaymentFixture(order *domain.Order) (*DefaultPaymentUsecase, *fakeOrders, *fakeBooking, *fakePayments, *fakePoller, *fakeRefunds, *fakeCancellations) {
	orders := newFakeOrders(order)
	booking := &fakeBooking{orders: map[string]*domain.ProviderOrder{}}
	payments := &fakePayments{intents: map[string]*domain.ProviderIntent{}, byOrder: map[string]*domain.ProviderIntent{}}
	poller := &fakePoller{}
	refunds := &fakeRefunds{}
	cancellations := &fakeCancellations{}
	uc := NewDefaultPaymentUsecase(orders, refunds, cancellations, booking, payments, poller, nil)
	return uc, orders, booking, payments, poller, refunds, cancellations
}

func TestCreateIntentRejectsSettledOrder(t *testing.T) {
	order := holdOrder()
	order.AwaitingPayment = false
	uc, _, _, _, _, _, _ := newPaymentFixture(order)

	_, err := uc.CreateIntent(context.Background(), "o1")
	if !errors.Is(err, domain.ErrAlreadySettled) {
		t.Fatalf("expected ErrAlreadySettled, got %v", err)
	}
}

func TestCreateIntentRejectsMalformedAmount(t *testing.T) {
	order := holdOrder()
	order.Amount = "1,000.00"
	uc, _, _, _, _, _, _ := newPaymentFixture(order)

	_, err := uc.CreateIntent(context.Background(), "o1")
	if !errors.Is(err, domain.ErrInvalidAmountFormat) {
		t.Fatalf("expected ErrInvalidAmountFormat, got %v", err)
	}
}

func TestCreateIntentLinksOrderAndIsStable(t *testing.T) {
	uc, orders, _, payments, _, _, _ := newPaymentFixture(holdOrder())

	intent, err := uc.CreateIntent(context.Background(), "o1")
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if _, err := uc.CreateIntent(context.Background(), "o1"); err != nil {
		t.Fatalf("second create intent: %v", err)
	}

	if len(payments.intentKeys) != 2 || payments.intentKeys[0] != payments.intentKeys[1] {
		t.Fatalf("idempotency key must be stable across retries: %v", payments.intentKeys)
	}
	order, _ := orders.GetByID(context.Background(), "o1")
	if order.PaymentIntentID != intent.ID {
		t.Fatalf("intent not linked: %q", order.PaymentIntentID)
	}
	if order.PaymentStatus != domain.PaymentStatusPending {
		t.Fatalf("expected PENDING, got %s", order.PaymentStatus)
	}
}

func TestChargeSucceededSettlesHoldOrder(t *testing.T) {
	uc, orders, booking, _, poller, _, _ := newPaymentFixture(holdOrder())

	n := &domain.ChargeNotification{
		ChargeID: "ch_1", IntentID: "pi_1", OrderID: "o1",
		Amount: "100.00", Currency: "EUR",
	}
	if err := uc.HandleChargeSucceeded(context.Background(), n); err != nil {
		t.Fatalf("charge succeeded: %v", err)
	}

	if len(booking.settleCalls) != 1 {
		t.Fatalf("expected one settle call, got %d", len(booking.settleCalls))
	}
	call := booking.settleCalls[0]
	if call.orderID != "ord_b1" || call.idempotencyKey != "ch_1" {
		t.Fatalf("settle call %+v", call)
	}
	order, _ := orders.GetByID(context.Background(), "o1")
	if order.Status != domain.StatusPaid || order.PaymentStatus != domain.PaymentStatusPaid {
		t.Fatalf("order not marked paid: %s/%s", order.Status, order.PaymentStatus)
	}
	if len(poller.enqueued) != 1 {
		t.Fatalf("paid order must enqueue a ticket poll")
	}
}

func TestChargeSucceededSettlementFailurePropagates(t *testing.T) {
	uc, orders, booking, _, poller, _, _ := newPaymentFixture(holdOrder())
	booking.settleErr = errors.New("balance insufficient")

	n := &domain.ChargeNotification{ChargeID: "ch_1", OrderID: "o1", Amount: "100.00", Currency: "EUR"}
	err := uc.HandleChargeSucceeded(context.Background(), n)
	if !errors.Is(err, domain.ErrSettlementFailed) {
		t.Fatalf("expected ErrSettlementFailed, got %v", err)
	}

	order, _ := orders.GetByID(context.Background(), "o1")
	if order.Status == domain.StatusPaid {
		t.Fatalf("failed settlement must not mark the order paid")
	}
	if len(poller.enqueued) != 0 {
		t.Fatalf("failed settlement must not poll")
	}
}

func TestChargeSucceededInstantOrderSkipsSettlement(t *testing.T) {
	order := holdOrder()
	order.AwaitingPayment = false
	uc, orders, booking, _, poller, _, _ := newPaymentFixture(order)

	n := &domain.ChargeNotification{ChargeID: "ch_1", IntentID: "pi_1", OrderID: "o1"}
	if err := uc.HandleChargeSucceeded(context.Background(), n); err != nil {
		t.Fatalf("instant order: %v", err)
	}

	if len(booking.settleCalls) != 0 {
		t.Fatalf("instant order was already settled at creation")
	}
	got, _ := orders.GetByID(context.Background(), "o1")
	if got.PaymentIntentID != "pi_1" {
		t.Fatalf("linkage not persisted")
	}
	if len(poller.enqueued) != 1 {
		t.Fatalf("instant order still gets a ticket poll")
	}
}

func TestChargeSucceededUnknownOrderAcknowledged(t *testing.T) {
	uc, _, booking, _, _, _, _ := newPaymentFixture(holdOrder())

	n := &domain.ChargeNotification{ChargeID: "ch_1", IntentID: "pi_unknown", OrderID: "ghost"}
	if err := uc.HandleChargeSucceeded(context.Background(), n); err != nil {
		t.Fatalf("unknown order must be acknowledged: %v", err)
	}
	if len(booking.settleCalls) != 0 {
		t.Fatalf("unknown order must not settle")
	}
}

func TestChargeFailedMarksOrder(t *testing.T) {
	uc, orders, _, _, _, _, _ := newPaymentFixture(holdOrder())

	n := &domain.ChargeNotification{ChargeID: "ch_1", OrderID: "o1"}
	if err := uc.HandleChargeFailed(context.Background(), n); err != nil {
		t.Fatalf("charge failed: %v", err)
	}
	order, _ := orders.GetByID(context.Background(), "o1")
	if order.Status != domain.StatusPaymentFailed || order.PaymentStatus != domain.PaymentStatusFailed {
		t.Fatalf("got %s/%s", order.Status, order.PaymentStatus)
	}
}

func TestChargeRefundedPartialClassification(t *testing.T) {
	order := holdOrder()
	order.Status = domain.StatusPaid
	uc, orders, booking, _, _, refunds, _ := newPaymentFixture(order)

	n := &domain.ChargeNotification{
		Type: domain.PaymentEventChargeRefunded,
		ChargeID: "ch_1", OrderID: "o1", RefundID: "re_1",
		RefundAmount: "40.00", RefundCurrency: "EUR",
	}
	if err := uc.HandleChargeRefunded(context.Background(), n); err != nil {
		t.Fatalf("partial refund: %v", err)
	}

	if len(refunds.rows) != 1 || refunds.rows[0].Kind != domain.RefundKindPartial {
		t.Fatalf("expected one PARTIAL refund row, got %+v", refunds.rows)
	}
	got, _ := orders.GetByID(context.Background(), "o1")
	if got.Status != domain.StatusPartiallyRefunded {
		t.Fatalf("expected PARTIALLY_REFUNDED, got %s", got.Status)
	}
	if booking.quoteCounter != 0 {
		t.Fatalf("partial refund must not cancel the booking")
	}
}

func TestChargeRefundedFullCancelsBooking(t *testing.T) {
	order := holdOrder()
	order.Status = domain.StatusPaid
	uc, orders, booking, _, _, refunds, cancellations := newPaymentFixture(order)

	// Trailing-zero difference is still an equal amount in minor units.
	n := &domain.ChargeNotification{
		Type: domain.PaymentEventChargeRefunded,
		ChargeID: "ch_1", OrderID: "o1", RefundID: "re_1",
		RefundAmount: "100.0", RefundCurrency: "EUR",
	}
	if err := uc.HandleChargeRefunded(context.Background(), n); err != nil {
		t.Fatalf("full refund: %v", err)
	}

	if len(refunds.rows) != 1 || refunds.rows[0].Kind != domain.RefundKindFull {
		t.Fatalf("expected one FULL refund row, got %+v", refunds.rows)
	}
	if booking.quoteCounter != 1 {
		t.Fatalf("full refund must cancel the booking")
	}
	if len(cancellations.confirmed) != 1 {
		t.Fatalf("cancellation mirror not confirmed")
	}
	got, _ := orders.GetByID(context.Background(), "o1")
	if got.Status != domain.StatusRefunded || got.PaymentStatus != domain.PaymentStatusRefunded {
		t.Fatalf("got %s/%s", got.Status, got.PaymentStatus)
	}
}

func TestChargeRefundedCancellationFailureStillAcknowledged(t *testing.T) {
	order := holdOrder()
	order.Status = domain.StatusPaid
	uc, orders, booking, _, _, _, _ := newPaymentFixture(order)
	booking.cancelErr = errors.New("provider down")

	n := &domain.ChargeNotification{
		Type: domain.PaymentEventChargeRefunded,
		ChargeID: "ch_1", OrderID: "o1", RefundID: "re_1",
		RefundAmount: "100.00", RefundCurrency: "EUR",
	}
	if err := uc.HandleChargeRefunded(context.Background(), n); err != nil {
		t.Fatalf("money already moved, delivery must be acknowledged: %v", err)
	}
	got, _ := orders.GetByID(context.Background(), "o1")
	if got.Status == domain.StatusRefunded {
		t.Fatalf("order must not claim REFUNDED while the booking survives")
	}
}

func TestRefundOrderNotFound(t *testing.T) {
	uc, _, _, _, _, _, _ := newPaymentFixture(holdOrder())
	if _, err := uc.RefundOrder(context.Background(), "ghost"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestRefundOrderNotRefundable(t *testing.T) {
	uc, _, booking, _, _, _, _ := newPaymentFixture(holdOrder())
	booking.orders["ord_b1"] = &domain.ProviderOrder{ID: "ord_b1", Refundable: false}

	result, err := uc.RefundOrder(context.Background(), "o1")
	if err != nil {
		t.Fatalf("policy failure is a result, not an error: %v", err)
	}
	if result.OK || result.Cancelled {
		t.Fatalf("not-refundable order must not proceed: %+v", result)
	}
	if len(result.Steps) != 1 || result.Steps[0].Code != "not_refundable" {
		t.Fatalf("steps %+v", result.Steps)
	}
	if booking.quoteCounter != 0 {
		t.Fatalf("no cancellation may be quoted")
	}
}

func TestRefundOrderFullFlow(t *testing.T) {
	order := holdOrder()
	order.Status = domain.StatusPaid
	order.PaymentIntentID = "pi_1"
	uc, orders, booking, payments, _, refunds, _ := newPaymentFixture(order)
	booking.orders["ord_b1"] = &domain.ProviderOrder{ID: "ord_b1", Refundable: true}
	payments.intents["pi_1"] = &domain.ProviderIntent{ID: "pi_1", ChargeID: "ch_1", Status: "succeeded"}

	result, err := uc.RefundOrder(context.Background(), "o1")
	if err != nil {
		t.Fatalf("refund order: %v", err)
	}

	if !result.OK || !result.Cancelled || !result.MoneyRefunded || result.RefundSkipped {
		t.Fatalf("result %+v", result)
	}
	if result.RefundAmount != "100.00" || result.RefundCurrency != "EUR" {
		t.Fatalf("quote figures not reported: %+v", result)
	}
	if len(payments.refunds) != 1 || payments.refunds[0].ChargeID != "ch_1" {
		t.Fatalf("provider refund %+v", payments.refunds)
	}
	if len(refunds.rows) != 1 {
		t.Fatalf("refund row not recorded")
	}
	got, _ := orders.GetByID(context.Background(), "o1")
	if got.Status != domain.StatusRefunded || got.PaymentStatus != domain.PaymentStatusRefunded {
		t.Fatalf("got %s/%s", got.Status, got.PaymentStatus)
	}
}

func TestRefundOrderSkipsMoneyWhenNoCharge(t *testing.T) {
	order := holdOrder()
	order.Status = domain.StatusPaid
	uc, orders, booking, _, _, _, _ := newPaymentFixture(order)
	booking.orders["ord_b1"] = &domain.ProviderOrder{ID: "ord_b1", Refundable: true}

	result, err := uc.RefundOrder(context.Background(), "o1")
	if err != nil {
		t.Fatalf("refund order: %v", err)
	}

	if !result.OK || !result.Cancelled || !result.RefundSkipped || result.MoneyRefunded {
		t.Fatalf("result %+v", result)
	}
	got, _ := orders.GetByID(context.Background(), "o1")
	if got.Status != domain.StatusRefunded {
		t.Fatalf("booking-side refund still cancels the order, got %s", got.Status)
	}
	if got.PaymentStatus != domain.PaymentStatusCancelled {
		t.Fatalf("no money moved, payment status should be CANCELLED, got %s", got.PaymentStatus)
	}
}

func TestRefundOrderCancellationFailureReported(t *testing.T) {
	order := holdOrder()
	order.Status = domain.StatusPaid
	uc, orders, booking, _, _, _, _ := newPaymentFixture(order)
	booking.orders["ord_b1"] = &domain.ProviderOrder{ID: "ord_b1", Refundable: true}
	booking.confirmErr = errors.New("quote expired")

	result, err := uc.RefundOrder(context.Background(), "o1")
	if err != nil {
		t.Fatalf("refund order: %v", err)
	}
	if result.OK || result.Cancelled {
		t.Fatalf("confirm failure must not claim success: %+v", result)
	}
	last := result.Steps[len(result.Steps)-1]
	if last.Name != "cancel_booking" || last.OK {
		t.Fatalf("last step %+v", last)
	}
	got, _ := orders.GetByID(context.Background(), "o1")
	if got.Status == domain.StatusRefunded {
		t.Fatalf("order must keep its status when cancellation fails")
	}
}

package domain

import (
	"encoding/json"
	"time"
)

// Booking Provider event types consumed by the processor. Anything else is
// logged and ignored so new provider types never break ingestion.
const (
	EventOrderCreated          = "order.created"
	EventOrderUpdated          = "order.updated"
	EventAirlineChangeDetected = "order.airline_initiated_change_detected"
	EventCancellationCreated   = "order_cancellation.created"
	EventCancellationConfirmed = "order_cancellation.confirmed"
	EventPing                  = "ping"
)

// EventEnvelope is the provider's wire envelope: data.object is decoded per
// event type into one of the payload variants below.
type EventEnvelope struct {
	ID             string     `json:"id"`
	Type           string     `json:"type"`
	IdempotencyKey string     `json:"idempotency_key,omitempty"`
	APIVersion     string     `json:"api_version,omitempty"`
	LiveMode       bool       `json:"live_mode,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
	Data           struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// OrderSnapshot is the order object carried by order.created/order.updated.
// Updates may arrive as sparse deltas, hence the pointer fields.
type OrderSnapshot struct {
	ID                string              `json:"id"`
	OfferID           *string             `json:"offer_id,omitempty"`
	Status            *string             `json:"status,omitempty"`
	TotalAmount       *string             `json:"total_amount,omitempty"`
	TotalCurrency     *string             `json:"total_currency,omitempty"`
	AwaitingPayment   *bool               `json:"awaiting_payment,omitempty"`
	PaymentRequiredBy *time.Time          `json:"payment_required_by,omitempty"`
	LiveMode          *bool               `json:"live_mode,omitempty"`
	Documents         []ProviderDocument  `json:"documents,omitempty"`
}

type ProviderDocument struct {
	Type             string `json:"type"`
	UniqueIdentifier string `json:"unique_identifier"`
	URL              string `json:"url,omitempty"`
}

// AirlineChange is the payload of order.airline_initiated_change_detected.
type AirlineChange struct {
	ID             string     `json:"id"`
	OrderID        string     `json:"order_id"`
	ChangeAmount   string     `json:"change_amount,omitempty"`
	ChangeCurrency string     `json:"change_currency,omitempty"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
}

// CancellationSnapshot is the payload of order_cancellation.* events.
type CancellationSnapshot struct {
	ID             string     `json:"id"`
	OrderID        string     `json:"order_id"`
	RefundAmount   string     `json:"refund_amount,omitempty"`
	RefundCurrency string     `json:"refund_currency,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
}

// BookingEvent is the decoded union: exactly one payload field is set, chosen
// by Envelope.Type, with Unknown=true for unrecognized types.
type BookingEvent struct {
	Envelope     EventEnvelope
	Order        *OrderSnapshot
	Change       *AirlineChange
	Cancellation *CancellationSnapshot
	Unknown      bool
}

func DecodeBookingEvent(raw []byte) (*BookingEvent, error) {
	var env EventEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, err
	}

	ev := &BookingEvent{Envelope: env}
	switch env.Type {
	case EventOrderCreated, EventOrderUpdated:
		var snap OrderSnapshot
		if err := json.Unmarshal(env.Data.Object, &snap); err != nil {
			return nil, err
		}
		ev.Order = &snap
	case EventAirlineChangeDetected:
		var change AirlineChange
		if err := json.Unmarshal(env.Data.Object, &change); err != nil {
			return nil, err
		}
		ev.Change = &change
	case EventCancellationCreated, EventCancellationConfirmed:
		var cancellation CancellationSnapshot
		if err := json.Unmarshal(env.Data.Object, &cancellation); err != nil {
			return nil, err
		}
		ev.Cancellation = &cancellation
	case EventPing:
		// no payload
	default:
		ev.Unknown = true
	}

	return ev, nil
}

// Payment Provider notifications, already verified and decoded by the payment
// webhook handler.
const (
	PaymentEventChargeSucceeded = "charge.succeeded"
	PaymentEventChargeFailed    = "charge.failed"
	PaymentEventChargeRefunded  = "charge.refunded"
	PaymentEventRefundUpdated   = "refund.updated"
)

type ChargeNotification struct {
	EventID        string
	Type           string
	ChargeID       string
	IntentID       string
	OrderID        string
	Amount         string
	Currency       string
	RefundID       string
	RefundAmount   string
	RefundCurrency string
	LiveMode       bool
}

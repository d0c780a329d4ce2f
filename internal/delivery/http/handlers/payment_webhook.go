package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/skylane/skylane-fulfillment-service/internal/currency"
	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/metrics"
	"github.com/skylane/skylane-fulfillment-service/internal/usecase/payment"
	"github.com/skylane/skylane-fulfillment-service/internal/webhook"
)

const PaymentSignatureHeader = "X-Payment-Signature"

// paymentEvent is the Payment Provider's wire envelope. Amounts arrive in
// minor units and are converted before they reach the orchestrator.
type paymentEvent struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	LiveMode bool   `json:"livemode"`
	Data     struct {
		Object struct {
			ID            string `json:"id"`
			Charge        string `json:"charge,omitempty"`
			PaymentIntent string `json:"payment_intent,omitempty"`
			Amount        int64  `json:"amount"`
			Currency      string `json:"currency"`
			Metadata      struct {
				OrderID string `json:"order_id,omitempty"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// PaymentWebhookHandler dispatches verified charge notifications to the
// payment orchestrator. Unlike the booking side, events are handled on the
// request thread: a settlement failure must fail the delivery so the
// provider's redelivery drives the retry.
type PaymentWebhookHandler struct {
	verifier webhook.Verifier
	payments payment.PaymentUsecase
	metrics  *metrics.FulfillmentMetrics
}

func NewPaymentWebhookHandler(verifier webhook.Verifier, payments payment.PaymentUsecase, m *metrics.FulfillmentMetrics) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{verifier: verifier, payments: payments, metrics: m}
}

func (h *PaymentWebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "failed to read body"})
	}

	signature := c.Request().Header.Get(PaymentSignatureHeader)
	if !h.verifier.Verify(signature, body) {
		if h.metrics != nil {
			h.metrics.WebhookEventsRejectedTotal.WithLabelValues("payment", "signature").Inc()
		}
		return c.JSON(401, map[string]string{"error": domain.ErrSignatureInvalid.Error()})
	}

	var ev paymentEvent
	if err := json.Unmarshal(body, &ev); err != nil || ev.ID == "" {
		if h.metrics != nil {
			h.metrics.WebhookEventsRejectedTotal.WithLabelValues("payment", "malformed").Inc()
		}
		return c.JSON(400, map[string]string{"error": "malformed event"})
	}
	if h.metrics != nil {
		h.metrics.WebhookEventsReceivedTotal.WithLabelValues("payment", ev.Type).Inc()
	}

	n := toChargeNotification(&ev)
	ctx := c.Request().Context()

	switch ev.Type {
	case domain.PaymentEventChargeSucceeded:
		err = h.payments.HandleChargeSucceeded(ctx, n)
	case domain.PaymentEventChargeFailed:
		err = h.payments.HandleChargeFailed(ctx, n)
	case domain.PaymentEventChargeRefunded, domain.PaymentEventRefundUpdated:
		err = h.payments.HandleChargeRefunded(ctx, n)
	default:
		slog.Info("ignoring payment event of unknown type", "event_id", ev.ID, "type", ev.Type)
		return c.JSON(200, map[string]bool{"ok": true})
	}

	if err != nil {
		if errors.Is(err, domain.ErrSettlementFailed) {
			// The settle call is idempotency-key protected, so forcing a
			// redelivery is the safe retry path.
			return c.JSON(500, map[string]string{"error": err.Error()})
		}
		slog.Error("payment event processing failed", "event_id", ev.ID, "type", ev.Type, "error", err.Error())
	}
	return c.JSON(200, map[string]bool{"ok": true})
}

func toChargeNotification(ev *paymentEvent) *domain.ChargeNotification {
	obj := &ev.Data.Object
	n := &domain.ChargeNotification{
		EventID:  ev.ID,
		Type:     ev.Type,
		IntentID: obj.PaymentIntent,
		OrderID:  obj.Metadata.OrderID,
		LiveMode: ev.LiveMode,
	}
	amount := currency.FromMinorUnits(obj.Amount, obj.Currency)

	switch ev.Type {
	case domain.PaymentEventChargeRefunded, domain.PaymentEventRefundUpdated:
		// The object is a refund pointing back at its charge.
		n.RefundID = obj.ID
		n.ChargeID = obj.Charge
		n.RefundAmount = amount
		n.RefundCurrency = obj.Currency
	default:
		n.ChargeID = obj.ID
		n.Amount = amount
		n.Currency = obj.Currency
	}
	return n
}

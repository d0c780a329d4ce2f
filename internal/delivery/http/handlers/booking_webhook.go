package handlers

import (
	"encoding/json"
	"io"
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/infrastructure/metrics"
	"github.com/skylane/skylane-fulfillment-service/internal/webhook"
)

const BookingSignatureHeader = "X-Booking-Signature"

// BookingWebhookHandler accepts Booking Provider events. It verifies the
// signature, audits the raw payload and enqueues the event; business logic
// never runs on the request thread.
type BookingWebhookHandler struct {
	verifier  webhook.Verifier
	events    domain.WebhookEventRepository
	publisher domain.PublisherPort
	// allowUnverified is wired true only outside prod.
	allowUnverified bool
	metrics         *metrics.FulfillmentMetrics
}

func NewBookingWebhookHandler(
	verifier webhook.Verifier,
	events domain.WebhookEventRepository,
	publisher domain.PublisherPort,
	allowUnverified bool,
	m *metrics.FulfillmentMetrics) *BookingWebhookHandler {

	return &BookingWebhookHandler{
		verifier:        verifier,
		events:          events,
		publisher:       publisher,
		allowUnverified: allowUnverified,
		metrics:         m,
	}
}

func (h *BookingWebhookHandler) Handle(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(400, map[string]string{"error": "failed to read body"})
	}

	signature := c.Request().Header.Get(BookingSignatureHeader)
	if !h.verifier.Verify(signature, body) {
		if !h.allowUnverified {
			if h.metrics != nil {
				h.metrics.WebhookEventsRejectedTotal.WithLabelValues("booking", "signature").Inc()
			}
			return c.JSON(401, map[string]string{"error": domain.ErrSignatureInvalid.Error()})
		}
		slog.Warn("accepting unverified booking webhook", "remote", c.RealIP())
	}

	var env domain.EventEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.ID == "" {
		if h.metrics != nil {
			h.metrics.WebhookEventsRejectedTotal.WithLabelValues("booking", "malformed").Inc()
		}
		return c.JSON(400, map[string]string{"error": "malformed event envelope"})
	}

	// Audit first. The row is duplicate-tolerant and a write failure must not
	// lose the event, so it is logged and the delivery continues.
	err = h.events.Insert(c.Request().Context(), &domain.WebhookEvent{
		ID:             env.ID,
		Type:           env.Type,
		IdempotencyKey: env.IdempotencyKey,
		APIVersion:     env.APIVersion,
		LiveMode:       env.LiveMode,
		RemoteCreated:  env.CreatedAt,
		Payload:        body,
	})
	if err != nil {
		slog.Error("failed to audit webhook event", "event_id", env.ID, "error", err.Error())
	}

	if err := h.publisher.Publish(domain.Message{Key: []byte(env.ID), Value: body}); err != nil {
		slog.Error("failed to enqueue webhook event", "event_id", env.ID, "error", err.Error())
		// Not acknowledged: the provider redelivers and the ledger dedupes.
		return c.JSON(500, map[string]string{"error": "failed to enqueue event"})
	}

	if h.metrics != nil {
		h.metrics.WebhookEventsReceivedTotal.WithLabelValues("booking", env.Type).Inc()
	}
	return c.JSON(200, map[string]bool{"ok": true})
}

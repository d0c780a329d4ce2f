package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skylane/skylane-fulfillment-service/internal/delivery/http/handlers"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	BookingWebhook *handlers.BookingWebhookHandler
	PaymentWebhook *handlers.PaymentWebhookHandler
	Refund         *handlers.RefundHandler
	Intent         *handlers.IntentHandler
	Change         *handlers.ChangeHandler
	Health         *handlers.HealthHandler
}

func NewRouter(h *Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.POST("/webhooks/booking", h.BookingWebhook.Handle)
	e.POST("/webhooks/payment", h.PaymentWebhook.Handle)
	e.POST("/orders/:id/payment_intents", h.Intent.CreateIntent)
	e.POST("/orders/:id/refund", h.Refund.Refund)
	e.POST("/orders/:id/changes", h.Change.RequestChange)
	e.POST("/changes/offers/:id/confirm", h.Change.ConfirmOffer)
	e.GET("/healthz", h.Health.Healthz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}

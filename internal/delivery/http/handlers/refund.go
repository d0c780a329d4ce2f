package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/usecase/payment"
)

type RefundHandler struct {
	payments payment.PaymentUsecase
}

func NewRefundHandler(payments payment.PaymentUsecase) *RefundHandler {
	return &RefundHandler{payments: payments}
}

// Refund runs the user-initiated refund workflow. Policy failures come back
// inside the result with ok=false, not as HTTP errors.
func (h *RefundHandler) Refund(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(400, map[string]string{"error": "missing order id"})
	}

	result, err := h.payments.RefundOrder(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return c.JSON(404, map[string]string{"error": err.Error()})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, result)
}

type IntentHandler struct {
	payments payment.PaymentUsecase
}

func NewIntentHandler(payments payment.PaymentUsecase) *IntentHandler {
	return &IntentHandler{payments: payments}
}

// CreateIntent opens a charge intent for an order still awaiting payment.
func (h *IntentHandler) CreateIntent(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(400, map[string]string{"error": "missing order id"})
	}

	intent, err := h.payments.CreateIntent(c.Request().Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			return c.JSON(404, map[string]string{"error": err.Error()})
		case errors.Is(err, domain.ErrAlreadySettled), errors.Is(err, domain.ErrNotAwaitingPayment):
			return c.JSON(409, map[string]string{"error": err.Error()})
		case errors.Is(err, domain.ErrInvalidAmountFormat):
			return c.JSON(422, map[string]string{"error": err.Error()})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, map[string]string{"intent_id": intent.ID, "status": intent.Status})
}

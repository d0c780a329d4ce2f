package handlers

import (
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"github.com/skylane/skylane-fulfillment-service/internal/usecase/change"
)

type ChangeHandler struct {
	changes change.ChangeUsecase
}

func NewChangeHandler(changes change.ChangeUsecase) *ChangeHandler {
	return &ChangeHandler{changes: changes}
}

func (h *ChangeHandler) RequestChange(c echo.Context) error {
	orderID := c.Param("id")
	if orderID == "" {
		return c.JSON(400, map[string]string{"error": "missing order id"})
	}

	request, offers, err := h.changes.RequestChange(c.Request().Context(), orderID)
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return c.JSON(404, map[string]string{"error": err.Error()})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, map[string]any{
		"change_request_id": request.ProviderID,
		"offers":            offers,
	})
}

func (h *ChangeHandler) ConfirmOffer(c echo.Context) error {
	offerID := c.Param("id")
	if offerID == "" {
		return c.JSON(400, map[string]string{"error": "missing offer id"})
	}

	if err := h.changes.ConfirmOffer(c.Request().Context(), offerID); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			return c.JSON(404, map[string]string{"error": err.Error()})
		}
		return c.JSON(500, map[string]string{"error": err.Error()})
	}
	return c.JSON(200, map[string]bool{"ok": true})
}

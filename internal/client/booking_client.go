package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"golang.org/x/time/rate"
)

const bookingCallTimeout = 15 * time.Second

// BookingClient talks to the Booking Provider's REST API. The http.Client is
// injected so tests can substitute a transport; a timed-out settlement or
// confirm must be retried with the same idempotency key, never assumed failed.
type BookingClient struct {
	BaseURL  string
	APIToken string
	HTTP     *http.Client
	limiter  *rate.Limiter
}

func NewBookingClient(baseURL, apiToken string, httpClient *http.Client) *BookingClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: bookingCallTimeout}
	}
	return &BookingClient{
		BaseURL:  baseURL,
		APIToken: apiToken,
		HTTP:     httpClient,
		limiter:  rate.NewLimiter(rate.Limit(10), 20),
	}
}

type bookingOrderPayload struct {
	ID                string     `json:"id"`
	OfferID           string     `json:"offer_id"`
	Status            string     `json:"status"`
	TotalAmount       string     `json:"total_amount"`
	TotalCurrency     string     `json:"total_currency"`
	AwaitingPayment   bool       `json:"awaiting_payment"`
	PaymentRequiredBy *time.Time `json:"payment_required_by,omitempty"`
	LiveMode          bool       `json:"live_mode"`
	Documents         []struct {
		Type             string `json:"type"`
		UniqueIdentifier string `json:"unique_identifier"`
		URL              string `json:"url,omitempty"`
	} `json:"documents,omitempty"`
	Conditions struct {
		RefundBeforeDeparture *struct {
			Allowed bool `json:"allowed"`
		} `json:"refund_before_departure,omitempty"`
	} `json:"conditions"`
}

type bookingCancellationPayload struct {
	ID             string     `json:"id"`
	OrderID        string     `json:"order_id"`
	RefundAmount   string     `json:"refund_amount"`
	RefundCurrency string     `json:"refund_currency"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
}

type bookingChangeRequestPayload struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Offers  []struct {
		ID             string     `json:"id"`
		ChangeAmount   string     `json:"change_total_amount"`
		ChangeCurrency string     `json:"change_total_currency"`
		ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	} `json:"order_change_offers,omitempty"`
}

func (c *BookingClient) GetOrder(ctx context.Context, orderID string) (*domain.ProviderOrder, error) {
	var out struct {
		Data bookingOrderPayload `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/air/orders/"+orderID, nil, "", &out); err != nil {
		return nil, fmt.Errorf("get order %s: %w", orderID, err)
	}
	return toProviderOrder(&out.Data), nil
}

func (c *BookingClient) CreateCancellation(ctx context.Context, orderID string) (*domain.ProviderCancellation, error) {
	body := map[string]interface{}{"data": map[string]string{"order_id": orderID}}
	var out struct {
		Data bookingCancellationPayload `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/air/order_cancellations", body, "", &out); err != nil {
		return nil, fmt.Errorf("create cancellation for order %s: %w", orderID, err)
	}
	return toProviderCancellation(&out.Data), nil
}

func (c *BookingClient) ConfirmCancellation(ctx context.Context, cancellationID string) (*domain.ProviderCancellation, error) {
	var out struct {
		Data bookingCancellationPayload `json:"data"`
	}
	err := c.do(ctx, http.MethodPost, "/air/order_cancellations/"+cancellationID+"/actions/confirm", nil, "", &out)
	if err != nil {
		return nil, fmt.Errorf("confirm cancellation %s: %w", cancellationID, err)
	}
	return toProviderCancellation(&out.Data), nil
}

func (c *BookingClient) GetCancellation(ctx context.Context, cancellationID string) (*domain.ProviderCancellation, error) {
	var out struct {
		Data bookingCancellationPayload `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/air/order_cancellations/"+cancellationID, nil, "", &out); err != nil {
		return nil, fmt.Errorf("get cancellation %s: %w", cancellationID, err)
	}
	return toProviderCancellation(&out.Data), nil
}

func (c *BookingClient) SettlePayment(ctx context.Context, orderID, amount, currency, idempotencyKey string) error {
	body := map[string]interface{}{
		"data": map[string]interface{}{
			"order_id": orderID,
			"payment": map[string]string{
				"type":     "balance",
				"amount":   amount,
				"currency": currency,
			},
		},
	}
	if err := c.do(ctx, http.MethodPost, "/air/payments", body, idempotencyKey, nil); err != nil {
		return fmt.Errorf("settle payment for order %s: %w", orderID, err)
	}
	return nil
}

func (c *BookingClient) CreateChangeRequest(ctx context.Context, orderID string) (*domain.ProviderChangeRequest, error) {
	body := map[string]interface{}{"data": map[string]string{"order_id": orderID}}
	var out struct {
		Data bookingChangeRequestPayload `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/air/order_change_requests", body, "", &out); err != nil {
		return nil, fmt.Errorf("create change request for order %s: %w", orderID, err)
	}
	return toProviderChangeRequest(&out.Data), nil
}

func (c *BookingClient) ListChangeOffers(ctx context.Context, changeRequestID string) ([]domain.ProviderChangeOffer, error) {
	var out struct {
		Data bookingChangeRequestPayload `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/air/order_change_requests/"+changeRequestID, nil, "", &out); err != nil {
		return nil, fmt.Errorf("list change offers for request %s: %w", changeRequestID, err)
	}
	return toProviderChangeRequest(&out.Data).Offers, nil
}

func (c *BookingClient) ConfirmChangeOffer(ctx context.Context, offerID string) (*domain.ProviderChangeRequest, error) {
	body := map[string]interface{}{"data": map[string]string{"selected_order_change_offer": offerID}}
	var out struct {
		Data bookingChangeRequestPayload `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/air/order_changes/"+offerID+"/actions/confirm", body, "", &out); err != nil {
		return nil, fmt.Errorf("confirm change offer %s: %w", offerID, err)
	}
	return toProviderChangeRequest(&out.Data), nil
}

func (c *BookingClient) do(ctx context.Context, method, path string, body interface{}, idempotencyKey string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	ctx, cancel := context.WithTimeout(ctx, bookingCallTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIToken)
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeProviderError(resp.StatusCode, respBody)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("malformed provider response: %w", err)
		}
	}
	return nil
}

func decodeProviderError(status int, body []byte) error {
	var envelope struct {
		Errors []struct {
			Message string `json:"message"`
			Title   string `json:"title"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Errors) > 0 {
		msg := envelope.Errors[0].Message
		if msg == "" {
			msg = envelope.Errors[0].Title
		}
		return fmt.Errorf("provider returned %d: %s", status, msg)
	}
	return fmt.Errorf("provider returned %d", status)
}

func toProviderOrder(p *bookingOrderPayload) *domain.ProviderOrder {
	order := &domain.ProviderOrder{
		ID:                p.ID,
		OfferID:           p.OfferID,
		Status:            p.Status,
		TotalAmount:       p.TotalAmount,
		TotalCurrency:     p.TotalCurrency,
		AwaitingPayment:   p.AwaitingPayment,
		PaymentRequiredBy: p.PaymentRequiredBy,
		LiveMode:          p.LiveMode,
	}
	if p.Conditions.RefundBeforeDeparture != nil {
		order.Refundable = p.Conditions.RefundBeforeDeparture.Allowed
	}
	for _, d := range p.Documents {
		order.Documents = append(order.Documents, domain.ProviderDocument{
			Type:             d.Type,
			UniqueIdentifier: d.UniqueIdentifier,
			URL:              d.URL,
		})
	}
	return order
}

func toProviderCancellation(p *bookingCancellationPayload) *domain.ProviderCancellation {
	return &domain.ProviderCancellation{
		ID:             p.ID,
		OrderID:        p.OrderID,
		RefundAmount:   p.RefundAmount,
		RefundCurrency: p.RefundCurrency,
		ExpiresAt:      p.ExpiresAt,
		ConfirmedAt:    p.ConfirmedAt,
	}
}

func toProviderChangeRequest(p *bookingChangeRequestPayload) *domain.ProviderChangeRequest {
	req := &domain.ProviderChangeRequest{
		ID:      p.ID,
		OrderID: p.OrderID,
	}
	for _, o := range p.Offers {
		req.Offers = append(req.Offers, domain.ProviderChangeOffer{
			ID:             o.ID,
			ChangeAmount:   o.ChangeAmount,
			ChangeCurrency: o.ChangeCurrency,
			ExpiresAt:      o.ExpiresAt,
		})
	}
	return req
}

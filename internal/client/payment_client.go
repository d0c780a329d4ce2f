package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/skylane/skylane-fulfillment-service/internal/domain"
	"golang.org/x/time/rate"
)

const paymentCallTimeout = 15 * time.Second

// PaymentClient talks to the Payment Provider's charge/refund API.
type PaymentClient struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	limiter *rate.Limiter
}

func NewPaymentClient(baseURL, apiKey string, httpClient *http.Client) *PaymentClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: paymentCallTimeout}
	}
	return &PaymentClient{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(25), 50),
	}
}

type paymentIntentPayload struct {
	ID       string `json:"id"`
	ChargeID string `json:"latest_charge"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
	Metadata struct {
		OrderID string `json:"order_id"`
	} `json:"metadata"`
}

type paymentRefundPayload struct {
	ID       string `json:"id"`
	ChargeID string `json:"charge"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	Status   string `json:"status"`
}

func (c *PaymentClient) CreateIntent(ctx context.Context, orderID, amount, currency, idempotencyKey string) (*domain.ProviderIntent, error) {
	body := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"metadata": map[string]string{"order_id": orderID},
	}
	var out paymentIntentPayload
	if err := c.do(ctx, http.MethodPost, "/v1/payment_intents", body, idempotencyKey, &out); err != nil {
		return nil, fmt.Errorf("create intent for order %s: %w", orderID, err)
	}
	return toProviderIntent(&out), nil
}

func (c *PaymentClient) GetIntent(ctx context.Context, intentID string) (*domain.ProviderIntent, error) {
	var out paymentIntentPayload
	if err := c.do(ctx, http.MethodGet, "/v1/payment_intents/"+intentID, nil, "", &out); err != nil {
		return nil, fmt.Errorf("get intent %s: %w", intentID, err)
	}
	return toProviderIntent(&out), nil
}

// FindIntentByOrder searches intents by order metadata; a missing charge is
// nil, not an error, so the refund workflow can skip the money side cleanly.
func (c *PaymentClient) FindIntentByOrder(ctx context.Context, orderID string) (*domain.ProviderIntent, error) {
	query := url.Values{}
	query.Set("query", fmt.Sprintf("metadata['order_id']:'%s'", orderID))
	var out struct {
		Data []paymentIntentPayload `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/payment_intents/search?"+query.Encode(), nil, "", &out); err != nil {
		return nil, fmt.Errorf("search intents for order %s: %w", orderID, err)
	}
	if len(out.Data) == 0 {
		return nil, nil
	}
	return toProviderIntent(&out.Data[0]), nil
}

func (c *PaymentClient) CreateRefund(ctx context.Context, chargeID, amount, currency, idempotencyKey string) (*domain.ProviderRefund, error) {
	body := map[string]interface{}{
		"charge":   chargeID,
		"amount":   amount,
		"currency": currency,
	}
	var out paymentRefundPayload
	if err := c.do(ctx, http.MethodPost, "/v1/refunds", body, idempotencyKey, &out); err != nil {
		return nil, fmt.Errorf("create refund for charge %s: %w", chargeID, err)
	}
	return &domain.ProviderRefund{
		ID:       out.ID,
		ChargeID: out.ChargeID,
		Amount:   out.Amount,
		Currency: out.Currency,
		Status:   out.Status,
	}, nil
}

func (c *PaymentClient) do(ctx context.Context, method, path string, body interface{}, idempotencyKey string, out interface{}) error {
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

	ctx, cancel := context.WithTimeout(ctx, paymentCallTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
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
		var envelope struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error.Message != "" {
			return fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, envelope.Error.Message)
		}
		return fmt.Errorf("payment provider returned %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("malformed payment provider response: %w", err)
		}
	}
	return nil
}

func toProviderIntent(p *paymentIntentPayload) *domain.ProviderIntent {
	return &domain.ProviderIntent{
		ID:       p.ID,
		ChargeID: p.ChargeID,
		Amount:   p.Amount,
		Currency: p.Currency,
		Status:   p.Status,
	}
}

package domain

import "time"

type RefundKind string

const (
	RefundKindFull    RefundKind = "FULL"
	RefundKindPartial RefundKind = "PARTIAL"
)

type Refund struct {
	ID               string
	OrderID          string
	ProviderRefundID string
	ChargeID         string
	Kind             RefundKind
	Amount           string
	Currency         string
	CreatedAt        time.Time
}

// RefundStep is one stage of the user-initiated refund workflow. Each stage
// reports its own outcome so a partial success is never masked as one opaque
// error.
type RefundStep struct {
	Name    string `json:"name"`
	OK      bool   `json:"ok"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type RefundResult struct {
	OK             bool         `json:"ok"`
	OrderID        string       `json:"order_id"`
	Cancelled      bool         `json:"cancelled"`
	MoneyRefunded  bool         `json:"money_refunded"`
	RefundSkipped  bool         `json:"refund_skipped"`
	Steps          []RefundStep `json:"steps"`
	RefundAmount   string       `json:"refund_amount,omitempty"`
	RefundCurrency string       `json:"refund_currency,omitempty"`
}

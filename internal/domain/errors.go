package domain

import "errors"

var (
	ErrInvalidAmountFormat = errors.New("invalid amount format")
	ErrOrderNotFound       = errors.New("order not found")
	ErrNotAwaitingPayment  = errors.New("order is not awaiting payment")
	ErrAlreadySettled      = errors.New("order was settled by the booking provider at creation")
	ErrNotRefundable       = errors.New("order is not refundable")
	ErrSignatureInvalid    = errors.New("webhook signature verification failed")
	ErrSettlementFailed    = errors.New("booking provider payment settlement failed")
	ErrNoConfirmationID    = errors.New("provider returned no confirmation id")
	ErrDuplicateKey        = errors.New("duplicate key")
)

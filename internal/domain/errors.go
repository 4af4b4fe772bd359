package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrConfiguration    = errors.New("invalid gateway configuration")
	ErrInvalidCurrency  = errors.New("currency not offered")
	ErrUnknownCurrency  = errors.New("unknown currency code")
	ErrDuplicateOrder   = errors.New("order already has a pending invoice")
	ErrRemoteService    = errors.New("invoicing service unavailable")
	ErrValidation       = errors.New("invoice request rejected")
	ErrInvalidSignature = errors.New("callback signature is invalid")
	ErrMalformedPayload = errors.New("callback payload is malformed")
	ErrUnknownInvoice   = errors.New("no payment record for invoice")
	ErrTerminalState    = errors.New("payment already in terminal state")
	ErrInvalidAmount    = errors.New("amount must be greater than zero")
)

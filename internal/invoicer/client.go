// Package invoicer wraps the remote invoicing provider: invoice creation and
// verification of the signed callbacks it delivers. The provider owns address
// generation, blockchain watching and fiat conversion; this package only
// speaks its HTTP API.
package invoicer

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/coinbridge/checkout-gateway/internal/domain"
)

type CreateRequest struct {
	FiatAmount     decimal.Decimal
	FiatCurrency   domain.FiatCurrency
	CryptoCurrency domain.CryptoCurrency
	PayoutAddress  string
	LifetimeMin    int
	CallbackURL    string
	LinkbackURL    string
	// IdempotencyKey is derived from the order id so a retried create cannot
	// mint a second invoice for the same order.
	IdempotencyKey string
}

// Invoice is the provider's view of a created invoice.
type Invoice struct {
	ID           string
	HostedURL    string
	CryptoAmount string
}

// CallbackEvent is a verified status notification.
type CallbackEvent struct {
	InvoiceID string
	Status    string
}

type Client interface {
	Create(ctx context.Context, req CreateRequest) (*Invoice, error)
	VerifyCallback(body []byte, signature string) (*CallbackEvent, error)
}

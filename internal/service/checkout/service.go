// Package checkout implements the order-to-invoice redirect flow: convert an
// order total into an invoice at the remote provider and persist the pending
// payment record the callback handler will later resolve.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coinbridge/checkout-gateway/internal/domain"
	"github.com/coinbridge/checkout-gateway/internal/invoicer"
	"github.com/coinbridge/checkout-gateway/internal/logging"
)

type recordRepo interface {
	Insert(ctx context.Context, rec *domain.PaymentRecord) error
	GetActiveByOrderID(ctx context.Context, orderID string) (*domain.PaymentRecord, error)
}

type InitiateRequest struct {
	OrderID      string
	FiatAmount   decimal.Decimal
	FiatCurrency domain.FiatCurrency
	Currency     domain.CryptoCurrency
}

// RedirectTarget is handed to the redirect transport; the customer is sent to
// the provider-hosted payment page.
type RedirectTarget struct {
	InvoiceID string
	HostedURL string
}

type Service struct {
	invoices    invoicer.Client
	records     recordRepo
	callbackURL string
	linkbackURL string
}

func NewService(invoices invoicer.Client, records recordRepo, callbackURL, linkbackURL string) *Service {
	return &Service{
		invoices:    invoices,
		records:     records,
		callbackURL: callbackURL,
		linkbackURL: linkbackURL,
	}
}

// Initiate creates exactly one invoice and one pending record per successful
// call. Settings are passed in per invocation; the caller loads them fresh.
func (s *Service) Initiate(ctx context.Context, settings *domain.GatewaySettings, req InitiateRequest) (*RedirectTarget, error) {
	log := logging.FromContext(ctx)

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("Initiate: %w", err)
	}
	if req.OrderID == "" || !req.FiatCurrency.IsValid() {
		return nil, fmt.Errorf("Initiate: order %q: %w", req.OrderID, domain.ErrValidation)
	}
	if !req.FiatAmount.IsPositive() {
		return nil, fmt.Errorf("Initiate: order %s: %w", req.OrderID, domain.ErrInvalidAmount)
	}
	if !settings.Offers(req.Currency) {
		return nil, fmt.Errorf("Initiate: order %s currency %q: %w", req.OrderID, req.Currency, domain.ErrInvalidCurrency)
	}

	if _, err := s.records.GetActiveByOrderID(ctx, req.OrderID); err == nil {
		return nil, fmt.Errorf("Initiate: order %s: %w", req.OrderID, domain.ErrDuplicateOrder)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("Initiate: %w", err)
	}

	amount := AdjustedAmount(req.FiatAmount, settings.FeePlan, settings.PriceAdjustmentFactor)

	inv, err := s.invoices.Create(ctx, invoicer.CreateRequest{
		FiatAmount:     amount,
		FiatCurrency:   req.FiatCurrency,
		CryptoCurrency: req.Currency,
		PayoutAddress:  settings.PayoutAddress(req.Currency),
		LifetimeMin:    settings.PaymentTimeoutMinutes,
		CallbackURL:    s.callbackURL,
		LinkbackURL:    s.linkbackURL,
		IdempotencyKey: "order-" + req.OrderID,
	})
	if err != nil {
		// Remote errors surface unchanged; invoice creation is never retried
		// here because only the idempotency key guards against doubles.
		return nil, fmt.Errorf("Initiate: order %s: %w", req.OrderID, err)
	}

	now := time.Now().UTC()
	rec := &domain.PaymentRecord{
		ID:              uuid.New(),
		OrderID:         req.OrderID,
		RemoteInvoiceID: inv.ID,
		Status:          domain.PaymentStatusPending,
		CryptoCurrency:  req.Currency,
		PayoutAddress:   settings.PayoutAddress(req.Currency),
		FiatAmount:      amount,
		FiatCurrency:    req.FiatCurrency,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if inv.CryptoAmount != "" {
		rec.CryptoAmount = &inv.CryptoAmount
	}

	if err := s.records.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("Initiate: order %s invoice %s: %w", req.OrderID, inv.ID, err)
	}

	log.Info("invoice created",
		"order_id", req.OrderID,
		"invoice_id", inv.ID,
		"currency", req.Currency,
		"fiat_amount", amount.String(),
	)

	return &RedirectTarget{InvoiceID: inv.ID, HostedURL: inv.HostedURL}, nil
}

// AdjustedAmount applies the configured price adjustment before the amount is
// sent for conversion: the percentage plan marks the total up
// multiplicatively, the fixed plan adds the factor as an absolute fiat fee.
func AdjustedAmount(fiat decimal.Decimal, plan domain.FeePlan, factor decimal.Decimal) decimal.Decimal {
	switch plan {
	case domain.FeePlanPercentage:
		return fiat.Mul(decimal.NewFromInt(1).Add(factor)).Round(2)
	case domain.FeePlanFixed:
		return fiat.Add(factor).Round(2)
	default:
		return fiat
	}
}

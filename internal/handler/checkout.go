package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/coinbridge/checkout-gateway/internal/domain"
	"github.com/coinbridge/checkout-gateway/internal/logging"
	"github.com/coinbridge/checkout-gateway/internal/service/checkout"
)

type checkoutService interface {
	Initiate(ctx context.Context, settings *domain.GatewaySettings, req checkout.InitiateRequest) (*checkout.RedirectTarget, error)
}

type settingsService interface {
	Load(ctx context.Context) (*domain.GatewaySettings, error)
}

type CheckoutHandler struct {
	checkout checkoutService
	settings settingsService
}

func NewCheckoutHandler(checkoutSvc checkoutService, settingsSvc settingsService) *CheckoutHandler {
	return &CheckoutHandler{checkout: checkoutSvc, settings: settingsSvc}
}

type initiateCheckoutRequest struct {
	OrderID      string `json:"order_id"`
	FiatAmount   string `json:"fiat_amount"`
	FiatCurrency string `json:"fiat_currency"`
	Currency     string `json:"currency"`
}

func (r initiateCheckoutRequest) Validate() []FieldError {
	var errs []FieldError

	if r.OrderID == "" {
		errs = append(errs, FieldError{Field: "order_id", Message: "required"})
	}

	if r.FiatAmount == "" {
		errs = append(errs, FieldError{Field: "fiat_amount", Message: "required"})
	} else if amount, err := decimal.NewFromString(r.FiatAmount); err != nil {
		errs = append(errs, FieldError{Field: "fiat_amount", Message: "must be a decimal number"})
	} else if !amount.IsPositive() {
		errs = append(errs, FieldError{Field: "fiat_amount", Message: "must be greater than 0"})
	}

	if r.FiatCurrency == "" {
		errs = append(errs, FieldError{Field: "fiat_currency", Message: "required"})
	} else if !domain.FiatCurrency(r.FiatCurrency).IsValid() {
		errs = append(errs, FieldError{Field: "fiat_currency", Message: "must be USD, EUR, or GBP"})
	}

	if r.Currency == "" {
		errs = append(errs, FieldError{Field: "currency", Message: "required"})
	} else if !domain.CryptoCurrency(r.Currency).IsValid() {
		errs = append(errs, FieldError{Field: "currency", Message: "unsupported currency code"})
	}

	return errs
}

type redirectTargetDTO struct {
	InvoiceID string `json:"invoice_id"`
	HostedURL string `json:"hosted_url"`
}

// Initiate creates the invoice and answers with the hosted payment URL; the
// caller (checkout UI) performs the actual redirect.
func (h *CheckoutHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req initiateCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	settings, err := h.settings.Load(r.Context())
	if err != nil {
		log.Error("failed to load gateway settings", "error", err)
		RespondDomainError(w, err)
		return
	}

	amount, _ := decimal.NewFromString(req.FiatAmount)
	target, err := h.checkout.Initiate(r.Context(), settings, checkout.InitiateRequest{
		OrderID:      req.OrderID,
		FiatAmount:   amount,
		FiatCurrency: domain.FiatCurrency(req.FiatCurrency),
		Currency:     domain.CryptoCurrency(req.Currency),
	})
	if err != nil {
		log.Warn("checkout initiation failed", "order_id", req.OrderID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusCreated, redirectTargetDTO{
		InvoiceID: target.InvoiceID,
		HostedURL: target.HostedURL,
	})
}

type offeredCurrencyDTO struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Currencies lists what the customer may pay with, for the checkout UI's
// currency selector.
func (h *CheckoutHandler) Currencies(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Load(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load gateway settings", "error", err)
		RespondDomainError(w, err)
		return
	}

	offered := settings.CurrenciesOffered()
	dtos := make([]offeredCurrencyDTO, 0, len(offered))
	for _, code := range offered {
		dtos = append(dtos, offeredCurrencyDTO{Code: string(code), Name: code.Name()})
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

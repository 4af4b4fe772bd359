package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinbridge/checkout-gateway/internal/domain"
	"github.com/coinbridge/checkout-gateway/internal/service/checkout"
)

type fakeCheckoutService struct {
	gotReq checkout.InitiateRequest
	target *checkout.RedirectTarget
	err    error
}

func (f *fakeCheckoutService) Initiate(_ context.Context, _ *domain.GatewaySettings, req checkout.InitiateRequest) (*checkout.RedirectTarget, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.target, nil
}

type fakeSettingsService struct {
	settings *domain.GatewaySettings
	err      error
}

func (f *fakeSettingsService) Load(context.Context) (*domain.GatewaySettings, error) {
	return f.settings, f.err
}

func handlerSettings() *domain.GatewaySettings {
	s := domain.DefaultSettings("merchant-1")
	s.Currencies = map[domain.CryptoCurrency]string{
		domain.CurrencyDOGE: "DAddr",
		domain.CurrencyBTC:  "bc1qaddr",
		domain.CurrencyLTC:  "",
	}
	return s
}

func postCheckout(t *testing.T, h *CheckoutHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Initiate(rec, req)
	return rec
}

func TestInitiateCheckout(t *testing.T) {
	svc := &fakeCheckoutService{target: &checkout.RedirectTarget{
		InvoiceID: "inv-1",
		HostedURL: "https://pay.example/i/inv-1",
	}}
	h := NewCheckoutHandler(svc, &fakeSettingsService{settings: handlerSettings()})

	rec := postCheckout(t, h, `{"order_id":"order-1","fiat_amount":"50.00","fiat_currency":"USD","currency":"btc"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Success bool              `json:"success"`
		Data    redirectTargetDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "inv-1", resp.Data.InvoiceID)
	assert.Equal(t, "https://pay.example/i/inv-1", resp.Data.HostedURL)

	assert.Equal(t, "order-1", svc.gotReq.OrderID)
	assert.True(t, decimal.NewFromInt(50).Equal(svc.gotReq.FiatAmount))
	assert.Equal(t, domain.FiatUSD, svc.gotReq.FiatCurrency)
	assert.Equal(t, domain.CurrencyBTC, svc.gotReq.Currency)
}

func TestInitiateCheckout_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing order id", `{"fiat_amount":"50.00","fiat_currency":"USD","currency":"btc"}`},
		{"non-numeric amount", `{"order_id":"o1","fiat_amount":"fifty","fiat_currency":"USD","currency":"btc"}`},
		{"negative amount", `{"order_id":"o1","fiat_amount":"-1","fiat_currency":"USD","currency":"btc"}`},
		{"unknown fiat currency", `{"order_id":"o1","fiat_amount":"50.00","fiat_currency":"JPY","currency":"btc"}`},
		{"unknown crypto currency", `{"order_id":"o1","fiat_amount":"50.00","fiat_currency":"USD","currency":"xmr"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeCheckoutService{}
			h := NewCheckoutHandler(svc, &fakeSettingsService{settings: handlerSettings()})

			rec := postCheckout(t, h, tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Empty(t, svc.gotReq.OrderID)
		})
	}
}

func TestInitiateCheckout_DomainErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"currency not offered", fmt.Errorf("Initiate: %w", domain.ErrInvalidCurrency), http.StatusBadRequest, "CURRENCY_NOT_OFFERED"},
		{"duplicate order", fmt.Errorf("Initiate: %w", domain.ErrDuplicateOrder), http.StatusConflict, "DUPLICATE_ORDER"},
		{"invoicer down", fmt.Errorf("Initiate: %w", domain.ErrRemoteService), http.StatusBadGateway, "INVOICER_UNAVAILABLE"},
		{"misconfigured gateway", fmt.Errorf("Initiate: %w", domain.ErrConfiguration), http.StatusUnprocessableEntity, "INVALID_CONFIGURATION"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewCheckoutHandler(&fakeCheckoutService{err: tc.err}, &fakeSettingsService{settings: handlerSettings()})

			rec := postCheckout(t, h, `{"order_id":"order-1","fiat_amount":"50.00","fiat_currency":"USD","currency":"btc"}`)
			assert.Equal(t, tc.wantStatus, rec.Code)

			var resp APIResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tc.wantCode, resp.Error.Code)
		})
	}
}

func TestCurrencies(t *testing.T) {
	h := NewCheckoutHandler(&fakeCheckoutService{}, &fakeSettingsService{settings: handlerSettings()})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/checkout/currencies", nil)
	rec := httptest.NewRecorder()
	h.Currencies(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []offeredCurrencyDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "btc", resp.Data[0].Code)
	assert.Equal(t, "Bitcoin", resp.Data[0].Name)
	assert.Equal(t, "doge", resp.Data[1].Code)
}

package invoicer

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coinbridge/checkout-gateway/internal/domain"
	"github.com/coinbridge/checkout-gateway/internal/logging"
)

type HTTPClient struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, secret string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type createPayload struct {
	Amount       string `json:"amount"`
	FiatCurrency string `json:"fiat_currency"`
	Currency     string `json:"currency"`
	Address      string `json:"address"`
	Lifetime     int    `json:"lifetime"`
	CallbackURL  string `json:"callback_url"`
	LinkbackURL  string `json:"linkback_url"`
}

type createResponse struct {
	Invoice      string `json:"invoice"`
	InvoiceURL   string `json:"invoice_url"`
	CryptoAmount string `json:"crypto_amount"`
}

func (c *HTTPClient) Create(ctx context.Context, req CreateRequest) (*Invoice, error) {
	log := logging.FromContext(ctx)

	payload := createPayload{
		Amount:       req.FiatAmount.String(),
		FiatCurrency: string(req.FiatCurrency),
		Currency:     string(req.CryptoCurrency),
		Address:      req.PayoutAddress,
		Lifetime:     req.LifetimeMin,
		CallbackURL:  req.CallbackURL,
		LinkbackURL:  req.LinkbackURL,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("Create: marshal: %w", err)
	}

	url := c.baseURL + "/invoices"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("Create: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if req.IdempotencyKey != "" {
		httpReq.Header.Set("X-Idempotency-Key", req.IdempotencyKey)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("Create: send: %w: %w", err, domain.ErrRemoteService)
	}
	defer resp.Body.Close()

	log.Info("invoicer response received",
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		// fallthrough to decode
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Create: status %d: %s: %w", resp.StatusCode, string(respBody), domain.ErrValidation)
	default:
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("Create: status %d: %s: %w", resp.StatusCode, string(respBody), domain.ErrRemoteService)
	}

	var created createResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("Create: decode: %w: %w", err, domain.ErrRemoteService)
	}
	if created.Invoice == "" || created.InvoiceURL == "" {
		return nil, fmt.Errorf("Create: incomplete response: %w", domain.ErrRemoteService)
	}

	return &Invoice{
		ID:           created.Invoice,
		HostedURL:    created.InvoiceURL,
		CryptoAmount: created.CryptoAmount,
	}, nil
}

type callbackPayload struct {
	Invoice string `json:"invoice"`
	Status  string `json:"status"`
}

// VerifyCallback checks the HMAC-SHA256 body signature and extracts the
// invoice id and reported status. A bad signature is rejected before the
// payload is even parsed.
func (c *HTTPClient) VerifyCallback(body []byte, signature string) (*CallbackEvent, error) {
	if !verifyHMAC(body, signature, c.secret) {
		return nil, fmt.Errorf("VerifyCallback: %w", domain.ErrInvalidSignature)
	}

	var payload callbackPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("VerifyCallback: %w: %w", err, domain.ErrMalformedPayload)
	}
	if payload.Invoice == "" || payload.Status == "" {
		return nil, fmt.Errorf("VerifyCallback: missing invoice or status: %w", domain.ErrMalformedPayload)
	}

	return &CallbackEvent{InvoiceID: payload.Invoice, Status: payload.Status}, nil
}

func verifyHMAC(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignCallback produces the signature the provider attaches to callbacks.
// Exported for the mock invoicer and tests.
func SignCallback(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

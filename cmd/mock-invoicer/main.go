// Command mock-invoicer is a local stand-in for the remote invoicing
// provider. It mints invoice ids, serves a hosted payment page stub, and
// delivers signed status callbacks to the gateway on demand, so the full
// checkout round trip can be exercised without touching a blockchain.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coinbridge/checkout-gateway/internal/domain"
	"github.com/coinbridge/checkout-gateway/internal/invoicer"
	"github.com/coinbridge/checkout-gateway/internal/logging"
	"github.com/coinbridge/checkout-gateway/internal/rates"
)

type invoice struct {
	ID           string `json:"invoice"`
	Status       string `json:"status"`
	CryptoAmount string `json:"crypto_amount"`
	CallbackURL  string `json:"-"`
}

type server struct {
	mu          sync.Mutex
	invoices    map[string]*invoice
	byIdemKey   map[string]string
	rates       *rates.Service
	secret      string
	externalURL string
}

type createRequest struct {
	Amount       string `json:"amount"`
	FiatCurrency string `json:"fiat_currency"`
	Currency     string `json:"currency"`
	Address      string `json:"address"`
	Lifetime     int    `json:"lifetime"`
	CallbackURL  string `json:"callback_url"`
}

func (s *server) createInvoice(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() || req.Address == "" || req.Lifetime < 1 {
		http.Error(w, "invalid invoice parameters", http.StatusUnprocessableEntity)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idemKey := r.Header.Get("X-Idempotency-Key")
	if idemKey != "" {
		if existingID, ok := s.byIdemKey[idemKey]; ok {
			s.respondInvoice(w, s.invoices[existingID])
			return
		}
	}

	cryptoAmount, err := s.rates.Convert(amount,
		domain.FiatCurrency(req.FiatCurrency), domain.CryptoCurrency(req.Currency))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	inv := &invoice{
		ID:           uuid.NewString(),
		Status:       "created",
		CryptoAmount: cryptoAmount.String(),
		CallbackURL:  req.CallbackURL,
	}
	s.invoices[inv.ID] = inv
	if idemKey != "" {
		s.byIdemKey[idemKey] = inv.ID
	}

	slog.Info("invoice created", "invoice_id", inv.ID, "crypto_amount", inv.CryptoAmount)
	s.respondInvoice(w, inv)
}

func (s *server) respondInvoice(w http.ResponseWriter, inv *invoice) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{
		"invoice":       inv.ID,
		"invoice_url":   s.externalURL + "/i/" + inv.ID,
		"crypto_amount": inv.CryptoAmount,
	})
}

func (s *server) hostedPage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	inv, ok := s.invoices[r.PathValue("id")]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, "<html><body><h1>Invoice %s</h1><p>Send %s. Status: %s</p></body></html>",
		inv.ID, inv.CryptoAmount, inv.Status)
}

// settle flips an invoice's status and fires the signed callback, simulating
// the provider noticing a payment (or an expiry) on chain.
func (s *server) settle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Status == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	inv, ok := s.invoices[r.PathValue("id")]
	if ok {
		inv.Status = req.Status
	}
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := s.deliverCallback(inv); err != nil {
		slog.Error("callback delivery failed", "invoice_id", inv.ID, "error", err)
		http.Error(w, "callback delivery failed", http.StatusBadGateway)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (s *server) deliverCallback(inv *invoice) error {
	body, err := json.Marshal(map[string]string{
		"invoice": inv.ID,
		"status":  inv.Status,
	})
	if err != nil {
		return fmt.Errorf("deliverCallback: marshal: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, inv.CallbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("deliverCallback: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Callback-Signature", invoicer.SignCallback(body, s.secret))

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("deliverCallback: send: %w", err)
	}
	defer resp.Body.Close()

	slog.Info("callback delivered", "invoice_id", inv.ID, "status", inv.Status, "http_status", resp.StatusCode)
	return nil
}

func main() {
	logging.Init("mock-invoicer", "info", os.Getenv("APP_ENV"))

	addr := os.Getenv("MOCK_INVOICER_ADDR")
	if addr == "" {
		addr = ":8081"
	}
	externalURL := os.Getenv("MOCK_INVOICER_URL")
	if externalURL == "" {
		externalURL = "http://localhost:8081"
	}

	srv := &server{
		invoices:    map[string]*invoice{},
		byIdemKey:   map[string]string{},
		rates:       rates.NewService(),
		secret:      os.Getenv("CALLBACK_SECRET"),
		externalURL: externalURL,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})
	mux.HandleFunc("POST /invoices", srv.createInvoice)
	mux.HandleFunc("GET /i/{id}", srv.hostedPage)
	mux.HandleFunc("POST /invoices/{id}/settle", srv.settle)

	slog.Info("mock invoicer started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

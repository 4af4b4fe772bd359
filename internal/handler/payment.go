package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/coinbridge/checkout-gateway/internal/domain"
	"github.com/coinbridge/checkout-gateway/internal/logging"
)

type paymentRecordReader interface {
	GetByRemoteInvoiceID(ctx context.Context, invoiceID string) (*domain.PaymentRecord, error)
}

// PaymentHandler exposes read-only payment state, used by the checkout UI to
// poll after the customer returns from the hosted payment page.
type PaymentHandler struct {
	records paymentRecordReader
}

func NewPaymentHandler(records paymentRecordReader) *PaymentHandler {
	return &PaymentHandler{records: records}
}

type paymentRecordDTO struct {
	OrderID       string     `json:"order_id"`
	InvoiceID     string     `json:"invoice_id"`
	Status        string     `json:"status"`
	Currency      string     `json:"currency"`
	FiatAmount    string     `json:"fiat_amount"`
	FiatCurrency  string     `json:"fiat_currency"`
	CryptoAmount  *string    `json:"crypto_amount,omitempty"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

func toPaymentRecordDTO(rec *domain.PaymentRecord) paymentRecordDTO {
	return paymentRecordDTO{
		OrderID:       rec.OrderID,
		InvoiceID:     rec.RemoteInvoiceID,
		Status:        string(rec.Status),
		Currency:      string(rec.CryptoCurrency),
		FiatAmount:    rec.FiatAmount.String(),
		FiatCurrency:  string(rec.FiatCurrency),
		CryptoAmount:  rec.CryptoAmount,
		FailureReason: rec.FailureReason,
		CreatedAt:     rec.CreatedAt,
		PaidAt:        rec.PaidAt,
	}
}

func (h *PaymentHandler) GetByInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID := r.PathValue("invoice_id")
	if invoiceID == "" {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	rec, err := h.records.GetByRemoteInvoiceID(r.Context(), invoiceID)
	if err != nil {
		logging.FromContext(r.Context()).Warn("payment lookup failed", "invoice_id", invoiceID, "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toPaymentRecordDTO(rec))
}

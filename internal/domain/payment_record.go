package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusPaid || s == PaymentStatusFailed
}

// PaymentRecord links a merchant order to an invoice issued by the remote
// invoicing provider. OrderID, RemoteInvoiceID and the amounts are set at
// creation and never change; only Status (and its companions UpdatedAt,
// PaidAt, FailureReason) moves, pending -> paid | failed.
type PaymentRecord struct {
	ID              uuid.UUID
	OrderID         string
	RemoteInvoiceID string
	Status          PaymentStatus
	CryptoCurrency  CryptoCurrency
	PayoutAddress   string
	FiatAmount      decimal.Decimal
	FiatCurrency    FiatCurrency
	CryptoAmount    *string
	FailureReason   *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PaidAt          *time.Time
}

package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/coinbridge/checkout-gateway/internal/domain"
)

const TestMerchantID = "merchant-test"

func TestSettings() *domain.GatewaySettings {
	return &domain.GatewaySettings{
		MerchantID:            TestMerchantID,
		PaymentTimeoutMinutes: 120,
		FeePlan:               domain.FeePlanPercentage,
		PriceAdjustmentFactor: decimal.NewFromFloat(0.01),
		Currencies: map[domain.CryptoCurrency]string{
			domain.CurrencyBTC:     "bc1qtest000000000000000000000000000000000",
			domain.CurrencyDOGE:    "DTestAddress0000000000000000000000",
			domain.CurrencyUSDTTRX: "",
		},
	}
}

func SeedSettings(t *testing.T, db *sql.DB, settings *domain.GatewaySettings) {
	t.Helper()

	blob, err := settings.ToJSON()
	if err != nil {
		t.Fatalf("encode settings: %v", err)
	}
	_, err = db.Exec(
		`INSERT INTO gateway_settings (merchant_id, settings) VALUES ($1, $2)
		 ON CONFLICT (merchant_id) DO UPDATE SET settings = $2`,
		settings.MerchantID, blob,
	)
	if err != nil {
		t.Fatalf("seed settings: %v", err)
	}
}

// NewPaymentRecord builds a pending record without inserting it.
func NewPaymentRecord(orderID, invoiceID string, createdAt time.Time) *domain.PaymentRecord {
	return &domain.PaymentRecord{
		ID:              uuid.New(),
		OrderID:         orderID,
		RemoteInvoiceID: invoiceID,
		Status:          domain.PaymentStatusPending,
		CryptoCurrency:  domain.CurrencyBTC,
		PayoutAddress:   "bc1qtest000000000000000000000000000000000",
		FiatAmount:      decimal.NewFromFloat(50.50),
		FiatCurrency:    domain.FiatUSD,
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
}

func SeedPaymentRecord(t *testing.T, db *sql.DB, orderID, invoiceID string, status domain.PaymentStatus, createdAt time.Time) *domain.PaymentRecord {
	t.Helper()

	rec := NewPaymentRecord(orderID, invoiceID, createdAt)
	rec.Status = status

	_, err := db.Exec(
		`INSERT INTO payment_records (
			id, order_id, remote_invoice_id, status, crypto_currency,
			payout_address, fiat_amount, fiat_currency, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.OrderID, rec.RemoteInvoiceID, rec.Status, rec.CryptoCurrency,
		rec.PayoutAddress, rec.FiatAmount, rec.FiatCurrency, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("seed payment record %s: %v", orderID, err)
	}
	return rec
}

func GetRecordStatus(t *testing.T, db *sql.DB, invoiceID string) domain.PaymentStatus {
	t.Helper()

	var status domain.PaymentStatus
	err := db.QueryRow(
		`SELECT status FROM payment_records WHERE remote_invoice_id = $1`, invoiceID,
	).Scan(&status)
	if err != nil {
		t.Fatalf("get record status %s: %v", invoiceID, err)
	}
	return status
}

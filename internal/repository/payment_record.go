package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/coinbridge/checkout-gateway/internal/domain"
)

const paymentRecordColumns = `id, order_id, remote_invoice_id, status, crypto_currency,
	payout_address, fiat_amount, fiat_currency, crypto_amount, failure_reason,
	created_at, updated_at, paid_at`

// TransitionOutcome reports what a terminal-state transition actually did.
// Duplicate and Conflict both leave the record untouched; the caller decides
// whether the conflict is worth logging.
type TransitionOutcome int

const (
	TransitionApplied TransitionOutcome = iota
	TransitionDuplicate
	TransitionConflict
)

type PaymentRecordRepository struct {
	db *sql.DB
}

func NewPaymentRecordRepository(db *sql.DB) *PaymentRecordRepository {
	return &PaymentRecordRepository{db: db}
}

// Insert stores a new pending record. A partial unique index on
// (order_id) WHERE status = 'pending' makes a second pending invoice for the
// same order fail with a unique violation, which surfaces as ErrDuplicateOrder.
func (r *PaymentRecordRepository) Insert(ctx context.Context, rec *domain.PaymentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payment_records (
			id, order_id, remote_invoice_id, status, crypto_currency,
			payout_address, fiat_amount, fiat_currency, crypto_amount, failure_reason,
			created_at, updated_at, paid_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.OrderID, rec.RemoteInvoiceID, rec.Status, rec.CryptoCurrency,
		rec.PayoutAddress, rec.FiatAmount, rec.FiatCurrency, rec.CryptoAmount, rec.FailureReason,
		rec.CreatedAt, rec.UpdatedAt, rec.PaidAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("Insert: order %s: %w", rec.OrderID, domain.ErrDuplicateOrder)
		}
		return fmt.Errorf("Insert: %w", err)
	}
	return nil
}

func (r *PaymentRecordRepository) GetByRemoteInvoiceID(ctx context.Context, invoiceID string) (*domain.PaymentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentRecordColumns+` FROM payment_records WHERE remote_invoice_id = $1`,
		invoiceID,
	)
	rec, err := scanPaymentRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByRemoteInvoiceID: %s: %w", invoiceID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByRemoteInvoiceID: %w", err)
	}
	return rec, nil
}

// GetActiveByOrderID returns the pending record for an order, if any.
func (r *PaymentRecordRepository) GetActiveByOrderID(ctx context.Context, orderID string) (*domain.PaymentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentRecordColumns+` FROM payment_records
		WHERE order_id = $1 AND status = $2`,
		orderID, domain.PaymentStatusPending,
	)
	rec, err := scanPaymentRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetActiveByOrderID: %s: %w", orderID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetActiveByOrderID: %w", err)
	}
	return rec, nil
}

// Transition moves a record to a terminal state. The UPDATE only matches
// records still pending, so concurrent callbacks for the same invoice
// serialize on the row and the first terminal state wins. When no row is
// updated the current state decides the outcome: same target means a
// duplicate delivery, a different terminal state means a conflict. Neither
// mutates anything.
func (r *PaymentRecordRepository) Transition(ctx context.Context, invoiceID string, target domain.PaymentStatus, failureReason *string) (TransitionOutcome, error) {
	if !target.IsTerminal() {
		return TransitionConflict, fmt.Errorf("Transition: target %q is not terminal: %w", target, domain.ErrTerminalState)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_records
		SET status = $2, failure_reason = $3, updated_at = now(),
			paid_at = CASE WHEN $2 = 'paid' THEN now() ELSE paid_at END
		WHERE remote_invoice_id = $1 AND status = 'pending'`,
		invoiceID, target, failureReason,
	)
	if err != nil {
		return TransitionConflict, fmt.Errorf("Transition: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return TransitionConflict, fmt.Errorf("Transition: rows affected: %w", err)
	}
	if rows == 1 {
		return TransitionApplied, nil
	}

	rec, err := r.GetByRemoteInvoiceID(ctx, invoiceID)
	if err != nil {
		return TransitionConflict, fmt.Errorf("Transition: %w", err)
	}
	if rec.Status == target {
		return TransitionDuplicate, nil
	}
	return TransitionConflict, nil
}

// ExpireStale fails pending records created before the cutoff. Used by the
// expiry sweeper for invoices the provider never reported on.
func (r *PaymentRecordRepository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payment_records
		SET status = 'failed', failure_reason = 'expired', updated_at = now()
		WHERE status = 'pending' AND created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("ExpireStale: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ExpireStale: rows affected: %w", err)
	}
	return n, nil
}

func scanPaymentRecord(s scanner) (*domain.PaymentRecord, error) {
	var rec domain.PaymentRecord
	err := s.Scan(
		&rec.ID, &rec.OrderID, &rec.RemoteInvoiceID, &rec.Status, &rec.CryptoCurrency,
		&rec.PayoutAddress, &rec.FiatAmount, &rec.FiatCurrency, &rec.CryptoAmount, &rec.FailureReason,
		&rec.CreatedAt, &rec.UpdatedAt, &rec.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/coinbridge/checkout-gateway/internal/domain"
	"github.com/coinbridge/checkout-gateway/internal/invoicer"
	"github.com/coinbridge/checkout-gateway/internal/repository"
)

type callbackVerifier interface {
	VerifyCallback(body []byte, signature string) (*invoicer.CallbackEvent, error)
}

type transitionStore interface {
	GetByRemoteInvoiceID(ctx context.Context, invoiceID string) (*domain.PaymentRecord, error)
	Transition(ctx context.Context, invoiceID string, target domain.PaymentStatus, failureReason *string) (repository.TransitionOutcome, error)
}

// NotificationService applies provider callbacks to payment records. Each
// record changes state at most once across its lifetime; everything after the
// first terminal notification is a no-op.
type NotificationService struct {
	verifier callbackVerifier
	records  transitionStore
	logger   *slog.Logger
}

func NewNotificationService(verifier callbackVerifier, records transitionStore, logger *slog.Logger) *NotificationService {
	return &NotificationService{verifier: verifier, records: records, logger: logger}
}

// Handle verifies and applies one raw callback. Verification failures and
// unknown invoices return wrapped sentinel errors without touching any
// record; the HTTP layer decides how to acknowledge them.
func (s *NotificationService) Handle(ctx context.Context, body []byte, signature string) error {
	event, err := s.verifier.VerifyCallback(body, signature)
	if err != nil {
		return fmt.Errorf("Handle: %w", err)
	}

	if _, err := s.records.GetByRemoteInvoiceID(ctx, event.InvoiceID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("Handle: invoice %s: %w", event.InvoiceID, domain.ErrUnknownInvoice)
		}
		// A transient lookup failure must not be acked as unknown; surface it
		// so the provider redelivers the callback.
		return fmt.Errorf("Handle: invoice %s: %w", event.InvoiceID, err)
	}

	target, terminal := targetState(event.Status)
	if !terminal {
		s.logger.Info("informational invoice status, no transition",
			"invoice_id", event.InvoiceID,
			"remote_status", event.Status,
		)
		return nil
	}

	var reason *string
	if target == domain.PaymentStatusFailed {
		r := event.Status
		reason = &r
	}

	outcome, err := s.records.Transition(ctx, event.InvoiceID, target, reason)
	if err != nil {
		return fmt.Errorf("Handle: invoice %s: %w", event.InvoiceID, err)
	}

	switch outcome {
	case repository.TransitionApplied:
		s.logger.Info("payment transitioned",
			"invoice_id", event.InvoiceID,
			"status", target,
			"remote_status", event.Status,
		)
	case repository.TransitionDuplicate:
		s.logger.Info("duplicate callback, already applied",
			"invoice_id", event.InvoiceID,
			"status", target,
		)
	case repository.TransitionConflict:
		// First terminal state wins; a contradicting late callback is logged
		// but acknowledged so the provider stops retrying it.
		s.logger.Warn("conflicting callback ignored",
			"invoice_id", event.InvoiceID,
			"rejected_status", target,
		)
	}

	return nil
}

// targetState maps a provider-reported status onto the local state machine.
// Only "paid" succeeds; creation and partial-payment progress reports carry
// no transition; every other status is terminal failure.
func targetState(remote string) (domain.PaymentStatus, bool) {
	switch remote {
	case "paid":
		return domain.PaymentStatusPaid, true
	case "created", "pending", "partpaid":
		return "", false
	default:
		return domain.PaymentStatusFailed, true
	}
}

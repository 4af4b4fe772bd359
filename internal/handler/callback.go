package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/coinbridge/checkout-gateway/internal/domain"
	"github.com/coinbridge/checkout-gateway/internal/logging"
)

type notificationService interface {
	Handle(ctx context.Context, body []byte, signature string) error
}

// CallbackHandler is the inbound webhook endpoint the invoicing provider
// calls with invoice status changes.
type CallbackHandler struct {
	notifications notificationService
}

func NewCallbackHandler(notifications notificationService) *CallbackHandler {
	return &CallbackHandler{notifications: notifications}
}

const signatureHeader = "X-Callback-Signature"

// ReceiveInvoicerCallback acknowledges with 2xx anything that should not be
// redelivered: applied transitions, duplicates, conflicts and unknown
// invoices. Only verification failures get a 4xx, and the provider owns its
// retry policy for those.
func (h *CallbackHandler) ReceiveInvoicerCallback(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		log.Error("failed to read callback body", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	err = h.notifications.Handle(r.Context(), body, r.Header.Get(signatureHeader))
	switch {
	case err == nil:
		RespondSuccess(w, http.StatusOK, map[string]string{"status": "processed"})
	case errors.Is(err, domain.ErrInvalidSignature):
		log.Warn("callback signature verification failed")
		RespondAppError(w, ErrInvalidSignature, nil)
	case errors.Is(err, domain.ErrMalformedPayload):
		log.Warn("malformed callback payload", "error", err)
		RespondAppError(w, ErrInvalidRequest, nil)
	case errors.Is(err, domain.ErrUnknownInvoice):
		// Never create a record from a callback; ack so the provider stops
		// retrying a notification we can do nothing with.
		log.Warn("callback for unknown invoice ignored", "error", err)
		RespondSuccess(w, http.StatusOK, map[string]string{"status": "ignored"})
	default:
		log.Error("failed to process callback", "error", err)
		RespondAppError(w, ErrInternalError, nil)
	}
}

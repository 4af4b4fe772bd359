package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrMissingToken     = &AppError{http.StatusUnauthorized, "MISSING_TOKEN", "Authorization header required"}
	ErrInvalidToken     = &AppError{http.StatusUnauthorized, "INVALID_TOKEN", "Token is invalid or expired"}
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrConfiguration    = &AppError{http.StatusUnprocessableEntity, "INVALID_CONFIGURATION", "Gateway configuration is invalid"}
	ErrInvalidCurrency  = &AppError{http.StatusBadRequest, "CURRENCY_NOT_OFFERED", "Currency is not offered for payment"}
	ErrUnknownCurrency  = &AppError{http.StatusBadRequest, "UNKNOWN_CURRENCY", "Unknown currency code"}
	ErrDuplicateOrder   = &AppError{http.StatusConflict, "DUPLICATE_ORDER", "Order already has a pending invoice"}
	ErrRemoteService    = &AppError{http.StatusBadGateway, "INVOICER_UNAVAILABLE", "Invoicing service unavailable, try again"}
	ErrInvoiceRejected  = &AppError{http.StatusUnprocessableEntity, "INVOICE_REJECTED", "Invoice request was rejected"}
	ErrInvalidSignature = &AppError{http.StatusUnauthorized, "INVALID_SIGNATURE", "Callback signature is invalid"}
	ErrInvalidAmount    = &AppError{http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than zero"}
)

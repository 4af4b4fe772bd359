package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/coinbridge/checkout-gateway/internal/domain"
	"github.com/coinbridge/checkout-gateway/internal/logging"
)

type settingsAdminService interface {
	Load(ctx context.Context) (*domain.GatewaySettings, error)
	Save(ctx context.Context, settings *domain.GatewaySettings) error
}

// SettingsHandler is the merchant-facing configuration API.
type SettingsHandler struct {
	settings settingsAdminService
}

func NewSettingsHandler(settings settingsAdminService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

type settingsDTO struct {
	MerchantID            string            `json:"merchant_id"`
	PaymentTimeoutMinutes int               `json:"payment_timeout_minutes"`
	FeePlan               string            `json:"fee_plan"`
	PriceAdjustmentFactor string            `json:"price_adjustment_factor"`
	Currencies            map[string]string `json:"currencies"`
	DisplayLogo           bool              `json:"display_logo"`
	DebugMode             bool              `json:"debug_mode"`
}

func toSettingsDTO(s *domain.GatewaySettings) settingsDTO {
	currencies := make(map[string]string, len(s.Currencies))
	for code, address := range s.Currencies {
		currencies[string(code)] = address
	}
	return settingsDTO{
		MerchantID:            s.MerchantID,
		PaymentTimeoutMinutes: s.PaymentTimeoutMinutes,
		FeePlan:               string(s.FeePlan),
		PriceAdjustmentFactor: s.PriceAdjustmentFactor.String(),
		Currencies:            currencies,
		DisplayLogo:           s.DisplayLogo,
		DebugMode:             s.DebugMode,
	}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Load(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load settings", "error", err)
		RespondDomainError(w, err)
		return
	}
	RespondSuccess(w, http.StatusOK, toSettingsDTO(settings))
}

type updateSettingsRequest struct {
	PaymentTimeoutMinutes int               `json:"payment_timeout_minutes"`
	FeePlan               string            `json:"fee_plan"`
	PriceAdjustmentFactor string            `json:"price_adjustment_factor"`
	Currencies            map[string]string `json:"currencies"`
	DisplayLogo           bool              `json:"display_logo"`
	DebugMode             bool              `json:"debug_mode"`
}

func (r updateSettingsRequest) Validate() []FieldError {
	var errs []FieldError

	if r.PaymentTimeoutMinutes < 1 {
		errs = append(errs, FieldError{Field: "payment_timeout_minutes", Message: "must be at least 1"})
	}

	if !domain.FeePlan(r.FeePlan).IsValid() {
		errs = append(errs, FieldError{Field: "fee_plan", Message: "must be fixed or percentage"})
	}

	if r.PriceAdjustmentFactor != "" {
		if _, err := decimal.NewFromString(r.PriceAdjustmentFactor); err != nil {
			errs = append(errs, FieldError{Field: "price_adjustment_factor", Message: "must be a decimal number"})
		}
	}

	for code := range r.Currencies {
		if !domain.CryptoCurrency(code).IsValid() {
			errs = append(errs, FieldError{Field: "currencies." + code, Message: "unknown currency code"})
		}
	}

	return errs
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	var req updateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	settings, err := h.settings.Load(r.Context())
	if err != nil {
		log.Error("failed to load settings", "error", err)
		RespondDomainError(w, err)
		return
	}

	settings.PaymentTimeoutMinutes = req.PaymentTimeoutMinutes
	settings.DisplayLogo = req.DisplayLogo
	settings.DebugMode = req.DebugMode

	if err := settings.SetFeePlan(domain.FeePlan(req.FeePlan)); err != nil {
		RespondDomainError(w, err)
		return
	}
	if req.PriceAdjustmentFactor != "" {
		factor, _ := decimal.NewFromString(req.PriceAdjustmentFactor)
		settings.PriceAdjustmentFactor = factor
	}
	for code, address := range req.Currencies {
		if err := settings.SetCurrencyAddress(domain.CryptoCurrency(code), address); err != nil {
			RespondDomainError(w, err)
			return
		}
	}

	if err := h.settings.Save(r.Context(), settings); err != nil {
		log.Error("failed to save settings", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusOK, toSettingsDTO(settings))
}

package domain

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

type FeePlan string

const (
	FeePlanFixed      FeePlan = "fixed"
	FeePlanPercentage FeePlan = "percentage"
)

func (p FeePlan) IsValid() bool {
	return p == FeePlanFixed || p == FeePlanPercentage
}

const DefaultPaymentTimeoutMinutes = 120

// GatewaySettings is the merchant-level configuration blob. It is persisted
// as opaque JSON by the settings repository and passed explicitly into each
// flow; there is no process-wide settings singleton.
type GatewaySettings struct {
	MerchantID            string                    `json:"merchant_id"`
	PaymentTimeoutMinutes int                       `json:"payment_timeout_minutes"`
	FeePlan               FeePlan                   `json:"fee_plan"`
	PriceAdjustmentFactor decimal.Decimal           `json:"price_adjustment_factor"`
	Currencies            map[CryptoCurrency]string `json:"currencies"`
	DisplayLogo           bool                      `json:"display_logo"`
	DebugMode             bool                      `json:"debug_mode"`
}

func DefaultSettings(merchantID string) *GatewaySettings {
	return &GatewaySettings{
		MerchantID:            merchantID,
		PaymentTimeoutMinutes: DefaultPaymentTimeoutMinutes,
		FeePlan:               FeePlanPercentage,
		PriceAdjustmentFactor: decimal.NewFromFloat(0.01),
		Currencies:            map[CryptoCurrency]string{},
	}
}

// SettingsFromJSON decodes a stored blob and rejects currency codes outside
// the supported registry, so bad codes fail at load time rather than at
// checkout time.
func SettingsFromJSON(raw []byte) (*GatewaySettings, error) {
	var s GatewaySettings
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("SettingsFromJSON: %w", err)
	}
	for code := range s.Currencies {
		if !code.IsValid() {
			return nil, fmt.Errorf("SettingsFromJSON: %q: %w", code, ErrUnknownCurrency)
		}
	}
	if s.Currencies == nil {
		s.Currencies = map[CryptoCurrency]string{}
	}
	return &s, nil
}

func (s *GatewaySettings) ToJSON() ([]byte, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("ToJSON: %w", err)
	}
	return raw, nil
}

func (s *GatewaySettings) Validate() error {
	if s.MerchantID == "" {
		return fmt.Errorf("Validate: merchant id is required: %w", ErrConfiguration)
	}
	if s.PaymentTimeoutMinutes < 1 {
		return fmt.Errorf("Validate: payment timeout must be at least 1 minute: %w", ErrConfiguration)
	}
	if !s.FeePlan.IsValid() {
		return fmt.Errorf("Validate: fee plan %q: %w", s.FeePlan, ErrConfiguration)
	}
	for code := range s.Currencies {
		if !code.IsValid() {
			return fmt.Errorf("Validate: %q: %w", code, ErrUnknownCurrency)
		}
	}
	return nil
}

// CurrenciesOffered returns the currencies a customer may pay with: those
// with a configured payout address, sorted by code for determinism.
func (s *GatewaySettings) CurrenciesOffered() []CryptoCurrency {
	var offered []CryptoCurrency
	for code, address := range s.Currencies {
		if address != "" {
			offered = append(offered, code)
		}
	}
	sort.Slice(offered, func(i, j int) bool { return offered[i] < offered[j] })
	return offered
}

func (s *GatewaySettings) Offers(code CryptoCurrency) bool {
	return s.Currencies[code] != ""
}

func (s *GatewaySettings) PayoutAddress(code CryptoCurrency) string {
	return s.Currencies[code]
}

func (s *GatewaySettings) SetCurrencyAddress(code CryptoCurrency, address string) error {
	if !code.IsValid() {
		return fmt.Errorf("SetCurrencyAddress: %q: %w", code, ErrUnknownCurrency)
	}
	if s.Currencies == nil {
		s.Currencies = map[CryptoCurrency]string{}
	}
	s.Currencies[code] = address
	return nil
}

func (s *GatewaySettings) SetFeePlan(plan FeePlan) error {
	if !plan.IsValid() {
		return fmt.Errorf("SetFeePlan: %q: %w", plan, ErrConfiguration)
	}
	s.FeePlan = plan
	return nil
}

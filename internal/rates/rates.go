// Package rates provides fiat-to-crypto conversion for the mock invoicer.
// The real provider converts server-side; these static rates only exist so
// local development and tests produce plausible crypto amounts.
package rates

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/coinbridge/checkout-gateway/internal/domain"
)

type Service struct {
	rates map[string]decimal.Decimal
}

func NewService() *Service {
	return &Service{
		rates: map[string]decimal.Decimal{
			"USD_btc":      decimal.NewFromFloat(0.0000165),
			"EUR_btc":      decimal.NewFromFloat(0.0000180),
			"GBP_btc":      decimal.NewFromFloat(0.0000209),
			"USD_tbtc":     decimal.NewFromFloat(0.0000165),
			"USD_ltc":      decimal.NewFromFloat(0.0152),
			"USD_doge":     decimal.NewFromFloat(8.13),
			"USD_bch":      decimal.NewFromFloat(0.00305),
			"USD_trx":      decimal.NewFromFloat(8.62),
			"USD_usdt@trx": decimal.NewFromFloat(1.0),
			"USD_usdc@trx": decimal.NewFromFloat(1.0),
		},
	}
}

func pairKey(fiat domain.FiatCurrency, crypto domain.CryptoCurrency) string {
	return string(fiat) + "_" + string(crypto)
}

func (s *Service) Convert(amount decimal.Decimal, fiat domain.FiatCurrency, crypto domain.CryptoCurrency) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("Convert: %w", domain.ErrInvalidAmount)
	}

	rate, ok := s.rates[pairKey(fiat, crypto)]
	if !ok {
		return decimal.Zero, fmt.Errorf("Convert: unsupported pair %s/%s: %w", fiat, crypto, domain.ErrUnknownCurrency)
	}

	return amount.Mul(rate).Round(8), nil
}

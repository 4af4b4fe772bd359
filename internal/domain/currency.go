package domain

// CryptoCurrency is a provider currency code. Token currencies carry their
// network after an @, e.g. "usdt@trx".
type CryptoCurrency string

const (
	CurrencyBTC     CryptoCurrency = "btc"
	CurrencyTBTC    CryptoCurrency = "tbtc"
	CurrencyLTC     CryptoCurrency = "ltc"
	CurrencyDOGE    CryptoCurrency = "doge"
	CurrencyBCH     CryptoCurrency = "bch"
	CurrencyTRX     CryptoCurrency = "trx"
	CurrencyUSDTTRX CryptoCurrency = "usdt@trx"
	CurrencyUSDCTRX CryptoCurrency = "usdc@trx"
)

var supportedCurrencies = map[CryptoCurrency]string{
	CurrencyBTC:     "Bitcoin",
	CurrencyTBTC:    "Bitcoin Testnet",
	CurrencyLTC:     "Litecoin",
	CurrencyDOGE:    "Dogecoin",
	CurrencyBCH:     "Bitcoin Cash",
	CurrencyTRX:     "Tron",
	CurrencyUSDTTRX: "Tether (TRC-20)",
	CurrencyUSDCTRX: "USD Coin (TRC-20)",
}

func (c CryptoCurrency) IsValid() bool {
	_, ok := supportedCurrencies[c]
	return ok
}

func (c CryptoCurrency) Name() string {
	return supportedCurrencies[c]
}

// FiatCurrency is the ISO 4217 code of an order total.
type FiatCurrency string

const (
	FiatUSD FiatCurrency = "USD"
	FiatEUR FiatCurrency = "EUR"
	FiatGBP FiatCurrency = "GBP"
)

func (c FiatCurrency) IsValid() bool {
	switch c {
	case FiatUSD, FiatEUR, FiatGBP:
		return true
	}
	return false
}

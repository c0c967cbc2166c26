package calc

import (
	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code restricted to the currencies the trading desk
// actually quotes in.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyRUB Currency = "RUB"
	CurrencyCNY Currency = "CNY"
	CurrencyTRY Currency = "TRY"
	CurrencyAED Currency = "AED"
	CurrencyINR Currency = "INR"
)

var knownCurrencies = map[Currency]bool{
	CurrencyUSD: true,
	CurrencyEUR: true,
	CurrencyRUB: true,
	CurrencyCNY: true,
	CurrencyTRY: true,
	CurrencyAED: true,
	CurrencyINR: true,
}

// Valid reports whether c is a supported currency code.
func (c Currency) Valid() bool {
	return knownCurrencies[c]
}

// Money is an amount tagged with its currency. Monetary fields are never two
// loose parallel fields; the pair travels together so the convert-once rule
// can be enforced at the boundary.
type Money struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// USD builds a Money in the reference currency.
func USD(amount decimal.Decimal) Money {
	return Money{Amount: amount, Currency: CurrencyUSD}
}

// IsZero reports whether the amount is zero regardless of currency.
func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

// RateTable holds caller-supplied exchange rates expressed as USD per one
// unit of the keyed currency. The engine only consumes rates; fetching them
// is the rate service's job. The table is read-only for the duration of one
// calculation.
type RateTable map[Currency]decimal.Decimal

// ToUSD converts m into the USD reference currency. A missing or
// non-positive rate fails with ErrMissingExchangeRate; the field name is
// carried so the caller can point at the offending input.
func (t RateTable) ToUSD(m Money, field string) (decimal.Decimal, error) {
	if m.Currency == CurrencyUSD {
		return m.Amount, nil
	}
	rate, ok := t[m.Currency]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, missingRate(field, m.Currency)
	}
	return m.Amount.Mul(rate), nil
}

// FromUSD converts a USD amount into the target currency.
func (t RateTable) FromUSD(amount decimal.Decimal, to Currency, field string) (decimal.Decimal, error) {
	if to == CurrencyUSD {
		return amount, nil
	}
	rate, ok := t[to]
	if !ok || !rate.IsPositive() {
		return decimal.Zero, missingRate(field, to)
	}
	return amount.Div(rate), nil
}

// Convert converts m into the target currency, crossing through USD for
// non-USD pairs.
func (t RateTable) Convert(m Money, to Currency, field string) (Money, error) {
	if m.Currency == to {
		return m, nil
	}
	usd, err := t.ToUSD(m, field)
	if err != nil {
		return Money{}, err
	}
	amount, err := t.FromUSD(usd, to, field)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: amount, Currency: to}, nil
}

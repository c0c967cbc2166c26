package calc_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk-api/internal/calc"
)

func testRates() calc.RateTable {
	return calc.RateTable{
		calc.CurrencyEUR: dec("1.0850"),
		calc.CurrencyRUB: dec("0.0109"),
		calc.CurrencyCNY: dec("0.1395"),
		calc.CurrencyTRY: dec("0.0304"),
		calc.CurrencyAED: dec("0.2723"),
		calc.CurrencyINR: dec("0.0120"),
	}
}

func TestRateTable_ToUSD(t *testing.T) {
	rates := testRates()

	t.Run("usd passes through untouched", func(t *testing.T) {
		got, err := rates.ToUSD(calc.USD(dec("123.45")), "base_price")
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("123.45")))
	})

	t.Run("converts through the published rate", func(t *testing.T) {
		got, err := rates.ToUSD(calc.Money{Amount: dec("200"), Currency: calc.CurrencyEUR}, "base_price")
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("217")), "got %s", got)
	})

	t.Run("missing rate is a typed error", func(t *testing.T) {
		_, err := calc.RateTable{}.ToUSD(calc.Money{Amount: dec("1"), Currency: calc.CurrencyEUR}, "base_price")
		require.Error(t, err)
		assert.True(t, calc.IsKind(err, calc.ErrMissingExchangeRate))
	})

	t.Run("non-positive rate is a typed error", func(t *testing.T) {
		rates := calc.RateTable{calc.CurrencyEUR: decimal.Zero}
		_, err := rates.ToUSD(calc.Money{Amount: dec("1"), Currency: calc.CurrencyEUR}, "base_price")
		require.Error(t, err)
		assert.True(t, calc.IsKind(err, calc.ErrMissingExchangeRate))
	})
}

func TestRateTable_RoundTrip(t *testing.T) {
	rates := testRates()
	epsilon := dec("0.000001")

	for _, currency := range []calc.Currency{
		calc.CurrencyEUR,
		calc.CurrencyRUB,
		calc.CurrencyCNY,
		calc.CurrencyTRY,
	} {
		t.Run(string(currency), func(t *testing.T) {
			original := dec("1537.42")
			usd, err := rates.ToUSD(calc.Money{Amount: original, Currency: currency}, "amount")
			require.NoError(t, err)
			back, err := rates.FromUSD(usd, currency, "amount")
			require.NoError(t, err)

			drift := back.Sub(original).Abs()
			assert.True(t, drift.LessThan(epsilon), "round trip drift %s", drift)
		})
	}
}

func TestRateTable_ConvertCrossesThroughUSD(t *testing.T) {
	rates := testRates()

	// EUR 100 -> USD 108.50 -> RUB at 0.0109 per RUB.
	got, err := rates.Convert(calc.Money{Amount: dec("100"), Currency: calc.CurrencyEUR}, calc.CurrencyRUB, "amount")
	require.NoError(t, err)
	want := dec("108.50").Div(dec("0.0109"))
	assert.True(t, got.Amount.Sub(want).Abs().LessThan(dec("0.000001")), "got %s", got.Amount)
	assert.Equal(t, calc.CurrencyRUB, got.Currency)
}

func TestMoney_IsZero(t *testing.T) {
	assert.True(t, calc.Money{}.IsZero())
	assert.True(t, calc.Money{Currency: calc.CurrencyEUR}.IsZero())
	assert.False(t, calc.USD(dec("0.01")).IsZero())
}

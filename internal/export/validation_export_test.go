package export_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk-api/internal/calc"
	"github.com/dealdesk/dealdesk-api/internal/export"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestBuildValidationRows_MatchesEngineConversion(t *testing.T) {
	in := &calc.QuoteCalculationInput{
		QuoteID:          uuid.MustParse("6a0bfa36-1c34-4f6e-9b1b-6a51e1c7a001"),
		QuoteCurrency:    calc.CurrencyUSD,
		PurchaseCurrency: calc.CurrencyUSD,
		SellerCompany:    calc.SellerMasterBearingRU,
		SupplierCountry:  calc.CountryGermany,
		Incoterms:        calc.IncotermsEXW,
		SaleType:         calc.SaleTypeSupply,
		MarkupRate:       dec("0.20"),
		BrokerageCost:    calc.Money{Amount: dec("100"), Currency: calc.CurrencyEUR},
		DMFee:            calc.Money{Amount: dec("50"), Currency: calc.CurrencyEUR},
		DMFeeType:        calc.DMFeeFixed,
		Rates: calc.RateTable{
			calc.CurrencyEUR: dec("1.08"),
		},
	}
	items := []calc.ProductCalculationInput{
		{
			ItemID:    uuid.MustParse("c0a80001-0000-4000-8000-000000000001"),
			Name:      "6205-2RS",
			BasePrice: calc.USD(dec("1000")),
			Quantity:  dec("1"),
		},
	}

	result, err := calc.NewCalculator().Calculate(in, items)
	require.NoError(t, err)

	sheet, err := export.BuildValidationRows(in, result)
	require.NoError(t, err)

	// The sheet recomputes the quote-level conversions with the same formula
	// the engine used.
	assert.Equal(t, "108.00", sheet.BrokerageUSD)
	assert.Equal(t, "54.00", sheet.DMFeeUSD)
	assert.Equal(t, result.TotalSaleUSD.StringFixed(2), sheet.TotalSaleUSD)

	require.Len(t, sheet.Items, 1)
	row := sheet.Items[0]
	assert.Equal(t, result.Items[0].NetCostUSD.StringFixed(2), row.NetCostUSD)
	assert.Equal(t, result.Items[0].SaleAmountUSD.StringFixed(2), row.SaleUSD)
	assert.Empty(t, row.Error)
}

func TestBuildValidationRows_FailedItemCarriesMessage(t *testing.T) {
	in := &calc.QuoteCalculationInput{
		QuoteID:          uuid.MustParse("6a0bfa36-1c34-4f6e-9b1b-6a51e1c7a001"),
		QuoteCurrency:    calc.CurrencyUSD,
		PurchaseCurrency: calc.CurrencyUSD,
		SellerCompany:    calc.SellerMasterBearingRU,
		SupplierCountry:  calc.CountryGermany,
		Incoterms:        calc.IncotermsEXW,
		SaleType:         calc.SaleTypeTransit,
		Rates:            calc.RateTable{},
	}
	items := []calc.ProductCalculationInput{
		{
			ItemID:    uuid.MustParse("c0a80001-0000-4000-8000-000000000001"),
			BasePrice: calc.Money{Amount: dec("100"), Currency: calc.CurrencyEUR},
			Quantity:  dec("1"),
		},
	}

	result, err := calc.NewCalculator().Calculate(in, items)
	require.NoError(t, err)

	sheet, err := export.BuildValidationRows(in, result)
	require.NoError(t, err)
	require.Len(t, sheet.Items, 1)
	assert.NotEmpty(t, sheet.Items[0].Error)
	assert.Empty(t, sheet.Items[0].SaleUSD)
}

func TestBuildValidationRows_MissingRateForBrokerage(t *testing.T) {
	in := &calc.QuoteCalculationInput{
		QuoteID:       uuid.MustParse("6a0bfa36-1c34-4f6e-9b1b-6a51e1c7a001"),
		BrokerageCost: calc.Money{Amount: dec("100"), Currency: calc.CurrencyEUR},
		Rates:         calc.RateTable{},
	}
	result := &calc.QuoteCalculationResult{QuoteID: in.QuoteID}

	_, err := export.BuildValidationRows(in, result)
	require.Error(t, err)
	assert.True(t, calc.IsKind(err, calc.ErrMissingExchangeRate))
}

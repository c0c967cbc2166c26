package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk-api/internal/calc"
	"github.com/dealdesk/dealdesk-api/internal/mapping"
	"github.com/dealdesk/dealdesk-api/internal/services"
)

type fakeStore struct {
	saved []*calc.QuoteCalculationResult
	err   error
}

func (f *fakeStore) SaveSnapshot(ctx context.Context, result *calc.QuoteCalculationResult) error {
	if f.err != nil {
		return f.err
	}
	f.saved = append(f.saved, result)
	return nil
}

func quoteRecord() *mapping.QuoteRecord {
	return &mapping.QuoteRecord{
		QuoteID:          "6a0bfa36-1c34-4f6e-9b1b-6a51e1c7a001",
		QuoteCurrency:    "USD",
		PurchaseCurrency: "EUR",
		SellerCompany:    "Gulf Bearing FZE",
		SupplierCountry:  "Germany",
		Incoterms:        "EXW",
		SaleType:         "transit",
		MarkupRate:       dec("0.20"),
	}
}

func itemRecords() []mapping.ItemRecord {
	return []mapping.ItemRecord{
		{
			ItemID:    "c0a80001-0000-4000-8000-000000000001",
			Name:      "6205-2RS",
			BasePrice: mapping.MoneyRecord{Amount: dec("100"), Currency: "EUR"},
			Quantity:  dec("1"),
		},
	}
}

func TestCalculateQuote(t *testing.T) {
	rateService := services.NewRateService(&fakeFeed{rates: feedSnapshot()})
	store := &fakeStore{}
	service := services.NewCalculationService(rateService, store)

	result, err := service.CalculateQuote(context.Background(), quoteRecord(), itemRecords(), nil)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	require.Nil(t, result.Items[0].Err)

	// EUR 100 at the feed cross rate, 20% markup.
	wantSale := dec("100").Mul(dec("100.34")).Div(dec("92.5")).Mul(dec("1.20"))
	assert.True(t, result.Items[0].SaleAmountUSD.Sub(wantSale).Abs().LessThan(dec("0.000001")),
		"sale = %s", result.Items[0].SaleAmountUSD)

	require.Len(t, store.saved, 1)
	assert.Equal(t, result.QuoteID, store.saved[0].QuoteID)
}

func TestCalculateQuote_RateOverridesWin(t *testing.T) {
	rateService := services.NewRateService(&fakeFeed{rates: feedSnapshot()})
	service := services.NewCalculationService(rateService, nil)

	overrides := calc.RateTable{calc.CurrencyEUR: dec("1.10")}
	result, err := service.CalculateQuote(context.Background(), quoteRecord(), itemRecords(), overrides)
	require.NoError(t, err)
	require.Nil(t, result.Items[0].Err)

	// EUR 100 at the pinned 1.10 override, 20% markup.
	assert.True(t, result.Items[0].SaleAmountUSD.Equal(dec("132")),
		"sale = %s", result.Items[0].SaleAmountUSD)
}

func TestCalculateQuote_MappingFailure(t *testing.T) {
	rateService := services.NewRateService(&fakeFeed{rates: feedSnapshot()})
	service := services.NewCalculationService(rateService, nil)

	record := quoteRecord()
	record.SellerCompany = "ООО Ромашка"

	_, err := service.CalculateQuote(context.Background(), record, itemRecords(), nil)
	require.Error(t, err)
	assert.True(t, calc.IsKind(err, calc.ErrUnrecognizedValue))
}

func TestCalculateQuote_StoreFailureIsNotFatal(t *testing.T) {
	rateService := services.NewRateService(&fakeFeed{rates: feedSnapshot()})
	store := &fakeStore{err: assert.AnError}
	service := services.NewCalculationService(rateService, store)

	result, err := service.CalculateQuote(context.Background(), quoteRecord(), itemRecords(), nil)
	require.NoError(t, err)
	assert.NotNil(t, result)
}

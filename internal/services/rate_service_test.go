package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk-api/internal/calc"
	"github.com/dealdesk/dealdesk-api/internal/client/cbr"
	"github.com/dealdesk/dealdesk-api/internal/logger"
	"github.com/dealdesk/dealdesk-api/internal/services"
)

func init() {
	logger.InitLogger("local")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fakeFeed struct {
	rates *cbr.DailyRates
	err   error
	calls int
}

func (f *fakeFeed) GetDailyRates(ctx context.Context) (*cbr.DailyRates, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.rates, nil
}

func feedSnapshot() *cbr.DailyRates {
	return &cbr.DailyRates{
		Date: "29.08.2026",
		Rates: map[string]decimal.Decimal{
			"USD": dec("92.5"),
			"EUR": dec("100.34"),
			"CNY": dec("12.95"),
			"JPY": dec("0.62"), // unsupported, must be skipped
		},
	}
}

func TestGetRateTable_FromFeed(t *testing.T) {
	feed := &fakeFeed{rates: feedSnapshot()}
	service := services.NewRateService(feed)

	table, source, err := service.GetRateTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, services.RateSourceFeed, source)

	// Feed quotes RUB per unit; the table is USD per unit, crossed through
	// the USD anchor.
	assert.True(t, table[calc.CurrencyEUR].Equal(dec("100.34").Div(dec("92.5"))))
	assert.True(t, table[calc.CurrencyRUB].Equal(decimal.NewFromInt(1).Div(dec("92.5"))))
	_, hasJPY := table[calc.Currency("JPY")]
	assert.False(t, hasJPY)
}

func TestGetRateTable_CachesFeedResult(t *testing.T) {
	feed := &fakeFeed{rates: feedSnapshot()}
	service := services.NewRateService(feed)

	_, source, err := service.GetRateTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, services.RateSourceFeed, source)

	_, source, err = service.GetRateTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, services.RateSourceCache, source)
	assert.Equal(t, 1, feed.calls)
}

func TestGetRateTable_FallbackWhenFeedDown(t *testing.T) {
	feed := &fakeFeed{err: errors.New("connection refused")}
	service := services.NewRateService(feed)

	table, source, err := service.GetRateTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, services.RateSourceFallback, source)
	assert.True(t, table[calc.CurrencyEUR].IsPositive())
}

func TestGetRateTable_FallbackWhenAnchorMissing(t *testing.T) {
	snapshot := feedSnapshot()
	delete(snapshot.Rates, "USD")
	service := services.NewRateService(&fakeFeed{rates: snapshot})

	_, source, err := service.GetRateTable(context.Background())
	require.NoError(t, err)
	assert.Equal(t, services.RateSourceFallback, source)
}

func TestGetRate(t *testing.T) {
	service := services.NewRateService(&fakeFeed{rates: feedSnapshot()})

	rate, _, err := service.GetRate(context.Background(), calc.CurrencyEUR)
	require.NoError(t, err)
	assert.True(t, rate.IsPositive())

	rate, _, err = service.GetRate(context.Background(), calc.CurrencyUSD)
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromInt(1)))

	// INR is supported by the engine but absent from this feed snapshot.
	_, _, err = service.GetRate(context.Background(), calc.CurrencyINR)
	require.Error(t, err)
	assert.True(t, calc.IsKind(err, calc.ErrMissingExchangeRate))
}

func TestMergeOverrides(t *testing.T) {
	base := calc.RateTable{
		calc.CurrencyEUR: dec("1.08"),
		calc.CurrencyCNY: dec("0.14"),
	}
	merged := services.MergeOverrides(base, calc.RateTable{
		calc.CurrencyEUR: dec("1.20"),
	})

	assert.True(t, merged[calc.CurrencyEUR].Equal(dec("1.20")))
	assert.True(t, merged[calc.CurrencyCNY].Equal(dec("0.14")))
	// The base table is not mutated.
	assert.True(t, base[calc.CurrencyEUR].Equal(dec("1.08")))
}

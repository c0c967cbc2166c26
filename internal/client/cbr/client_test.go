package cbr_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk-api/internal/client/cbr"
	"github.com/dealdesk/dealdesk-api/internal/logger"
)

func init() {
	logger.InitLogger("local")
}

const feedSample = `<?xml version="1.0" encoding="UTF-8"?>
<ValCurs Date="29.08.2026" name="Foreign Currency Market">
  <Valute ID="R01235">
    <NumCode>840</NumCode>
    <CharCode>USD</CharCode>
    <Nominal>1</Nominal>
    <Name>Доллар США</Name>
    <Value>92,5000</Value>
    <VunitRate>92,5</VunitRate>
  </Valute>
  <Valute ID="R01239">
    <NumCode>978</NumCode>
    <CharCode>EUR</CharCode>
    <Nominal>1</Nominal>
    <Name>Евро</Name>
    <Value>100,3400</Value>
    <VunitRate>100,34</VunitRate>
  </Valute>
  <Valute ID="R01700J">
    <NumCode>949</NumCode>
    <CharCode>TRY</CharCode>
    <Nominal>10</Nominal>
    <Name>Турецких лир</Name>
    <Value>28,1300</Value>
  </Valute>
</ValCurs>`

func TestGetDailyRates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/scripts/XML_daily.asp", r.URL.Path)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(feedSample))
	}))
	defer server.Close()

	client := cbr.NewClient(server.URL)
	rates, err := client.GetDailyRates(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "29.08.2026", rates.Date)
	assert.True(t, rates.Rates["USD"].Equal(decimal.RequireFromString("92.5")))
	assert.True(t, rates.Rates["EUR"].Equal(decimal.RequireFromString("100.34")))
	// No per-unit rate published: the ten-lira nominal is divided out.
	assert.True(t, rates.Rates["TRY"].Equal(decimal.RequireFromString("2.813")))
}

func TestGetDailyRates_FeedDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := cbr.NewClient(server.URL)
	_, err := client.GetDailyRates(context.Background())
	require.Error(t, err)
}

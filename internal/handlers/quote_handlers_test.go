package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealdesk/dealdesk-api/internal/calc"
	"github.com/dealdesk/dealdesk-api/internal/client/cbr"
	"github.com/dealdesk/dealdesk-api/internal/handlers"
	"github.com/dealdesk/dealdesk-api/internal/logger"
	"github.com/dealdesk/dealdesk-api/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitLogger("local")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type staticFeed struct{}

func (staticFeed) GetDailyRates(ctx context.Context) (*cbr.DailyRates, error) {
	return &cbr.DailyRates{
		Date: "29.08.2026",
		Rates: map[string]decimal.Decimal{
			"USD": dec("92.5"),
			"EUR": dec("100.34"),
		},
	}, nil
}

func newRouter() *gin.Engine {
	rateService := services.NewRateService(staticFeed{})
	calculationService := services.NewCalculationService(rateService, nil)

	router := gin.New()
	quoteHandler := handlers.NewQuoteHandler(calculationService, nil)
	rateHandler := handlers.NewRateHandler(rateService)
	router.POST("/v1/quotes/calculate", quoteHandler.CalculateQuote)
	router.GET("/v1/quotes/:quote_id/snapshot", quoteHandler.GetLatestSnapshot)
	router.GET("/v1/rates", rateHandler.GetRates)
	return router
}

func calculateBody() map[string]interface{} {
	return map[string]interface{}{
		"quote": map[string]interface{}{
			"quote_id":         "6a0bfa36-1c34-4f6e-9b1b-6a51e1c7a001",
			"quote_currency":   "USD",
			"purchase_currency": "USD",
			"seller_company":   "ООО Мастер Бэринг",
			"supplier_country": "Германия",
			"incoterms":        "EXW",
			"sale_type":        "transit",
			"markup_rate":      "0.20",
			"supplier_discount_rate": "0.10",
		},
		"items": []map[string]interface{}{
			{
				"item_id":  "c0a80001-0000-4000-8000-000000000001",
				"name":     "6205-2RS",
				"base_price": map[string]interface{}{"amount": "100", "currency": "USD"},
				"quantity": "1",
			},
		},
	}
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestCalculateQuoteEndpoint(t *testing.T) {
	router := newRouter()

	recorder := postJSON(t, router, "/v1/quotes/calculate", calculateBody())
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var result calc.QuoteCalculationResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Len(t, result.Items, 1)
	assert.True(t, result.Items[0].SaleAmountUSD.Equal(dec("108")),
		"sale = %s", result.Items[0].SaleAmountUSD)
	assert.True(t, result.Items[0].ProfitUSD.Equal(dec("8")))
	assert.Equal(t, 0, result.FailedItems)
}

func TestCalculateQuoteEndpoint_UnrecognizedSeller(t *testing.T) {
	router := newRouter()
	body := calculateBody()
	body["quote"].(map[string]interface{})["seller_company"] = "ООО Ромашка"

	recorder := postJSON(t, router, "/v1/quotes/calculate", body)
	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	var response handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, string(calc.ErrUnrecognizedValue), response.Kind)
	assert.Equal(t, "seller_company", response.Field)
}

func TestCalculateQuoteEndpoint_RateOverride(t *testing.T) {
	router := newRouter()
	body := calculateBody()
	body["quote"].(map[string]interface{})["purchase_currency"] = "EUR"
	body["items"].([]map[string]interface{})[0]["base_price"] = map[string]interface{}{
		"amount": "100", "currency": "EUR",
	}
	body["quote"].(map[string]interface{})["supplier_discount_rate"] = "0"
	body["rate_overrides"] = map[string]string{"EUR": "1.10"}

	recorder := postJSON(t, router, "/v1/quotes/calculate", body)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var result calc.QuoteCalculationResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.Len(t, result.Items, 1)
	// EUR 100 at the pinned 1.10 override, 20% markup.
	assert.True(t, result.Items[0].SaleAmountUSD.Equal(dec("132")),
		"sale = %s", result.Items[0].SaleAmountUSD)
}

func TestCalculateQuoteEndpoint_MalformedBody(t *testing.T) {
	router := newRouter()
	req := httptest.NewRequest(http.MethodPost, "/v1/quotes/calculate", bytes.NewReader([]byte("{")))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestGetSnapshot_PersistenceDisabled(t *testing.T) {
	router := newRouter()
	req := httptest.NewRequest(http.MethodGet, "/v1/quotes/6a0bfa36-1c34-4f6e-9b1b-6a51e1c7a001/snapshot", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestGetRatesEndpoint(t *testing.T) {
	router := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/rates", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var response handlers.RatesResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, services.RateSourceFeed, response.Source)
	assert.Contains(t, response.Rates, "EUR")

	req = httptest.NewRequest(http.MethodGet, "/v1/rates?currency=eur", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var single handlers.RateResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &single))
	assert.Equal(t, "EUR", single.Currency)

	req = httptest.NewRequest(http.MethodGet, "/v1/rates?currency=XAU", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
}

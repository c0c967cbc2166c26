package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dealdesk/dealdesk-api/internal/mapping"
	"github.com/dealdesk/dealdesk-api/internal/services"
)

type RateHandler struct {
	rateService *services.RateService
}

func NewRateHandler(rateService *services.RateService) *RateHandler {
	return &RateHandler{rateService: rateService}
}

// RatesResponse is the resolved rate table, USD per unit of each currency.
type RatesResponse struct {
	Source string            `json:"source"`
	Rates  map[string]string `json:"rates"`
}

// RateResponse is one currency's resolved rate.
type RateResponse struct {
	Currency string `json:"currency"`
	Rate     string `json:"rate"`
	Source   string `json:"source"`
}

// GetRates returns the current rate table, or a single currency's rate when
// the currency query parameter is set.
func (h *RateHandler) GetRates(c *gin.Context) {
	if code := c.Query("currency"); code != "" {
		currency, err := mapping.NormalizeCurrency(code, "currency")
		if err != nil {
			sendCalcError(c, err)
			return
		}
		rate, source, err := h.rateService.GetRate(c.Request.Context(), currency)
		if err != nil {
			sendCalcError(c, err)
			return
		}
		c.JSON(http.StatusOK, RateResponse{
			Currency: string(currency),
			Rate:     rate.String(),
			Source:   source,
		})
		return
	}

	table, source, err := h.rateService.GetRateTable(c.Request.Context())
	if err != nil {
		sendError(c, http.StatusInternalServerError, "Failed to resolve rates", err)
		return
	}

	rates := make(map[string]string, len(table))
	for currency, rate := range table {
		rates[string(currency)] = rate.String()
	}
	c.JSON(http.StatusOK, RatesResponse{Source: source, Rates: rates})
}

// Package export renders calculation results into spreadsheet-shaped rows
// for the reference-template validation workflow. The quote-level USD
// conversions here must reproduce the engine's own formulas: any change to
// how the engine converts brokerage or DM-fee inputs must be mirrored in
// BuildValidationRows.
package export

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/dealdesk/dealdesk-api/internal/calc"
)

// ItemRow is one line of the validation export, rounded to the cent the way
// the reference template displays values.
type ItemRow struct {
	ItemID            string `json:"item_id"`
	Name              string `json:"name"`
	Quantity          string `json:"quantity"`
	NetCostUSD        string `json:"net_cost_usd"`
	LogisticsCostUSD  string `json:"logistics_cost_usd"`
	CustomsCostUSD    string `json:"customs_cost_usd"`
	FullyLoadedUSD    string `json:"fully_loaded_usd"`
	SaleUSD           string `json:"sale_usd"`
	ProfitUSD         string `json:"profit_usd"`
	MarginPct         string `json:"margin_pct"`
	Error             string `json:"error,omitempty"`
}

// QuoteSheet is the full validation export for one calculation.
type QuoteSheet struct {
	QuoteID          string    `json:"quote_id"`
	BrokerageUSD     string    `json:"brokerage_usd"`
	DMFeeUSD         string    `json:"dm_fee_usd"`
	TotalSaleUSD     string    `json:"total_sale_usd"`
	TotalProfitUSD   string    `json:"total_profit_usd"`
	BlendedMarginPct string    `json:"blended_margin_pct"`
	Items            []ItemRow `json:"items"`
}

// BuildValidationRows converts a finished calculation into the validation
// sheet. The brokerage and DM-fee cells are recomputed from the raw inputs
// with the engine's conversion formula instead of being read from the result,
// because that is exactly what the reference template does.
func BuildValidationRows(in *calc.QuoteCalculationInput, result *calc.QuoteCalculationResult) (*QuoteSheet, error) {
	rates := in.Rates
	if rates == nil {
		rates = calc.RateTable{}
	}

	brokerageUSD, err := convertOrZero(rates, in.BrokerageCost, "brokerage_cost")
	if err != nil {
		return nil, fmt.Errorf("failed to convert brokerage cost: %w", err)
	}

	dmFeeUSD := decimal.Zero
	if in.DMFeeType == calc.DMFeeFixed {
		if dmFeeUSD, err = convertOrZero(rates, in.DMFee, "dm_fee"); err != nil {
			return nil, fmt.Errorf("failed to convert dm fee: %w", err)
		}
	}

	sheet := &QuoteSheet{
		QuoteID:          result.QuoteID.String(),
		BrokerageUSD:     cents(brokerageUSD),
		DMFeeUSD:         cents(dmFeeUSD),
		TotalSaleUSD:     cents(result.TotalSaleUSD),
		TotalProfitUSD:   cents(result.TotalProfitUSD),
		BlendedMarginPct: cents(result.BlendedMarginPct),
		Items:            make([]ItemRow, 0, len(result.Items)),
	}

	for _, item := range result.Items {
		row := ItemRow{
			ItemID:   item.ItemID.String(),
			Name:     item.Name,
			Quantity: item.Quantity.String(),
		}
		if item.Failed() {
			row.Error = item.Err.Message
		} else {
			row.NetCostUSD = cents(item.NetCostUSD)
			row.LogisticsCostUSD = cents(item.LogisticsLoadedCostUSD)
			row.CustomsCostUSD = cents(item.CustomsLoadedCostUSD)
			row.FullyLoadedUSD = cents(item.FullyLoadedCostUSD)
			row.SaleUSD = cents(item.SaleAmountUSD)
			row.ProfitUSD = cents(item.ProfitUSD)
			row.MarginPct = cents(item.MarginPct)
		}
		sheet.Items = append(sheet.Items, row)
	}

	return sheet, nil
}

// convertOrZero mirrors the engine's boundary conversion: zero amounts need
// no rate, everything else converts through the table.
func convertOrZero(rates calc.RateTable, m calc.Money, field string) (decimal.Decimal, error) {
	if m.IsZero() {
		return decimal.Zero, nil
	}
	return rates.ToUSD(m, field)
}

// cents rounds to two decimal places for display.
func cents(d decimal.Decimal) string {
	return d.StringFixed(2)
}

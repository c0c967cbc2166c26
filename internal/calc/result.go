package calc

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemError marks a line item whose calculation failed. The numeric fields
// of the owning result are zero when Err is set; sibling items are not
// affected.
type ItemError struct {
	Kind    ErrorKind `json:"kind"`
	Phase   Phase     `json:"phase,omitempty"`
	Field   string    `json:"field,omitempty"`
	Message string    `json:"message"`
}

func newItemError(err *CalculationError) *ItemError {
	return &ItemError{
		Kind:    err.Kind,
		Phase:   err.Phase,
		Field:   err.Field,
		Message: err.Error(),
	}
}

// FinancingBreakdown details the financing cost phase for transparency in
// exports and review screens.
type FinancingBreakdown struct {
	InterestUSD   decimal.Decimal `json:"interest_usd"`
	CommissionUSD decimal.Decimal `json:"commission_usd"`
	InsuranceUSD  decimal.Decimal `json:"insurance_usd"`
	TotalUSD      decimal.Decimal `json:"total_usd"`
	FinancedDays  int             `json:"financed_days"`
}

// ProductCalculationResult is the per-item output of the pipeline. All
// amounts carry full decimal precision in USD; rounding to the currency's
// minor unit is the presentation layer's job.
type ProductCalculationResult struct {
	ItemID   uuid.UUID       `json:"item_id"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`

	// Progressive cost states, line totals in USD.
	NetCostUSD             decimal.Decimal `json:"net_cost_usd"`
	LogisticsLoadedCostUSD decimal.Decimal `json:"logistics_loaded_cost_usd"`
	CustomsLoadedCostUSD   decimal.Decimal `json:"customs_loaded_cost_usd"`
	FinancingLoadedCostUSD decimal.Decimal `json:"financing_loaded_cost_usd"`
	FullyLoadedCostUSD     decimal.Decimal `json:"fully_loaded_cost_usd"`

	Financing *FinancingBreakdown `json:"financing,omitempty"`

	VATAmountUSD  decimal.Decimal `json:"vat_amount_usd"`
	SaleAmountUSD decimal.Decimal `json:"sale_amount_usd"`

	UnitPriceUSD   decimal.Decimal `json:"unit_price_usd"`
	UnitPriceQuote decimal.Decimal `json:"unit_price_quote"`
	QuoteCurrency  Currency        `json:"quote_currency"`

	ProfitUSD     decimal.Decimal `json:"profit_usd"`
	UnitProfitUSD decimal.Decimal `json:"unit_profit_usd"`
	// MarginPct is profit over sale amount, as a percentage.
	MarginPct decimal.Decimal `json:"margin_pct"`

	Err *ItemError `json:"error,omitempty"`
}

// Failed reports whether the item carries an error marker.
func (r *ProductCalculationResult) Failed() bool {
	return r.Err != nil
}

// QuoteCalculationResult aggregates per-item results into quote totals.
type QuoteCalculationResult struct {
	QuoteID       uuid.UUID `json:"quote_id"`
	QuoteCurrency Currency  `json:"quote_currency"`

	TotalSaleUSD   decimal.Decimal `json:"total_sale_usd"`
	TotalCostUSD   decimal.Decimal `json:"total_cost_usd"`
	TotalProfitUSD decimal.Decimal `json:"total_profit_usd"`
	TotalVATUSD    decimal.Decimal `json:"total_vat_usd"`
	// BlendedMarginPct is total profit over total sale, as a percentage;
	// zero when the total sale amount is zero.
	BlendedMarginPct decimal.Decimal `json:"blended_margin_pct"`

	TotalSaleQuote decimal.Decimal `json:"total_sale_quote"`

	Items       []ProductCalculationResult `json:"items"`
	FailedItems int                        `json:"failed_items"`
}

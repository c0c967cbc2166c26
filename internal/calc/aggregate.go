package calc

import (
	"github.com/shopspring/decimal"
)

// aggregate rolls per-item results up into quote totals. Failed items
// contribute nothing to the sums; the blended margin guards against a zero
// total sale amount.
func aggregate(q *quoteState, items []ProductCalculationResult) *QuoteCalculationResult {
	result := &QuoteCalculationResult{
		QuoteID:          q.in.QuoteID,
		QuoteCurrency:    q.in.QuoteCurrency,
		TotalSaleUSD:     decimal.Zero,
		TotalCostUSD:     decimal.Zero,
		TotalProfitUSD:   decimal.Zero,
		TotalVATUSD:      decimal.Zero,
		BlendedMarginPct: decimal.Zero,
		Items:            items,
	}

	for i := range items {
		item := &items[i]
		if item.Failed() {
			result.FailedItems++
			continue
		}
		result.TotalSaleUSD = result.TotalSaleUSD.Add(item.SaleAmountUSD)
		// The cost total is defined so that sale = cost + profit + VAT
		// holds across the quote.
		cost := item.SaleAmountUSD.Sub(item.VATAmountUSD).Sub(item.ProfitUSD)
		result.TotalCostUSD = result.TotalCostUSD.Add(cost)
		result.TotalProfitUSD = result.TotalProfitUSD.Add(item.ProfitUSD)
		result.TotalVATUSD = result.TotalVATUSD.Add(item.VATAmountUSD)
	}

	if result.TotalSaleUSD.IsPositive() {
		result.BlendedMarginPct = result.TotalProfitUSD.Div(result.TotalSaleUSD).Mul(hundred)
	}

	// quoteRateUSD was validated during quote resolution, so this division
	// cannot fail.
	result.TotalSaleQuote = result.TotalSaleUSD.Div(q.quoteRateUSD)

	return result
}

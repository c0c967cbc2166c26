package calc

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteCalculationInput carries every quote-level pricing input for one
// calculation call. It is assembled by the mapping layer, immutable for the
// duration of the call, and never persisted by the engine. All rates are
// fractions (0.15 means 15%); all monetary fields are Money values in their
// originating currency and are converted to USD exactly once, at the
// boundary.
type QuoteCalculationInput struct {
	QuoteID uuid.UUID `json:"quote_id"`

	// QuoteCurrency is the client-facing display currency.
	QuoteCurrency Currency `json:"quote_currency"`
	// PurchaseCurrency is the default currency of item base prices.
	PurchaseCurrency Currency        `json:"purchase_currency"`
	SellerCompany    SellerCompany   `json:"seller_company"`
	SupplierCountry  SupplierCountry `json:"supplier_country"`
	Incoterms        Incoterms       `json:"incoterms"`
	SaleType         OfferSaleType   `json:"sale_type"`

	// Advance percentages as fractions of the respective totals.
	ClientAdvancePct   decimal.Decimal `json:"client_advance_pct"`
	SupplierAdvancePct decimal.Decimal `json:"supplier_advance_pct"`

	// Day counts driving the financing cash-flow timeline.
	DeliveryDays            int `json:"delivery_days"`
	DaysToAdvanceAfterOrder int `json:"days_to_advance_after_order"`
	DaysToAdvanceAfterDocs  int `json:"days_to_advance_after_docs"`
	CustomsPaymentDueDays   int `json:"customs_payment_due_days"`

	ForexReserveRate        decimal.Decimal `json:"forex_reserve_rate"`
	FinancingCommissionRate decimal.Decimal `json:"financing_commission_rate"`
	AnnualInterestRate      decimal.Decimal `json:"annual_interest_rate"`
	InsuranceRate           decimal.Decimal `json:"insurance_rate"`
	ImportTariffRate        decimal.Decimal `json:"import_tariff_rate"`
	ExciseTaxRate           decimal.Decimal `json:"excise_tax_rate"`
	MarkupRate              decimal.Decimal `json:"markup_rate"`
	// SupplierDiscountRate is the default discount; items may override it.
	SupplierDiscountRate decimal.Decimal `json:"supplier_discount_rate"`

	// DMFee is the intermediary fee. For DMFeeFixed the Money amount is a
	// flat sum in its own currency; for DMFeePercent the amount is a
	// fraction of the item's financing-loaded cost and the currency is
	// ignored.
	DMFee     Money     `json:"dm_fee"`
	DMFeeType DMFeeType `json:"dm_fee_type"`

	// Three-segment logistics cost for the whole quote, allocated across
	// items pro-rata by discounted value.
	LogisticsSupplierToHub   Money `json:"logistics_supplier_to_hub"`
	LogisticsHubToCustoms    Money `json:"logistics_hub_to_customs"`
	LogisticsCustomsToClient Money `json:"logistics_customs_to_client"`

	// Costs incurred at the customs point, also allocated pro-rata.
	BrokerageCost     Money `json:"brokerage_cost"`
	DocumentationCost Money `json:"documentation_cost"`
	WarehousingCost   Money `json:"warehousing_cost"`

	// Rates is the caller-supplied exchange-rate table, treated as
	// read-only for the duration of the calculation.
	Rates RateTable `json:"rates"`
}

// ProductCalculationInput is one line item of the quote.
type ProductCalculationInput struct {
	ItemID uuid.UUID `json:"item_id"`
	Name   string    `json:"name"`

	// BasePrice is the per-unit purchase price in its original currency.
	BasePrice Money           `json:"base_price"`
	Quantity  decimal.Decimal `json:"quantity"`

	// SupplierDiscountOverride replaces the quote-level discount when set.
	SupplierDiscountOverride *decimal.Decimal `json:"supplier_discount_override,omitempty"`

	// PurchaseToQuoteRate is the explicit purchase→quote currency rate,
	// resolved once per item before the pipeline runs. When zero it is
	// derived from the rate table through USD.
	PurchaseToQuoteRate decimal.Decimal `json:"purchase_to_quote_rate"`
}

// discountRate returns the effective supplier discount for the item.
func (p *ProductCalculationInput) discountRate(quoteDefault decimal.Decimal) decimal.Decimal {
	if p.SupplierDiscountOverride != nil {
		return *p.SupplierDiscountOverride
	}
	return quoteDefault
}

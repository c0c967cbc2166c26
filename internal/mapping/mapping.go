// Package mapping translates raw persistence-layer records into the
// calculation engine's input model. It is the only place schema drift is
// absorbed: when upstream field names, spellings, or shapes change, this
// package changes and the engine's contract does not.
package mapping

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dealdesk/dealdesk-api/internal/calc"
)

// MoneyRecord is a raw amount/currency pair as the persistence layer and API
// supply it. An empty currency on a zero amount is tolerated; on a non-zero
// amount it falls back to the record's purchase currency downstream.
type MoneyRecord struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// QuoteRecord is the raw quote-level row. Categorical fields are free-form
// strings exactly as stored; amounts are decimals.
type QuoteRecord struct {
	QuoteID          string `json:"quote_id"`
	QuoteCurrency    string `json:"quote_currency"`
	PurchaseCurrency string `json:"purchase_currency"`
	SellerCompany    string `json:"seller_company"`
	SupplierCountry  string `json:"supplier_country"`
	Incoterms        string `json:"incoterms"`
	SaleType         string `json:"sale_type"`

	ClientAdvancePct   decimal.Decimal `json:"client_advance_pct"`
	SupplierAdvancePct decimal.Decimal `json:"supplier_advance_pct"`

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
	SupplierDiscountRate    decimal.Decimal `json:"supplier_discount_rate"`

	DMFee     MoneyRecord `json:"dm_fee"`
	DMFeeType string      `json:"dm_fee_type"`

	LogisticsSupplierToHub   MoneyRecord `json:"logistics_supplier_to_hub"`
	LogisticsHubToCustoms    MoneyRecord `json:"logistics_hub_to_customs"`
	LogisticsCustomsToClient MoneyRecord `json:"logistics_customs_to_client"`

	BrokerageCost     MoneyRecord `json:"brokerage_cost"`
	DocumentationCost MoneyRecord `json:"documentation_cost"`
	WarehousingCost   MoneyRecord `json:"warehousing_cost"`
}

// ItemRecord is one raw line-item row.
type ItemRecord struct {
	ItemID                   string           `json:"item_id"`
	Name                     string           `json:"name"`
	BasePrice                MoneyRecord      `json:"base_price"`
	Quantity                 decimal.Decimal  `json:"quantity"`
	SupplierDiscountOverride *decimal.Decimal `json:"supplier_discount_override,omitempty"`
	PurchaseToQuoteRate      decimal.Decimal  `json:"purchase_to_quote_rate"`
}

// BuildCalculationInputs assembles the engine input from raw records and the
// resolved rate table. Every categorical value is normalized here; anything
// unrecognized fails loudly before the pipeline ever sees it.
func BuildCalculationInputs(record *QuoteRecord, items []ItemRecord, rates calc.RateTable) (*calc.QuoteCalculationInput, []calc.ProductCalculationInput, error) {
	quoteID, err := parseID(record.QuoteID, "quote_id")
	if err != nil {
		return nil, nil, err
	}

	quoteCurrency, err := NormalizeCurrency(record.QuoteCurrency, "quote_currency")
	if err != nil {
		return nil, nil, err
	}
	purchaseCurrency, err := NormalizeCurrency(record.PurchaseCurrency, "purchase_currency")
	if err != nil {
		return nil, nil, err
	}
	sellerCompany, err := NormalizeSellerCompany(record.SellerCompany)
	if err != nil {
		return nil, nil, err
	}
	supplierCountry, err := NormalizeCountry(record.SupplierCountry)
	if err != nil {
		return nil, nil, err
	}
	incoterms, err := NormalizeIncoterms(record.Incoterms)
	if err != nil {
		return nil, nil, err
	}
	saleType, err := NormalizeSaleType(record.SaleType)
	if err != nil {
		return nil, nil, err
	}
	dmFeeType, err := NormalizeDMFeeType(record.DMFeeType)
	if err != nil {
		return nil, nil, err
	}

	in := &calc.QuoteCalculationInput{
		QuoteID:          quoteID,
		QuoteCurrency:    quoteCurrency,
		PurchaseCurrency: purchaseCurrency,
		SellerCompany:    sellerCompany,
		SupplierCountry:  supplierCountry,
		Incoterms:        incoterms,
		SaleType:         saleType,

		ClientAdvancePct:   record.ClientAdvancePct,
		SupplierAdvancePct: record.SupplierAdvancePct,

		DeliveryDays:            record.DeliveryDays,
		DaysToAdvanceAfterOrder: record.DaysToAdvanceAfterOrder,
		DaysToAdvanceAfterDocs:  record.DaysToAdvanceAfterDocs,
		CustomsPaymentDueDays:   record.CustomsPaymentDueDays,

		ForexReserveRate:        record.ForexReserveRate,
		FinancingCommissionRate: record.FinancingCommissionRate,
		AnnualInterestRate:      record.AnnualInterestRate,
		InsuranceRate:           record.InsuranceRate,
		ImportTariffRate:        record.ImportTariffRate,
		ExciseTaxRate:           record.ExciseTaxRate,
		MarkupRate:              record.MarkupRate,
		SupplierDiscountRate:    record.SupplierDiscountRate,

		DMFeeType: dmFeeType,
		Rates:     rates,
	}

	if in.DMFee, err = buildMoney(record.DMFee, purchaseCurrency, "dm_fee"); err != nil {
		return nil, nil, err
	}
	if in.LogisticsSupplierToHub, err = buildMoney(record.LogisticsSupplierToHub, purchaseCurrency, "logistics_supplier_to_hub"); err != nil {
		return nil, nil, err
	}
	if in.LogisticsHubToCustoms, err = buildMoney(record.LogisticsHubToCustoms, purchaseCurrency, "logistics_hub_to_customs"); err != nil {
		return nil, nil, err
	}
	if in.LogisticsCustomsToClient, err = buildMoney(record.LogisticsCustomsToClient, purchaseCurrency, "logistics_customs_to_client"); err != nil {
		return nil, nil, err
	}
	if in.BrokerageCost, err = buildMoney(record.BrokerageCost, purchaseCurrency, "brokerage_cost"); err != nil {
		return nil, nil, err
	}
	if in.DocumentationCost, err = buildMoney(record.DocumentationCost, purchaseCurrency, "documentation_cost"); err != nil {
		return nil, nil, err
	}
	if in.WarehousingCost, err = buildMoney(record.WarehousingCost, purchaseCurrency, "warehousing_cost"); err != nil {
		return nil, nil, err
	}

	products := make([]calc.ProductCalculationInput, 0, len(items))
	for i, item := range items {
		product, err := buildProduct(&item, purchaseCurrency)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to map item %d: %w", i, err)
		}
		products = append(products, product)
	}

	return in, products, nil
}

func buildProduct(item *ItemRecord, purchaseCurrency calc.Currency) (calc.ProductCalculationInput, error) {
	itemID, err := parseID(item.ItemID, "item_id")
	if err != nil {
		return calc.ProductCalculationInput{}, err
	}
	basePrice, err := buildMoney(item.BasePrice, purchaseCurrency, "base_price")
	if err != nil {
		return calc.ProductCalculationInput{}, err
	}
	return calc.ProductCalculationInput{
		ItemID:                   itemID,
		Name:                     item.Name,
		BasePrice:                basePrice,
		Quantity:                 item.Quantity,
		SupplierDiscountOverride: item.SupplierDiscountOverride,
		PurchaseToQuoteRate:      item.PurchaseToQuoteRate,
	}, nil
}

// buildMoney normalizes a raw amount/currency pair. A record with no currency
// inherits the quote's purchase currency.
func buildMoney(record MoneyRecord, fallback calc.Currency, field string) (calc.Money, error) {
	if record.Amount.IsZero() && record.Currency == "" {
		return calc.Money{}, nil
	}
	if record.Currency == "" {
		return calc.Money{Amount: record.Amount, Currency: fallback}, nil
	}
	currency, err := NormalizeCurrency(record.Currency, field+"_currency")
	if err != nil {
		return calc.Money{}, err
	}
	return calc.Money{Amount: record.Amount, Currency: currency}, nil
}

func parseID(raw, field string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, missingField(field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, unrecognized(field, raw)
	}
	return id, nil
}

package calc

import (
	"github.com/shopspring/decimal"
)

// Phase names the fixed calculation steps. The order of phaseSequence is a
// hard contract: each phase consumes state produced by the previous one.
type Phase string

const (
	PhaseBaseCost         Phase = "base_cost"
	PhaseSupplierDiscount Phase = "supplier_discount"
	PhaseForexReserve     Phase = "forex_risk_reserve"
	PhaseLogistics        Phase = "logistics_allocation"
	PhaseCustomsValue     Phase = "customs_value"
	PhaseImportTariff     Phase = "import_tariff"
	PhaseExciseTax        Phase = "excise_tax"
	PhaseCustomsFees      Phase = "customs_fees"
	PhaseFinancing        Phase = "financing_cost"
	PhaseDMFee            Phase = "dm_fee"
	PhaseMarkup           Phase = "markup"
	PhaseVAT              Phase = "vat"
	PhaseProfitMargin     Phase = "profit_margin"
)

type phaseStep struct {
	name Phase
	run  func(*quoteState, *itemState) error
}

// phaseSequence is the ordered pipeline. Do not reorder, skip, or insert
// phases: downstream phases read fields the earlier ones write.
var phaseSequence = []phaseStep{
	{PhaseBaseCost, phaseBaseCost},
	{PhaseSupplierDiscount, phaseSupplierDiscount},
	{PhaseForexReserve, phaseForexReserve},
	{PhaseLogistics, phaseLogistics},
	{PhaseCustomsValue, phaseCustomsValue},
	{PhaseImportTariff, phaseImportTariff},
	{PhaseExciseTax, phaseExciseTax},
	{PhaseCustomsFees, phaseCustomsFees},
	{PhaseFinancing, phaseFinancing},
	{PhaseDMFee, phaseDMFee},
	{PhaseMarkup, phaseMarkup},
	{PhaseVAT, phaseVAT},
	{PhaseProfitMargin, phaseProfitMargin},
}

var (
	one        = decimal.NewFromInt(1)
	hundred    = decimal.NewFromInt(100)
	daysInYear = decimal.NewFromInt(365)
)

// quoteState is the quote-level input with every monetary leaf resolved to
// USD. Resolution happens exactly once, here; phases never convert.
type quoteState struct {
	in *QuoteCalculationInput

	// Logistics segments borne by the trading company under the quote's
	// incoterms; segments the supplier covers are zeroed.
	segmentSupplierToHubUSD   decimal.Decimal
	segmentHubToCustomsUSD    decimal.Decimal
	segmentCustomsToClientUSD decimal.Decimal
	logisticsTotalUSD         decimal.Decimal
	// dutiableFreightUSD is the freight portion entering the customs value:
	// everything up to the customs point.
	dutiableFreightUSD decimal.Decimal

	customsFeesUSD decimal.Decimal
	dmFeeUSD       decimal.Decimal

	vatRate decimal.Decimal

	// quoteRateUSD is USD per one unit of the quote currency (1 for USD).
	quoteRateUSD decimal.Decimal
}

// itemState is the running per-item state threaded through the pipeline.
type itemState struct {
	in *ProductCalculationInput

	unitBaseUSD         decimal.Decimal
	purchaseRateUSD     decimal.Decimal
	purchaseToQuoteRate decimal.Decimal

	// weight is the item's share of quote-level costs, pro-rated by
	// discounted value across the quote's resolvable items.
	weight decimal.Decimal

	baseCost       decimal.Decimal
	netCost        decimal.Decimal
	discountAmount decimal.Decimal
	reservedCost   decimal.Decimal

	logisticsAlloc  decimal.Decimal
	logisticsLoaded decimal.Decimal

	customsValue  decimal.Decimal
	tariff        decimal.Decimal
	excise        decimal.Decimal
	customsFees   decimal.Decimal
	customsLoaded decimal.Decimal

	financing       FinancingBreakdown
	financingLoaded decimal.Decimal

	dmFee       decimal.Decimal
	fullyLoaded decimal.Decimal

	markupAmount decimal.Decimal
	preVATPrice  decimal.Decimal
	vat          decimal.Decimal
	salePrice    decimal.Decimal

	profit decimal.Decimal
	margin decimal.Decimal
}

// resolveQuote validates quote-level categorical inputs and converts every
// quote-level monetary figure to USD.
func resolveQuote(in *QuoteCalculationInput) (*quoteState, error) {
	if !in.QuoteCurrency.Valid() {
		return nil, unrecognized("quote_currency", string(in.QuoteCurrency))
	}
	if !in.PurchaseCurrency.Valid() {
		return nil, unrecognized("purchase_currency", string(in.PurchaseCurrency))
	}
	if !in.SellerCompany.Valid() {
		return nil, unrecognized("seller_company", string(in.SellerCompany))
	}
	if !in.SupplierCountry.Valid() {
		return nil, unrecognized("supplier_country", string(in.SupplierCountry))
	}
	if !in.SaleType.Valid() {
		return nil, unrecognized("sale_type", string(in.SaleType))
	}
	if in.Incoterms == "" {
		return nil, missingField(PhaseLogistics, "incoterms")
	}
	if !in.Incoterms.Valid() {
		return nil, unrecognized("incoterms", string(in.Incoterms))
	}
	if !in.DMFee.IsZero() && !in.DMFeeType.Valid() {
		return nil, unrecognized("dm_fee_type", string(in.DMFeeType))
	}

	rates := in.Rates
	if rates == nil {
		rates = RateTable{}
	}

	q := &quoteState{in: in}

	borne := logisticsSegments[in.Incoterms]
	var err error
	if q.segmentSupplierToHubUSD, err = resolveSegment(rates, in.LogisticsSupplierToHub, borne[0], "logistics_supplier_to_hub"); err != nil {
		return nil, err
	}
	if q.segmentHubToCustomsUSD, err = resolveSegment(rates, in.LogisticsHubToCustoms, borne[1], "logistics_hub_to_customs"); err != nil {
		return nil, err
	}
	if q.segmentCustomsToClientUSD, err = resolveSegment(rates, in.LogisticsCustomsToClient, borne[2], "logistics_customs_to_client"); err != nil {
		return nil, err
	}
	q.logisticsTotalUSD = q.segmentSupplierToHubUSD.
		Add(q.segmentHubToCustomsUSD).
		Add(q.segmentCustomsToClientUSD)
	q.dutiableFreightUSD = q.segmentSupplierToHubUSD.Add(q.segmentHubToCustomsUSD)

	brokerage, err := toUSDOrZero(rates, in.BrokerageCost, "brokerage_cost")
	if err != nil {
		return nil, err
	}
	documentation, err := toUSDOrZero(rates, in.DocumentationCost, "documentation_cost")
	if err != nil {
		return nil, err
	}
	warehousing, err := toUSDOrZero(rates, in.WarehousingCost, "warehousing_cost")
	if err != nil {
		return nil, err
	}
	q.customsFeesUSD = brokerage.Add(documentation).Add(warehousing)

	if in.DMFeeType == DMFeeFixed {
		if q.dmFeeUSD, err = toUSDOrZero(rates, in.DMFee, "dm_fee"); err != nil {
			return nil, err
		}
	}

	if in.SaleType == SaleTypeTransit {
		q.vatRate = decimal.Zero
	} else {
		q.vatRate = in.SellerCompany.VATRate()
	}

	q.quoteRateUSD = one
	if in.QuoteCurrency != CurrencyUSD {
		rate, ok := rates[in.QuoteCurrency]
		if !ok || !rate.IsPositive() {
			return nil, missingRate("quote_currency", in.QuoteCurrency)
		}
		q.quoteRateUSD = rate
	}

	return q, nil
}

// resolveSegment converts one logistics segment to USD, zeroing segments the
// supplier bears under the quote's incoterms.
func resolveSegment(rates RateTable, m Money, borne bool, field string) (decimal.Decimal, error) {
	if !borne {
		return decimal.Zero, nil
	}
	return toUSDOrZero(rates, m, field)
}

// toUSDOrZero converts a monetary input to USD, treating an absent value as
// zero without requiring a rate for its (absent) currency.
func toUSDOrZero(rates RateTable, m Money, field string) (decimal.Decimal, error) {
	if m.IsZero() {
		return decimal.Zero, nil
	}
	if !m.Currency.Valid() {
		return decimal.Zero, unrecognized(field+"_currency", string(m.Currency))
	}
	return rates.ToUSD(m, field)
}

// resolveItem converts one line item's purchase price to USD and fixes the
// purchase→quote display rate. This is the only place an item's money
// crosses currencies.
func resolveItem(q *quoteState, in *ProductCalculationInput) (*itemState, error) {
	if in.Quantity.IsNegative() {
		return nil, unrecognized("quantity", in.Quantity.String())
	}

	price := in.BasePrice
	if price.Currency == "" {
		price.Currency = q.in.PurchaseCurrency
	}
	if !price.Currency.Valid() {
		return nil, unrecognized("base_price_currency", string(price.Currency))
	}

	rates := q.in.Rates
	if rates == nil {
		rates = RateTable{}
	}

	st := &itemState{in: in}

	var err error
	if st.unitBaseUSD, err = rates.ToUSD(price, "base_price"); err != nil {
		return nil, err
	}

	st.purchaseRateUSD = one
	if price.Currency != CurrencyUSD {
		st.purchaseRateUSD = rates[price.Currency]
	}

	st.purchaseToQuoteRate = in.PurchaseToQuoteRate
	if !st.purchaseToQuoteRate.IsPositive() {
		st.purchaseToQuoteRate = st.purchaseRateUSD.Div(q.quoteRateUSD)
	}

	return st, nil
}

// discountedLineValue is the allocation basis for quote-level costs: the
// item's discounted purchase value in USD. The same formula backs the
// base_cost and supplier_discount phases.
func discountedLineValue(q *quoteState, st *itemState) decimal.Decimal {
	d := st.in.discountRate(q.in.SupplierDiscountRate)
	return st.unitBaseUSD.Mul(st.in.Quantity).Mul(one.Sub(d))
}

func phaseBaseCost(q *quoteState, s *itemState) error {
	s.baseCost = s.unitBaseUSD.Mul(s.in.Quantity)
	return nil
}

func phaseSupplierDiscount(q *quoteState, s *itemState) error {
	d := s.in.discountRate(q.in.SupplierDiscountRate)
	if d.IsNegative() || d.GreaterThan(one) {
		return &CalculationError{
			Kind:  ErrUnrecognizedValue,
			Phase: PhaseSupplierDiscount,
			Field: "supplier_discount_rate",
			Value: d.String(),
		}
	}
	s.netCost = s.baseCost.Mul(one.Sub(d))
	s.discountAmount = s.baseCost.Sub(s.netCost)
	return nil
}

func phaseForexReserve(q *quoteState, s *itemState) error {
	s.reservedCost = s.netCost.Mul(one.Add(q.in.ForexReserveRate))
	return nil
}

func phaseLogistics(q *quoteState, s *itemState) error {
	s.logisticsAlloc = q.logisticsTotalUSD.Mul(s.weight)
	s.logisticsLoaded = s.reservedCost.Add(s.logisticsAlloc)
	return nil
}

func phaseCustomsValue(q *quoteState, s *itemState) error {
	// Transit sales never clear customs in the seller's region.
	if q.in.SaleType == SaleTypeTransit {
		s.customsValue = decimal.Zero
		return nil
	}
	s.customsValue = s.reservedCost.Add(q.dutiableFreightUSD.Mul(s.weight))
	return nil
}

func phaseImportTariff(q *quoteState, s *itemState) error {
	s.tariff = s.customsValue.Mul(q.in.ImportTariffRate)
	return nil
}

func phaseExciseTax(q *quoteState, s *itemState) error {
	s.excise = s.customsValue.Mul(q.in.ExciseTaxRate)
	return nil
}

func phaseCustomsFees(q *quoteState, s *itemState) error {
	s.customsFees = q.customsFeesUSD.Mul(s.weight)
	s.customsLoaded = s.logisticsLoaded.Add(s.tariff).Add(s.excise).Add(s.customsFees)
	return nil
}

func phaseFinancing(q *quoteState, s *itemState) error {
	breakdown, err := computeFinancing(q, s)
	if err != nil {
		return err
	}
	s.financing = breakdown
	s.financingLoaded = s.customsLoaded.Add(breakdown.TotalUSD)
	return nil
}

func phaseDMFee(q *quoteState, s *itemState) error {
	switch q.in.DMFeeType {
	case DMFeePercent:
		s.dmFee = s.financingLoaded.Mul(q.in.DMFee.Amount)
	default:
		s.dmFee = q.dmFeeUSD.Mul(s.weight)
	}
	s.fullyLoaded = s.financingLoaded.Add(s.dmFee)
	return nil
}

func phaseMarkup(q *quoteState, s *itemState) error {
	s.markupAmount = s.fullyLoaded.Mul(q.in.MarkupRate)
	s.preVATPrice = s.fullyLoaded.Add(s.markupAmount)
	return nil
}

func phaseVAT(q *quoteState, s *itemState) error {
	s.vat = s.preVATPrice.Mul(q.vatRate)
	s.salePrice = s.preVATPrice.Add(s.vat)
	return nil
}

func phaseProfitMargin(q *quoteState, s *itemState) error {
	// Profit is reported against the supplier's list price: the sale price
	// is built on the discounted cost chain, but the supplier discount is
	// booked as a separate rebate, not as trading profit.
	s.profit = s.preVATPrice.Sub(s.fullyLoaded).Sub(s.discountAmount)
	if s.salePrice.IsZero() {
		// Divide-by-zero guard: an unsellable line has zero margin, not an
		// arithmetic error.
		s.margin = decimal.Zero
		return nil
	}
	s.margin = s.profit.Div(s.salePrice).Mul(hundred)
	return nil
}

// buildResult snapshots the finished pipeline state into the output model.
func (s *itemState) buildResult(q *quoteState) ProductCalculationResult {
	r := ProductCalculationResult{
		ItemID:                 s.in.ItemID,
		Name:                   s.in.Name,
		Quantity:               s.in.Quantity,
		NetCostUSD:             s.netCost,
		LogisticsLoadedCostUSD: s.logisticsLoaded,
		CustomsLoadedCostUSD:   s.customsLoaded,
		FinancingLoadedCostUSD: s.financingLoaded,
		FullyLoadedCostUSD:     s.fullyLoaded,
		VATAmountUSD:           s.vat,
		SaleAmountUSD:          s.salePrice,
		QuoteCurrency:          q.in.QuoteCurrency,
		ProfitUSD:              s.profit,
		MarginPct:              s.margin,
	}
	if !s.financing.TotalUSD.IsZero() {
		f := s.financing
		r.Financing = &f
	}
	if s.in.Quantity.IsPositive() {
		r.UnitPriceUSD = s.salePrice.Div(s.in.Quantity)
		r.UnitProfitUSD = s.profit.Div(s.in.Quantity)
		// Display conversion uses the purchase→quote rate fixed at the
		// boundary, mirroring the purchase-side USD resolution.
		unitPurchase := r.UnitPriceUSD.Div(s.purchaseRateUSD)
		r.UnitPriceQuote = unitPurchase.Mul(s.purchaseToQuoteRate)
	}
	return r
}

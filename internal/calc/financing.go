package calc

import (
	"github.com/shopspring/decimal"
)

// computeFinancing models the quote's cash-flow timeline and prices the
// capital tied up between paying the supplier and being paid by the client:
//
//	day 0                          client advance received (offsets exposure)
//	day daysToAdvanceAfterOrder    supplier advance paid
//	day D - daysToAdvanceAfterDocs supplier balance paid against shipping docs
//	day customsPaymentDueDays      customs + logistics invoices settled
//	day D (delivery)               client balance received, financing ends
//
// Interest is simple daily interest at the annual loan rate, pro-rated
// actual/365 over each leg's financed days. On top of interest come the
// financing commission on the net financed amount and the insurance premium
// on the customs-loaded cost.
func computeFinancing(q *quoteState, s *itemState) (FinancingBreakdown, error) {
	in := q.in
	breakdown := FinancingBreakdown{
		InterestUSD:   decimal.Zero,
		CommissionUSD: decimal.Zero,
		InsuranceUSD:  decimal.Zero,
		TotalUSD:      decimal.Zero,
	}

	rate := in.AnnualInterestRate
	if rate.IsPositive() && in.DeliveryDays <= 0 {
		return breakdown, missingField(PhaseFinancing, "delivery_days")
	}

	deliveryDay := in.DeliveryDays
	advanceDay := clampDay(in.DaysToAdvanceAfterOrder, deliveryDay)
	balanceDay := clampDay(deliveryDay-in.DaysToAdvanceAfterDocs, deliveryDay)
	if balanceDay < advanceDay {
		balanceDay = advanceDay
	}
	customsDay := clampDay(in.CustomsPaymentDueDays, deliveryDay)

	advanceOut := s.netCost.Mul(in.SupplierAdvancePct)
	balanceOut := s.netCost.Sub(advanceOut)
	customsOut := s.logisticsAlloc.Add(s.tariff).Add(s.excise).Add(s.customsFees)
	clientAdvance := s.customsLoaded.Mul(in.ClientAdvancePct)

	if rate.IsPositive() {
		interest := legInterest(advanceOut, rate, deliveryDay-advanceDay).
			Add(legInterest(balanceOut, rate, deliveryDay-balanceDay)).
			Add(legInterest(customsOut, rate, deliveryDay-customsDay))
		// The client's advance is working capital we did not have to
		// borrow for the full delivery window.
		interest = interest.Sub(legInterest(clientAdvance, rate, deliveryDay))
		if interest.IsNegative() {
			interest = decimal.Zero
		}
		breakdown.InterestUSD = interest
		breakdown.FinancedDays = deliveryDay - advanceDay
	}

	netFinanced := advanceOut.Add(balanceOut).Add(customsOut).Sub(clientAdvance)
	if netFinanced.IsNegative() {
		netFinanced = decimal.Zero
	}
	breakdown.CommissionUSD = netFinanced.Mul(in.FinancingCommissionRate)
	breakdown.InsuranceUSD = s.customsLoaded.Mul(in.InsuranceRate)

	breakdown.TotalUSD = breakdown.InterestUSD.
		Add(breakdown.CommissionUSD).
		Add(breakdown.InsuranceUSD)
	return breakdown, nil
}

// legInterest prices one financed leg: amount × rate × days/365.
func legInterest(amount, annualRate decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 || !amount.IsPositive() {
		return decimal.Zero
	}
	return amount.Mul(annualRate).Mul(decimal.NewFromInt(int64(days))).Div(daysInYear)
}

func clampDay(day, max int) int {
	if day < 0 {
		return 0
	}
	if day > max {
		return max
	}
	return day
}

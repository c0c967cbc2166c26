package calc

import (
	"github.com/shopspring/decimal"
)

// SupplierCountry is the normalized origin country of the supplier's offer.
type SupplierCountry string

const (
	CountryGermany SupplierCountry = "DE"
	CountryChina   SupplierCountry = "CN"
	CountryTurkey  SupplierCountry = "TR"
	CountryIndia   SupplierCountry = "IN"
	CountryUAE     SupplierCountry = "AE"
	CountryItaly   SupplierCountry = "IT"
	CountryKorea   SupplierCountry = "KR"
)

var knownCountries = map[SupplierCountry]bool{
	CountryGermany: true,
	CountryChina:   true,
	CountryTurkey:  true,
	CountryIndia:   true,
	CountryUAE:     true,
	CountryItaly:   true,
	CountryKorea:   true,
}

// Valid reports whether c is a known supplier country.
func (c SupplierCountry) Valid() bool {
	return knownCountries[c]
}

// Incoterms is the trade term of the supplier's offer. It decides which
// logistics segments the trading company bears.
type Incoterms string

const (
	IncotermsEXW Incoterms = "EXW"
	IncotermsFCA Incoterms = "FCA"
	IncotermsFOB Incoterms = "FOB"
	IncotermsCFR Incoterms = "CFR"
	IncotermsCIF Incoterms = "CIF"
	IncotermsDAP Incoterms = "DAP"
	IncotermsDDP Incoterms = "DDP"
)

// logisticsSegments maps each incoterm to the segments paid by the trading
// company: supplier→hub, hub→customs, customs→client.
var logisticsSegments = map[Incoterms][3]bool{
	IncotermsEXW: {true, true, true},
	IncotermsFCA: {false, true, true},
	IncotermsFOB: {false, true, true},
	IncotermsCFR: {false, false, true},
	IncotermsCIF: {false, false, true},
	IncotermsDAP: {false, false, true},
	IncotermsDDP: {false, false, false},
}

// Valid reports whether i is a known incoterm.
func (i Incoterms) Valid() bool {
	_, ok := logisticsSegments[i]
	return ok
}

// Region is the tax regime a seller company operates under.
type Region string

const (
	RegionRU Region = "RU"
	RegionTR Region = "TR"
	RegionAE Region = "AE"
)

// SellerCompany identifies the legal entity issuing the quote. Each company
// is bound to a region whose VAT regime applies to the final price.
type SellerCompany string

const (
	SellerMasterBearingRU SellerCompany = "MASTER_BEARING_RU"
	SellerAnkaraBearingTR SellerCompany = "ANKARA_BEARING_TR"
	SellerGulfBearingFZE  SellerCompany = "GULF_BEARING_FZE"
)

var sellerRegions = map[SellerCompany]Region{
	SellerMasterBearingRU: RegionRU,
	SellerAnkaraBearingTR: RegionTR,
	SellerGulfBearingFZE:  RegionAE,
}

var regionVATRates = map[Region]decimal.Decimal{
	RegionRU: decimal.NewFromFloat(0.20),
	RegionTR: decimal.NewFromFloat(0.20),
	RegionAE: decimal.NewFromFloat(0.05),
}

// Valid reports whether s is a known seller company.
func (s SellerCompany) Valid() bool {
	_, ok := sellerRegions[s]
	return ok
}

// Region returns the tax region the company operates under.
func (s SellerCompany) Region() Region {
	return sellerRegions[s]
}

// VATRate returns the company's regional VAT rate as a fraction.
func (s SellerCompany) VATRate() decimal.Decimal {
	return regionVATRates[s.Region()]
}

// OfferSaleType distinguishes direct supply (goods clear customs in the
// seller's region) from transit (goods ship straight to the client and the
// seller's customs phases do not apply).
type OfferSaleType string

const (
	SaleTypeSupply  OfferSaleType = "supply"
	SaleTypeTransit OfferSaleType = "transit"
)

// Valid reports whether t is a known sale type.
func (t OfferSaleType) Valid() bool {
	return t == SaleTypeSupply || t == SaleTypeTransit
}

// DMFeeType selects how the intermediary fee is expressed.
type DMFeeType string

const (
	DMFeeFixed   DMFeeType = "fixed"
	DMFeePercent DMFeeType = "percent"
)

// Valid reports whether t is a known DM fee type.
func (t DMFeeType) Valid() bool {
	return t == DMFeeFixed || t == DMFeePercent
}

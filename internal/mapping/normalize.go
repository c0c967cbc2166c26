package mapping

import (
	"strings"

	"github.com/dealdesk/dealdesk-api/internal/calc"
)

// canonicalKey folds a free-form categorical string into the lookup key:
// uppercase, quote characters stripped, interior whitespace collapsed.
// People type «ООО "Мастер Бэринг"», the database stores "ООО Мастер Бэринг",
// an old import has "МАСТЕР БЭРИНГ ООО" — the variants tables below catch all
// word orders, this only removes the cosmetic noise.
func canonicalKey(s string) string {
	replacer := strings.NewReplacer(
		`"`, "", "'", "", "«", "", "»", "", "“", "", "”", "",
		",", " ", ".", " ", "_", " ", "-", " ",
	)
	return strings.Join(strings.Fields(strings.ToUpper(replacer.Replace(s))), " ")
}

var sellerCompanyVariants = map[string]calc.SellerCompany{
	"MASTER BEARING RU":   calc.SellerMasterBearingRU,
	"ООО МАСТЕР БЭРИНГ":   calc.SellerMasterBearingRU,
	"МАСТЕР БЭРИНГ ООО":   calc.SellerMasterBearingRU,
	"МАСТЕР БЭРИНГ":       calc.SellerMasterBearingRU,
	"MASTER BEARING LLC":  calc.SellerMasterBearingRU,
	"ANKARA BEARING TR":   calc.SellerAnkaraBearingTR,
	"ANKARA BEARING LTD":  calc.SellerAnkaraBearingTR,
	"АНКАРА БЭРИНГ":       calc.SellerAnkaraBearingTR,
	"GULF BEARING FZE":    calc.SellerGulfBearingFZE,
	"GULF BEARING":        calc.SellerGulfBearingFZE,
	"ГАЛФ БЭРИНГ FZE":     calc.SellerGulfBearingFZE,
	"GULF BEARING F Z E":  calc.SellerGulfBearingFZE,
}

var countryVariants = map[string]calc.SupplierCountry{
	"DE": calc.CountryGermany, "GERMANY": calc.CountryGermany, "ГЕРМАНИЯ": calc.CountryGermany,
	"CN": calc.CountryChina, "CHINA": calc.CountryChina, "КИТАЙ": calc.CountryChina,
	"TR": calc.CountryTurkey, "TURKEY": calc.CountryTurkey, "TÜRKIYE": calc.CountryTurkey, "ТУРЦИЯ": calc.CountryTurkey,
	"IN": calc.CountryIndia, "INDIA": calc.CountryIndia, "ИНДИЯ": calc.CountryIndia,
	"AE": calc.CountryUAE, "UAE": calc.CountryUAE, "ОАЭ": calc.CountryUAE, "UNITED ARAB EMIRATES": calc.CountryUAE,
	"IT": calc.CountryItaly, "ITALY": calc.CountryItaly, "ИТАЛИЯ": calc.CountryItaly,
	"KR": calc.CountryKorea, "KOREA": calc.CountryKorea, "SOUTH KOREA": calc.CountryKorea, "КОРЕЯ": calc.CountryKorea,
}

var saleTypeVariants = map[string]calc.OfferSaleType{
	"SUPPLY":   calc.SaleTypeSupply,
	"ПОСТАВКА": calc.SaleTypeSupply,
	"TRANSIT":  calc.SaleTypeTransit,
	"ТРАНЗИТ":  calc.SaleTypeTransit,
}

var dmFeeTypeVariants = map[string]calc.DMFeeType{
	"FIXED":   calc.DMFeeFixed,
	"FIX":     calc.DMFeeFixed,
	"PERCENT": calc.DMFeePercent,
	"PCT":     calc.DMFeePercent,
	"%":       calc.DMFeePercent,
}

func unrecognized(field, value string) error {
	return &calc.CalculationError{Kind: calc.ErrUnrecognizedValue, Field: field, Value: value}
}

func missingField(field string) error {
	return &calc.CalculationError{Kind: calc.ErrMissingRequiredField, Field: field}
}

// NormalizeSellerCompany resolves a free-form seller-company string to its
// canonical enum. Unknown spellings are a hard error, never a default.
func NormalizeSellerCompany(raw string) (calc.SellerCompany, error) {
	if strings.TrimSpace(raw) == "" {
		return "", missingField("seller_company")
	}
	if company, ok := sellerCompanyVariants[canonicalKey(raw)]; ok {
		return company, nil
	}
	return "", unrecognized("seller_company", raw)
}

// NormalizeCountry resolves country names and ISO codes in several languages
// to the canonical supplier-country code.
func NormalizeCountry(raw string) (calc.SupplierCountry, error) {
	if strings.TrimSpace(raw) == "" {
		return "", missingField("supplier_country")
	}
	if country, ok := countryVariants[canonicalKey(raw)]; ok {
		return country, nil
	}
	return "", unrecognized("supplier_country", raw)
}

// NormalizeIncoterms accepts any casing of the seven supported trade terms.
func NormalizeIncoterms(raw string) (calc.Incoterms, error) {
	if strings.TrimSpace(raw) == "" {
		return "", missingField("incoterms")
	}
	term := calc.Incoterms(strings.ToUpper(strings.TrimSpace(raw)))
	if !term.Valid() {
		return "", unrecognized("incoterms", raw)
	}
	return term, nil
}

// NormalizeSaleType resolves supply/transit in English or Russian.
func NormalizeSaleType(raw string) (calc.OfferSaleType, error) {
	if strings.TrimSpace(raw) == "" {
		return "", missingField("sale_type")
	}
	if saleType, ok := saleTypeVariants[canonicalKey(raw)]; ok {
		return saleType, nil
	}
	return "", unrecognized("sale_type", raw)
}

// NormalizeCurrency accepts any casing of the supported ISO codes.
func NormalizeCurrency(raw, field string) (calc.Currency, error) {
	if strings.TrimSpace(raw) == "" {
		return "", missingField(field)
	}
	currency := calc.Currency(strings.ToUpper(strings.TrimSpace(raw)))
	if !currency.Valid() {
		return "", unrecognized(field, raw)
	}
	return currency, nil
}

// NormalizeDMFeeType resolves the fee-type discriminant; empty is allowed and
// means no intermediary fee is configured.
func NormalizeDMFeeType(raw string) (calc.DMFeeType, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	if feeType, ok := dmFeeTypeVariants[canonicalKey(raw)]; ok {
		return feeType, nil
	}
	return "", unrecognized("dm_fee_type", raw)
}

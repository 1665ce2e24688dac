package types

import (
	"strings"

	ierr "github.com/vidinfra/taxengine/internal/errors"
)

// currencyPrecision maps 3 letter ISO currency codes (lowercase) to
// their minor-unit precision. Most currencies use 2; zero-decimal and
// three-decimal currencies are listed explicitly.
var currencyPrecision = map[string]int32{
	"usd": 2,
	"eur": 2,
	"gbp": 2,
	"aud": 2,
	"cad": 2,
	"chf": 2,
	"sek": 2,
	"nzd": 2,
	"hkd": 2,
	"sgd": 2,
	"inr": 2,
	"brl": 2,
	"rub": 2,
	"mxn": 2,
	"try": 2,
	"zar": 2,
	"myr": 2,
	"cny": 2,
	"cop": 2,

	// zero-decimal currencies
	"jpy": 0,
	"krw": 0,
	"vnd": 0,
	"clp": 0,

	// three-decimal currencies
	"bhd": 3,
	"kwd": 3,
	"omr": 3,
	"tnd": 3,
}

// CURRENCY_CODES_SYMBOLS is a map of 3 digit ISO currency codes to their symbols
var CURRENCY_CODES_SYMBOLS = map[string]string{
	"usd": "$",
	"eur": "€",
	"gbp": "£",
	"aud": "AU$",
	"cad": "CA$",
	"jpy": "¥",
	"cny": "¥",
	"inr": "₹",
	"brl": "R$",
	"mxn": "MX$",
	"krw": "₩",
}

// GetCurrencySymbol returns the symbol for a given currency code
// if the code is not found, it returns the code itself
func GetCurrencySymbol(code string) string {
	if symbol, ok := CURRENCY_CODES_SYMBOLS[strings.ToLower(code)]; ok {
		return symbol
	}
	return code
}

// ResolveCurrencyPrecision resolves the minor-unit precision for a
// currency, consulting overrides first. There is deliberately no
// fallback precision: an unknown currency is an error, never a silent
// two-decimal default.
func ResolveCurrencyPrecision(code string, overrides map[string]int32) (int32, error) {
	if code == "" {
		return 0, ierr.NewError("currency code is required").
			WithHint("Line currency must be a 3 letter ISO code").
			Mark(ierr.ErrUnknownCurrency)
	}

	code = strings.ToLower(code)

	if overrides != nil {
		if precision, ok := overrides[code]; ok {
			return precision, nil
		}
	}

	if precision, ok := currencyPrecision[code]; ok {
		return precision, nil
	}

	return 0, ierr.NewError("unknown currency").
		WithHintf("No precision registered for currency '%s'", code).
		WithReportableDetails(map[string]any{"currency": code}).
		Mark(ierr.ErrUnknownCurrency)
}

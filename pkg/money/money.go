// Package money converts between decimal monetary amounts and their integer
// smallest-unit representation (cents for USD/EUR, pence for GBP). Amounts
// are stored and summed as integers to avoid floating-point drift; decimals
// only appear at the serialization boundary.
package money

import (
	"sort"

	"github.com/shopspring/decimal"
)

// currencyDecimals maps supported currency codes to their fractional digits.
var currencyDecimals = map[string]int32{
	"USD": 2,
	"EUR": 2,
	"GBP": 2,
}

// Decimals returns the number of fractional digits for a currency code.
// Unknown codes fall back to 2 without error.
func Decimals(code string) int32 {
	if d, ok := currencyDecimals[code]; ok {
		return d
	}
	return 2
}

// Supported reports whether code is one of the configured currencies.
func Supported(code string) bool {
	_, ok := currencyDecimals[code]
	return ok
}

// Codes returns the supported currency codes in sorted order.
func Codes() []string {
	out := make([]string, 0, len(currencyDecimals))
	for c := range currencyDecimals {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ToSmallestUnit converts a decimal amount to an integer count of the
// currency's smallest unit, rounding half away from zero.
//
//	ToSmallestUnit(40.55, "USD") == 4055
//	ToSmallestUnit(40.5, "USD")  == 4050
func ToSmallestUnit(amount decimal.Decimal, code string) int64 {
	return amount.Shift(Decimals(code)).Round(0).IntPart()
}

// FromSmallestUnit converts an integer smallest-unit amount back to its
// decimal representation. It is the exact inverse of ToSmallestUnit for any
// amount expressible at the currency's precision.
//
//	FromSmallestUnit(4055, "USD") == 40.55
func FromSmallestUnit(units int64, code string) decimal.Decimal {
	return decimal.New(units, -Decimals(code))
}

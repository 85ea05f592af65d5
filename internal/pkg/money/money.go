// Package money converts between minor units, decimals and the float64
// amounts stored in the database. All arithmetic goes through decimal.
package money

import "github.com/shopspring/decimal"

// VATRate is the Spanish general VAT rate applied to every invoice.
var VATRate = decimal.RequireFromString("0.21")

var hundred = decimal.NewFromInt(100)

// FromMinor converts cents to a decimal amount.
func FromMinor(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// ToMinor converts an amount to cents, rounding half away from zero.
func ToMinor(d decimal.Decimal) int64 {
	return d.Mul(hundred).Round(0).IntPart()
}

// FromFloat wraps a stored amount.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// Float returns d rounded to cents as a float64 for storage.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// Round2 rounds to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent returns p/100.
func Percent(p int) decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Div(hundred)
}

// SplitVAT splits a VAT-inclusive total into base and tax so that
// base + tax == round2(total).
func SplitVAT(total decimal.Decimal) (subtotal, tax decimal.Decimal) {
	total = total.Round(2)
	subtotal = total.Div(decimal.NewFromInt(1).Add(VATRate)).Round(2)
	tax = total.Sub(subtotal)
	return subtotal, tax
}

// Format renders an amount as "12,34 €".
func Format(f float64) string {
	s := decimal.NewFromFloat(f).StringFixed(2)
	out := []byte(s)
	for i, c := range out {
		if c == '.' {
			out[i] = ','
		}
	}
	return string(out) + " €"
}

// LineTotal is unit * qty rounded to cents.
func LineTotal(unit float64, qty int) float64 {
	return Float(FromFloat(unit).Mul(decimal.NewFromInt(int64(qty))))
}

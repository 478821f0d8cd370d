// Package format renders raw estimate figures for display.
package format

import (
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// DefaultSymbol is the currency symbol used when none is configured.
const DefaultSymbol = "₱"

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// Amount formats v with thousands separators and exactly two decimals.
func Amount(v float64) string {
	return humanize.FormatFloat("#,###.##", Round2(v))
}

// Money formats v as "<symbol> 1,234.56".
func Money(symbol string, v float64) string {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return symbol + " " + Amount(v)
}

// Percent formats a fraction such as a net margin: 0.16667 -> "16.7%".
func Percent(fraction float64) string {
	d := decimal.NewFromFloat(fraction).Mul(decimal.NewFromInt(100)).Round(1)
	return d.StringFixed(1) + "%"
}

// Qty prints whole quantities without decimals and others with up to two.
func Qty(v float64) string {
	s := decimal.NewFromFloat(v).Round(2).StringFixed(2)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Package finance holds the pure money rules: GST split, incentives,
// revenue-share settlement, dashboard aggregates and the revenue forecast.
package finance

import "github.com/shopspring/decimal"

// GSTRate is the goods and services tax applied to every base price.
var GSTRate = decimal.RequireFromString("0.18")

// Round2 rounds f to two decimal places, half away from zero.
func Round2(f float64) float64 {
	return decimal.NewFromFloat(f).Round(2).InexactFloat64()
}

// GSTSplit returns the GST and total for base price b. Both are rounded to
// two places so that total minus base equals the GST.
func GSTSplit(b float64) (gst, total float64) {
	base := decimal.NewFromFloat(b)
	g := base.Mul(GSTRate).Round(2)
	t := base.Add(g).Round(2)
	return g.InexactFloat64(), t.InexactFloat64()
}

func sum(values []float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}

package finance

import "github.com/shopspring/decimal"

var (
	thresholdRatio = decimal.RequireFromString("0.9")
	incentiveRate  = decimal.RequireFromString("0.05")
	hundred        = decimal.NewFromInt(100)
)

// Incentive is a therapist's standing against the monthly target.
type Incentive struct {
	Target             float64 `json:"target"`
	Threshold          float64 `json:"threshold"`
	ActualSales        float64 `json:"actual_sales"`
	ProgressPercentage float64 `json:"progress_percentage"`
	ExcessAmount       float64 `json:"excess_amount"`
	IncentiveEarned    float64 `json:"incentive_earned"`
}

// ComputeIncentive applies the 90% threshold rule: 5% of sales above
// 90% of target. A zero target reports zero progress.
func ComputeIncentive(target, actualSales float64) Incentive {
	t := decimal.NewFromFloat(target)
	a := decimal.NewFromFloat(actualSales)
	threshold := t.Mul(thresholdRatio)

	excess := decimal.Zero
	earned := decimal.Zero
	if a.GreaterThan(threshold) {
		excess = a.Sub(threshold)
		earned = excess.Mul(incentiveRate)
	}

	progress := decimal.Zero
	if t.IsPositive() {
		progress = a.Div(t).Mul(hundred)
	}

	return Incentive{
		Target:             target,
		Threshold:          threshold.Round(2).InexactFloat64(),
		ActualSales:        a.Round(2).InexactFloat64(),
		ProgressPercentage: progress.Round(2).InexactFloat64(),
		ExcessAmount:       excess.Round(2).InexactFloat64(),
		IncentiveEarned:    earned.Round(2).InexactFloat64(),
	}
}

// IncentiveFromEntries sums base prices of entries and computes the incentive.
func IncentiveFromEntries(target float64, entries []Entry) Incentive {
	bases := make([]float64, len(entries))
	for i, e := range entries {
		bases[i] = e.BasePrice
	}
	return ComputeIncentive(target, sum(bases).InexactFloat64())
}

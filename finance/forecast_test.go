package finance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func flatHistory(revenue float64, services int) []MonthBucket {
	months := PrecedingMonths(MonthKey{Year: 2026, Month: 3}, ForecastWindow)
	out := make([]MonthBucket, len(months))
	for i, m := range months {
		out[i] = MonthBucket{Month: m.Month, Year: m.Year, Label: m.Label(), Revenue: revenue, Services: services}
	}
	return out
}

func TestPrecedingMonthsCrossesYear(t *testing.T) {
	months := PrecedingMonths(MonthKey{Year: 2026, Month: 2}, 6)

	require.Len(t, months, 6)
	assert.Equal(t, MonthKey{Year: 2025, Month: 8}, months[0])
	assert.Equal(t, MonthKey{Year: 2026, Month: 1}, months[5])
}

func TestMonthKeyFormatting(t *testing.T) {
	m := MonthKey{Year: 2026, Month: 1}
	assert.Equal(t, "2026-01", m.Prefix())
	assert.Equal(t, "Jan 2026", m.Label())
	assert.Equal(t, MonthKey{Year: 2025, Month: 12}, m.AddMonths(-1))
	assert.Equal(t, MonthKey{Year: 2026, Month: 7}, MonthOf(time.Date(2026, 7, 31, 23, 0, 0, 0, time.UTC)))
}

func TestBucketUsesDatePrefix(t *testing.T) {
	months := []MonthKey{{Year: 2026, Month: 1}, {Year: 2026, Month: 2}}
	entries := []Entry{
		{BasePrice: 100, Date: "2026-01-31"},
		{BasePrice: 200, Date: "2026-02-01"},
		{BasePrice: 300, Date: "2026-02-15"},
		{BasePrice: 999, Date: "2026-03-01"},
	}

	buckets := Bucket(months, entries)

	require.Len(t, buckets, 2)
	assert.Equal(t, 100.0, buckets[0].Revenue)
	assert.Equal(t, 1, buckets[0].Services)
	assert.Equal(t, 500.0, buckets[1].Revenue)
	assert.Equal(t, 2, buckets[1].Services)
	assert.Equal(t, "Feb 2026", buckets[1].Label)
}

func TestBuildForecastFlatRevenue(t *testing.T) {
	f := BuildForecast(MonthKey{Year: 2026, Month: 3}, flatHistory(5000, 10))

	assert.Equal(t, MethodWeightedRegress, f.Method)
	assert.Equal(t, 5000.0, f.PredictedRevenue)
	assert.Equal(t, ConfidenceHigh, f.Confidence)
	assert.Equal(t, TrendStable, f.Trend)
	assert.Equal(t, 0.0, f.Slope)
	assert.Equal(t, 10, f.PredictedServices)
	assert.Equal(t, 3, f.ForecastMonth)
	assert.Equal(t, 2026, f.ForecastYear)
}

func TestBuildForecastZeroRevenue(t *testing.T) {
	f := BuildForecast(MonthKey{Year: 2026, Month: 3}, flatHistory(0, 0))

	assert.Equal(t, MethodInsufficientData, f.Method)
	assert.Equal(t, 0.0, f.PredictedRevenue)
	assert.Equal(t, ConfidenceLow, f.Confidence)
	assert.Len(t, f.HistoricalData, ForecastWindow)
}

func TestBuildForecastGrowingSeries(t *testing.T) {
	history := flatHistory(0, 0)
	for i := range history {
		history[i].Revenue = float64(1000 * (i + 1))
		history[i].Services = 10
	}

	f := BuildForecast(MonthKey{Year: 2026, Month: 3}, history)

	// slope 1000, intercept 1000, regression at x=6 is 7000
	// weighted average = 56000/13.5
	assert.Equal(t, 1000.0, f.Slope)
	assert.Equal(t, 7000.0, f.RegressionForecast)
	assert.Equal(t, Round2(56000.0/13.5), f.WeightedAverage)
	assert.Equal(t, Round2(0.6*7000+0.4*56000.0/13.5), f.PredictedRevenue)
	assert.Equal(t, TrendGrowing, f.Trend)
	// mean 3500, growth 1+1000/3500 = 1.2857
	assert.Equal(t, 12, f.PredictedServices)
	// cv = 1707.8/3500 = 48.8%
	assert.Equal(t, ConfidenceLow, f.Confidence)
}

func TestBuildForecastDecliningFallsBackToWeightedAverage(t *testing.T) {
	history := flatHistory(0, 0)
	revenues := []float64{6000, 5000, 4000, 3000, 2000, 1000}
	for i := range history {
		history[i].Revenue = revenues[i]
		history[i].Services = 20
	}

	f := BuildForecast(MonthKey{Year: 2026, Month: 3}, history)

	// regression at x=6 is 0, so only the weighted average counts
	assert.Equal(t, 0.0, f.RegressionForecast)
	assert.Equal(t, Round2(38500.0/13.5), f.PredictedRevenue)
	assert.Equal(t, TrendDeclining, f.Trend)
	// growth clamped to 0.8
	assert.Equal(t, 16, f.PredictedServices)
}

func TestBuildForecastMediumConfidence(t *testing.T) {
	history := flatHistory(0, 0)
	revenues := []float64{1000, 1500, 1000, 1500, 1000, 1500}
	for i := range history {
		history[i].Revenue = revenues[i]
	}

	// mean 1250, std 250, cv 20
	assert.Equal(t, ConfidenceMedium, BuildForecast(MonthKey{Year: 2026, Month: 3}, history).Confidence)
}

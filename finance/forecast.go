package finance

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	MethodInsufficientData = "insufficient_data"
	MethodWeightedRegress  = "weighted_moving_average_with_regression"

	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"

	TrendGrowing   = "growing"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// ForecastWindow is the number of past months the forecast reads.
const ForecastWindow = 6

// forecastWeights favour recent months, oldest first.
var forecastWeights = [ForecastWindow]float64{1, 1.5, 2, 2.5, 3, 3.5}

// MonthKey identifies a calendar month.
type MonthKey struct {
	Year  int
	Month int
}

// Prefix is the zero-padded "YYYY-MM" date prefix that selects the month.
func (m MonthKey) Prefix() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// Label renders the month as e.g. "Jan 2026".
func (m MonthKey) Label() string {
	return time.Month(m.Month).String()[:3] + fmt.Sprintf(" %d", m.Year)
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: int(t.Month())}
}

// AddMonths shifts m by n months.
func (m MonthKey) AddMonths(n int) MonthKey {
	t := time.Date(m.Year, time.Month(m.Month), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return MonthOf(t)
}

// PrecedingMonths returns the n months before current, oldest first.
func PrecedingMonths(current MonthKey, n int) []MonthKey {
	months := make([]MonthKey, n)
	for i := 0; i < n; i++ {
		months[i] = current.AddMonths(i - n)
	}
	return months
}

// MonthBucket is one month of historical revenue.
type MonthBucket struct {
	Month    int     `json:"month"`
	Year     int     `json:"year"`
	Label    string  `json:"label"`
	Revenue  float64 `json:"revenue"`
	Services int     `json:"services"`
}

// Bucket sums base revenue and counts entries per month by date prefix.
func Bucket(months []MonthKey, entries []Entry) []MonthBucket {
	buckets := make([]MonthBucket, len(months))
	for i, m := range months {
		prefix := m.Prefix()
		var bases []float64
		for _, e := range entries {
			if strings.HasPrefix(e.Date, prefix) {
				bases = append(bases, e.BasePrice)
			}
		}
		buckets[i] = MonthBucket{
			Month:    m.Month,
			Year:     m.Year,
			Label:    m.Label(),
			Revenue:  sum(bases).Round(2).InexactFloat64(),
			Services: len(bases),
		}
	}
	return buckets
}

type Forecast struct {
	ForecastMonth      int           `json:"forecast_month"`
	ForecastYear       int           `json:"forecast_year"`
	PredictedRevenue   float64       `json:"predicted_revenue"`
	PredictedServices  int           `json:"predicted_services"`
	Confidence         string        `json:"confidence"`
	Method             string        `json:"method"`
	Trend              string        `json:"trend"`
	Slope              float64       `json:"slope"`
	WeightedAverage    float64       `json:"weighted_average"`
	RegressionForecast float64       `json:"regression_forecast"`
	HistoricalData     []MonthBucket `json:"historical_data"`
}

// BuildForecast predicts revenue for target from the six buckets preceding it.
// It blends a weighted moving average with a least-squares extrapolation.
func BuildForecast(target MonthKey, history []MonthBucket) Forecast {
	f := Forecast{
		ForecastMonth:  target.Month,
		ForecastYear:   target.Year,
		Confidence:     ConfidenceLow,
		Method:         MethodInsufficientData,
		Trend:          TrendStable,
		HistoricalData: history,
	}

	n := len(history)
	if n == 0 {
		return f
	}

	revenues := make([]float64, n)
	var total, totalServices float64
	for i, b := range history {
		revenues[i] = b.Revenue
		total += b.Revenue
		totalServices += float64(b.Services)
	}
	if total == 0 {
		return f
	}

	wavg := weightedAverage(revenues)
	slope, intercept := leastSquares(revenues)
	regression := intercept + slope*float64(n)

	predicted := wavg
	if regression > 0 {
		predicted = 0.6*regression + 0.4*wavg
	}

	mean := total / float64(n)
	growth := clamp(1+slope/mean, 0.8, 1.5)
	services := math.Max(0, totalServices/float64(n)*growth)

	f.Method = MethodWeightedRegress
	f.PredictedRevenue = Round2(math.Max(0, predicted))
	f.PredictedServices = int(services)
	f.Confidence = confidence(revenues, mean)
	f.Trend = trend(slope)
	f.Slope = Round2(slope)
	f.WeightedAverage = Round2(wavg)
	f.RegressionForecast = Round2(regression)
	return f
}

func weightedAverage(values []float64) float64 {
	var num, den float64
	for i, v := range values {
		w := 1.0
		if i < len(forecastWeights) {
			w = forecastWeights[i]
		}
		num += v * w
		den += w
	}
	return num / den
}

// leastSquares fits y = intercept + slope*x over x = 0..len(y)-1.
func leastSquares(y []float64) (slope, intercept float64) {
	n := float64(len(y))
	xMean := (n - 1) / 2
	var yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= n

	var num, den float64
	for i, v := range y {
		dx := float64(i) - xMean
		num += dx * (v - yMean)
		den += dx * dx
	}
	if den != 0 {
		slope = num / den
	}
	// float noise on flat series
	if math.Abs(slope) < 1e-9 {
		slope = 0
	}
	return slope, yMean - slope*xMean
}

// confidence grades the coefficient of variation of the monthly revenues.
func confidence(values []float64, mean float64) string {
	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	cv := math.Sqrt(variance) / mean * 100

	switch {
	case cv < 20:
		return ConfidenceHigh
	case cv < 40:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

func trend(slope float64) string {
	switch {
	case slope > 0:
		return TrendGrowing
	case slope < 0:
		return TrendDeclining
	default:
		return TrendStable
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// Package risk turns a raw daily price series into volatility, Value-at-Risk,
// and a risk category.
//
// Volatility is the sample standard deviation of daily prices as a percentage
// of the mean. VaR uses historical simulation: one-step returns are sorted
// ascending and the value at rank floor((1-c)*n) is scaled to the horizon by
// the square-root-of-time rule. The category is a deterministic function of
// the normalized volatility score and 30-day VaR, so it can always be
// re-derived from the profile's own fields.
//
// Series with fewer than 3 observations produce a fixed conservative profile
// rather than an error; short history is a domain condition, not a caller bug.
package risk

import (
	"fmt"
	"math"
	"sort"

	"github.com/kickwise/kickwise/internal/models"
)

// Category classifies a player's downside risk.
type Category string

const (
	CategoryLow      Category = "Low Risk"
	CategoryMedium   Category = "Medium Risk"
	CategoryHigh     Category = "High Risk"
	CategoryVeryHigh Category = "Very High Risk"
)

// Profile is the full risk assessment for one player, derived entirely from
// a price series plus optional performance-volatility and expected-return
// inputs. Profiles are recomputed on every call and never mutated in place.
type Profile struct {
	// Volatility metrics
	VolatilityPct         float64 `json:"volatility_pct"`          // std dev as % of mean price
	PerformanceVolatility float64 `json:"performance_volatility"`  // CV of match points
	VolatilityScore       float64 `json:"volatility_score"`        // 0-100, higher = more volatile
	StdDev                float64 `json:"std_dev"`                 // std dev in euros

	// Value at Risk (95% confidence, historical simulation)
	VaR7DPct  float64 `json:"var_7d_pct"`
	VaR30DPct float64 `json:"var_30d_pct"`

	// Risk-return metrics
	ExpectedReturn30D float64  `json:"expected_return_30d"`
	SharpeRatio       float64  `json:"sharpe_ratio"`
	Category          Category `json:"risk_category"`

	Confidence  float64 `json:"confidence"` // 0-1, reliability of the metrics
	SampleCount int     `json:"sample_count"`
}

// varConfidence is the confidence level used for both VaR horizons.
const varConfidence = 0.95

// Estimate computes a risk profile from a daily price series (most recent
// first). performanceVolatility is the coefficient of variation of match
// output; expectedReturn30D is the predicted 30-day return percentage when a
// prediction is available. Negative prices are a caller bug and fail loudly.
func Estimate(prices []int, performanceVolatility float64, expectedReturn30D models.Optional[float64]) (Profile, error) {
	if err := models.ValidatePriceSeries(prices); err != nil {
		return Profile{}, fmt.Errorf("invalid price series: %w", err)
	}

	if len(prices) < 3 {
		return conservativeProfile(prices, performanceVolatility), nil
	}

	volatilityPct, stdDev := priceVolatility(prices)
	var7d := valueAtRisk(prices, 7, varConfidence)
	var30d := valueAtRisk(prices, 30, varConfidence)
	volatilityScore := VolatilityScore(volatilityPct)
	expected := expectedReturn30D.OrElse(0)

	return Profile{
		VolatilityPct:         volatilityPct,
		PerformanceVolatility: performanceVolatility,
		VolatilityScore:       volatilityScore,
		StdDev:                stdDev,
		VaR7DPct:              var7d,
		VaR30DPct:             var30d,
		ExpectedReturn30D:     expected,
		SharpeRatio:           SharpeRatio(expected, volatilityPct),
		Category:              CategoryFor(volatilityScore, var30d),
		Confidence:            confidence(len(prices), volatilityPct),
		SampleCount:           len(prices),
	}, nil
}

// conservativeProfile is the fixed fallback for series shorter than 3 points.
// The volatility score is pinned at 40 so the category rule re-derives
// "High Risk" from the profile's own fields.
func conservativeProfile(prices []int, performanceVolatility float64) Profile {
	if performanceVolatility == 0 {
		performanceVolatility = 0.5
	}

	// Approximate the euro std dev from the latest observation when one exists.
	stdDev := 0.0
	if len(prices) > 0 {
		stdDev = float64(prices[0]) * 0.25
	}

	return Profile{
		VolatilityPct:         25.0,
		PerformanceVolatility: performanceVolatility,
		VolatilityScore:       40.0,
		StdDev:                stdDev,
		VaR7DPct:              -15.0,
		VaR30DPct:             -25.0,
		ExpectedReturn30D:     0.0,
		SharpeRatio:           0.0,
		Category:              CategoryHigh,
		Confidence:            0.3,
		SampleCount:           len(prices),
	}
}

// priceVolatility returns the sample standard deviation of the series as a
// percentage of the mean, plus the std dev itself in euros. A zero mean
// yields 0 rather than a fault.
func priceVolatility(prices []int) (volatilityPct, stdDev float64) {
	if len(prices) < 2 {
		return 0, 0
	}

	var sum float64
	for _, p := range prices {
		sum += float64(p)
	}
	mean := sum / float64(len(prices))
	if mean == 0 {
		return 0, 0
	}

	var variance float64
	for _, p := range prices {
		diff := float64(p) - mean
		variance += diff * diff
	}
	variance /= float64(len(prices) - 1)
	stdDev = math.Sqrt(variance)

	return stdDev / mean * 100, stdDev
}

// valueAtRisk estimates the maximum expected loss percentage over
// horizonDays at the given confidence, via historical simulation. One-step
// returns r_i = (p_i - p_{i+1}) / p_{i+1} are computed over consecutive
// pairs (series is most recent first), sorted ascending, and the return at
// rank floor((1-c)*n) is scaled by sqrt(horizonDays).
func valueAtRisk(prices []int, horizonDays int, confidence float64) float64 {
	if len(prices) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(prices)-1)
	for i := 0; i < len(prices)-1; i++ {
		if prices[i+1] > 0 {
			returns = append(returns, float64(prices[i]-prices[i+1])/float64(prices[i+1]))
		}
	}
	if len(returns) == 0 {
		return 0
	}

	sort.Float64s(returns)

	idx := int((1 - confidence) * float64(len(returns)))
	if idx >= len(returns) {
		idx = 0
	}

	return returns[idx] * math.Sqrt(float64(horizonDays)) * 100
}

// VolatilityScore normalizes a volatility percentage to a 0-100 score by
// linear interpolation between 5% (stable, score 0) and 50% (extremely
// volatile, score 100), clamped at both ends.
func VolatilityScore(volatilityPct float64) float64 {
	switch {
	case volatilityPct <= 5:
		return 0.0
	case volatilityPct >= 50:
		return 100.0
	default:
		return (volatilityPct - 5) / 45 * 100
	}
}

// SharpeRatio is the expected return divided by volatility (risk-free rate
// taken as 0). Perfect stability with a positive return maps to 10.0, the
// documented stand-in for an unbounded ratio.
func SharpeRatio(expectedReturn, volatilityPct float64) float64 {
	if volatilityPct == 0 {
		if expectedReturn > 0 {
			return 10.0
		}
		return 0.0
	}
	return math.Round(expectedReturn/volatilityPct*100) / 100
}

// CategoryFor derives the risk category from the normalized volatility score
// and 30-day VaR. Rules are evaluated in precedence order: Low, VeryHigh,
// High, Medium.
func CategoryFor(volatilityScore, var30dPct float64) Category {
	switch {
	case volatilityScore < 15 && var30dPct > -10:
		return CategoryLow
	case volatilityScore > 40 || var30dPct < -35:
		return CategoryVeryHigh
	case volatilityScore > 25 || var30dPct < -20:
		return CategoryHigh
	default:
		return CategoryMedium
	}
}

// confidence scores metric reliability from sample size, penalized under
// extreme volatility where estimates are unstable. Rounded to 2 decimals.
func confidence(sampleCount int, volatilityPct float64) float64 {
	var size float64
	switch {
	case sampleCount >= 30:
		size = 1.0
	case sampleCount >= 20:
		size = 0.9
	case sampleCount >= 14:
		size = 0.8
	case sampleCount >= 7:
		size = 0.6
	default:
		size = 0.3
	}

	penalty := 1.0
	switch {
	case volatilityPct > 60:
		penalty = 0.7
	case volatilityPct > 40:
		penalty = 0.85
	}

	return math.Round(size*penalty*100) / 100
}

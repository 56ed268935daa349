// Package valuation computes the combined 0-100 value score and the
// points-per-million efficiency for a player. The decision engine treats the
// score as an opaque ranking input; only this package knows its composition.
package valuation

import (
	"fmt"
	"math"

	"github.com/kickwise/kickwise/internal/models"
)

// Value holds the calculated value metrics for one player.
type Value struct {
	PlayerID string `json:"player_id"`

	Points        int     `json:"points"`
	AveragePoints float64 `json:"average_points"`
	MarketValue   int     `json:"market_value"`
	Price         int     `json:"price"`

	PointsPerMillion    float64 `json:"points_per_million"`
	AvgPointsPerMillion float64 `json:"avg_points_per_million"`
	ValueScore          float64 `json:"value_score"` // 0-100

	TrendDirection   string                   `json:"trend_direction"` // rising, falling, stable, unknown
	TrendPct         models.Optional[float64] `json:"-"`
	PeakDeviationPct models.Optional[float64] `json:"-"`
	SampleConfidence float64                  `json:"sample_confidence"` // 0-1, from games played
}

// Compute derives the value metrics for a player. trendPct is the 14-day
// market value trend, peakDeviationPct the deviation from the 52-period peak
// (usually negative), gamesPlayed the season sample size; all optional.
// scheduleBonus is the value adjustment from the schedule assessor
// (availability gating plus strength of schedule), already bounded there.
func Compute(p models.Player, trendPct, peakDeviationPct models.Optional[float64], gamesPlayed models.Optional[int], scheduleBonus int) (Value, error) {
	if err := p.Validate(); err != nil {
		return Value{}, fmt.Errorf("invalid player: %w", err)
	}

	price := p.Price
	if price == 0 {
		price = p.MarketValue
	}

	// Guard against division by zero for free/unlisted players.
	priceMillions := math.Max(float64(price)/1_000_000, 0.001)

	ppm := float64(p.Points) / priceMillions
	avgPPM := p.AveragePoints / priceMillions

	sampleConfidence := 1.0
	if games, ok := gamesPlayed.Get(); ok {
		if games < 10 {
			sampleConfidence = float64(games) / 10
		}
	}

	score := valueScore(ppm, p.AveragePoints, trendPct, peakDeviationPct, sampleConfidence, scheduleBonus)

	return Value{
		PlayerID:            p.ID,
		Points:              p.Points,
		AveragePoints:       p.AveragePoints,
		MarketValue:         p.MarketValue,
		Price:               price,
		PointsPerMillion:    ppm,
		AvgPointsPerMillion: avgPPM,
		ValueScore:          score,
		TrendDirection:      trendDirection(trendPct),
		TrendPct:            trendPct,
		PeakDeviationPct:    peakDeviationPct,
		SampleConfidence:    sampleConfidence,
	}, nil
}

// valueScore combines efficiency (up to 40 points), form (up to 30), a
// neutral baseline of 15, the trend clamped to ±15, a peak-recovery term (up
// to 10 when more than 20% below peak), and the schedule bonus. The
// performance components are scaled by the sample confidence so thin samples
// cannot dominate the score. Clamped to [0, 100].
func valueScore(ppm, avgPoints float64, trendPct, peakDeviationPct models.Optional[float64], sampleConfidence float64, scheduleBonus int) float64 {
	efficiency := math.Min(40, ppm*2)
	form := math.Min(30, avgPoints/200*30)

	trend := 0.0
	if t, ok := trendPct.Get(); ok {
		trend = math.Max(-15, math.Min(15, t))
	}

	recovery := 0.0
	if dev, ok := peakDeviationPct.Get(); ok && dev < -20 {
		recovery = math.Min(10, math.Abs(dev)*0.2)
	}

	score := (efficiency+form)*sampleConfidence + 15 + trend + recovery + float64(scheduleBonus)
	score = math.Max(0, math.Min(100, score))

	return math.Round(score*10) / 10
}

// trendDirection labels the trend: more than +2% is rising, less than -2%
// falling, anything else stable. Absent trend data is unknown.
func trendDirection(trendPct models.Optional[float64]) string {
	t, ok := trendPct.Get()
	if !ok {
		return "unknown"
	}
	switch {
	case t > 2:
		return "rising"
	case t < -2:
		return "falling"
	default:
		return "stable"
	}
}

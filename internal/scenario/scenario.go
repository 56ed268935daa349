// Package scenario projects a valuation into three probability-weighted
// outcome scenarios and a risk-adjusted expected value.
//
// Probabilities are fixed at 0.20 best / 0.60 likely / 0.20 worst. The
// multipliers are deliberately asymmetric: an intact upward trend is amplified
// in the best case, dampened in the likely case, and reversed in the worst
// case, encoding the intended risk posture. Do not symmetrize them.
package scenario

import (
	"fmt"
	"math"

	"github.com/kickwise/kickwise/internal/models"
)

// Action tags the decision being evaluated.
type Action string

const (
	ActionBuy  Action = "buy"
	ActionSell Action = "sell"
	ActionHold Action = "hold"
)

// Input is the valuation record a projection starts from.
type Input struct {
	CurrentValue     int                      // current market value in euros
	TrendPct         models.Optional[float64] // 14-day trend change percentage
	Points           int                      // season points to date
	PeakDeviationPct models.Optional[float64] // % deviation from 52-period peak, usually negative
}

// Scenario is one possible outcome over a 30-day horizon.
type Scenario struct {
	Name           string   `json:"name"`
	Probability    float64  `json:"probability"`
	Value30D       int      `json:"value_30d"`
	ValueChangePct float64  `json:"value_change_pct"`
	Points         int      `json:"points"`
	Assumptions    []string `json:"assumptions"`
	Triggers       []string `json:"triggers"`
}

// Outcome is the complete three-scenario projection for one (player, action)
// pair. Probabilities always sum to 1.0.
type Outcome struct {
	Best              Scenario `json:"best"`
	Likely            Scenario `json:"likely"`
	Worst             Scenario `json:"worst"`
	ExpectedValue     float64  `json:"expected_value"`
	RiskAdjustedValue float64  `json:"risk_adjusted_value"`
	Recommendation    string   `json:"recommendation"`
	Confidence        float64  `json:"confidence"`
}

// Projector builds scenario outcomes under a fixed risk tolerance.
type Projector struct {
	riskTolerance float64
}

// NewProjector creates a projector. riskTolerance must be in [0, 1]:
// 0 penalizes outcome variance fully, 1 not at all.
func NewProjector(riskTolerance float64) (*Projector, error) {
	if riskTolerance < 0 || riskTolerance > 1 {
		return nil, fmt.Errorf("risk tolerance must be between 0 and 1, got %f", riskTolerance)
	}
	return &Projector{riskTolerance: riskTolerance}, nil
}

// Project builds the three scenarios for the given action and derives the
// expected and risk-adjusted values plus a bucketed recommendation.
func (p *Projector) Project(in Input, action Action) Outcome {
	best := bestCase(in)
	likely := likelyCase(in)
	worst := worstCase(in)

	expected := float64(best.Value30D)*best.Probability +
		float64(likely.Value30D)*likely.Probability +
		float64(worst.Value30D)*worst.Probability

	adjusted := p.riskAdjust([3]Scenario{best, likely, worst}, expected)

	recommendation, confidence := recommend(action, best, worst, expected, adjusted, in.CurrentValue)

	return Outcome{
		Best:              best,
		Likely:            likely,
		Worst:             worst,
		ExpectedValue:     expected,
		RiskAdjustedValue: adjusted,
		Recommendation:    recommendation,
		Confidence:        confidence,
	}
}

// bestCase amplifies an upward trend (×1.5 and ×2 to stretch a 14-day trend
// to the 30-day horizon) or assumes a half recovery of a downward one,
// capped at +30%.
func bestCase(in Input) Scenario {
	trend := in.TrendPct.OrElse(0)

	var changePct float64
	if trend > 0 {
		changePct = trend * 1.5 * 2
	} else {
		changePct = math.Abs(trend) * 0.5
	}
	changePct = math.Min(changePct, 30.0)

	return Scenario{
		Name:           "Best Case",
		Probability:    0.20,
		Value30D:       projectValue(in.CurrentValue, changePct),
		ValueChangePct: changePct,
		Points:         int(float64(in.Points) * 1.3),
		Assumptions: []string{
			"Player stays healthy",
			"Team has easy fixtures",
			"Form improves significantly",
			"Market trend continues upward",
		},
		Triggers: []string{
			"Strong performances",
			"Team wins next 3 games",
			"Price momentum accelerates",
		},
	}
}

// likelyCase extends the trend to the horizon (×1.8), adds a mean-reversion
// term when the value sits more than 20% below its peak, then dampens the
// whole projection by 20%.
func likelyCase(in Input) Scenario {
	trend := in.TrendPct.OrElse(0)

	changePct := trend * 1.8
	if dev, ok := in.PeakDeviationPct.Get(); ok && dev < -20 {
		changePct += math.Abs(dev) * 0.08
	}
	changePct *= 0.8

	return Scenario{
		Name:           "Likely Case",
		Probability:    0.60,
		Value30D:       projectValue(in.CurrentValue, changePct),
		ValueChangePct: changePct,
		Points:         in.Points,
		Assumptions: []string{
			"Normal performance continues",
			"No major injuries",
			"Typical fixture difficulty",
			"Market behaves normally",
		},
		Triggers: []string{
			"Consistent performances",
			"Team maintains form",
			"Standard market conditions",
		},
	}
}

// worstCase reverses an upward trend (×0.7) or accelerates a downward one
// (×2.0), floored at -25%.
func worstCase(in Input) Scenario {
	trend := in.TrendPct.OrElse(0)

	var changePct float64
	if trend > 0 {
		changePct = -trend * 0.7
	} else {
		changePct = trend * 2.0
	}
	changePct = math.Max(changePct, -25.0)

	return Scenario{
		Name:           "Worst Case",
		Probability:    0.20,
		Value30D:       projectValue(in.CurrentValue, changePct),
		ValueChangePct: changePct,
		Points:         int(float64(in.Points) * 0.5),
		Assumptions: []string{
			"Injury occurs",
			"Team loses key games",
			"Form drops significantly",
			"Market turns negative",
		},
		Triggers: []string{
			"Poor performances",
			"Team on losing streak",
			"Price momentum reverses",
		},
	}
}

func projectValue(current int, changePct float64) int {
	return int(float64(current) * (1 + changePct/100))
}

// riskAdjust subtracts a risk premium from the expected value: the
// probability-weighted standard deviation of the three projected values,
// scaled by (1 - riskTolerance).
func (p *Projector) riskAdjust(scenarios [3]Scenario, expected float64) float64 {
	var variance float64
	for _, s := range scenarios {
		diff := float64(s.Value30D) - expected
		variance += s.Probability * diff * diff
	}
	volatility := math.Sqrt(variance)

	return expected - volatility*(1-p.riskTolerance)
}

// recommend buckets the projection into a labeled recommendation with a
// fixed per-bucket confidence.
func recommend(action Action, best, worst Scenario, expected, adjusted float64, currentValue int) (string, float64) {
	var expectedReturnPct, adjustedReturnPct float64
	if currentValue > 0 {
		expectedReturnPct = (expected - float64(currentValue)) / float64(currentValue) * 100
		adjustedReturnPct = (adjusted - float64(currentValue)) / float64(currentValue) * 100
	}

	upside := best.ValueChangePct
	downside := worst.ValueChangePct
	ratio := math.Inf(1)
	if downside != 0 {
		ratio = math.Abs(upside / downside)
	}

	switch action {
	case ActionBuy:
		switch {
		case adjustedReturnPct > 10 && ratio > 2:
			return fmt.Sprintf("STRONG BUY (%+.1f%% expected)", adjustedReturnPct), 0.9
		case adjustedReturnPct > 5:
			return fmt.Sprintf("BUY (%+.1f%% expected)", adjustedReturnPct), 0.75
		case expectedReturnPct > 3:
			return fmt.Sprintf("CONSIDER BUYING (%+.1f%% expected)", expectedReturnPct), 0.6
		default:
			return "AVOID (Limited upside)", 0.7
		}

	case ActionSell:
		switch {
		case adjustedReturnPct < -5 && math.Abs(downside) > upside:
			return fmt.Sprintf("STRONG SELL (%+.1f%% expected)", adjustedReturnPct), 0.9
		case adjustedReturnPct < -2:
			return fmt.Sprintf("SELL (%+.1f%% expected)", adjustedReturnPct), 0.75
		case expectedReturnPct < 0:
			return fmt.Sprintf("CONSIDER SELLING (%+.1f%% expected)", expectedReturnPct), 0.6
		default:
			return "HOLD (Positive outlook)", 0.7
		}

	default: // hold
		switch {
		case math.Abs(expectedReturnPct) < 3:
			return "HOLD (Neutral outlook)", 0.6
		case expectedReturnPct > 0:
			return fmt.Sprintf("HOLD (Slight upside %+.1f%%)", expectedReturnPct), 0.7
		default:
			return fmt.Sprintf("HOLD (Slight downside %+.1f%%)", expectedReturnPct), 0.7
		}
	}
}

// Package trader implements the short-term flip filter: a threshold policy
// layered on top of the risk and trend outputs that looks for players worth
// buying and reselling within days.
package trader

import (
	"fmt"
	"sort"

	"github.com/kickwise/kickwise/internal/models"
	"github.com/kickwise/kickwise/internal/risk"
)

// Trend summarizes a player's recent market value movement.
type Trend struct {
	Direction    string  `json:"direction"` // rising, falling, stable, unknown
	TrendPct     float64 `json:"trend_pct"` // 14-day change percentage
	CurrentValue int     `json:"current_value"`
	PeakValue    int     `json:"peak_value"` // 0 when no peak is known
}

// Opportunity is a player that clears the flip thresholds.
type Opportunity struct {
	Player                  models.Player `json:"player"`
	BuyPrice                int           `json:"buy_price"`
	ExpectedAppreciationPct float64       `json:"expected_appreciation_pct"`
	RiskScore               float64       `json:"risk_score"` // 0-100, from the volatility score
	HoldDays                int           `json:"hold_days"`
	Reason                  string        `json:"reason"`
}

// Finder filters market listings for flip opportunities.
type Finder struct {
	minProfitPct float64
	maxHoldDays  int
	maxRiskScore float64
}

// NewFinder creates a finder. minProfitPct is the minimum expected
// appreciation, maxHoldDays the recommended holding period cap, and
// maxRiskScore the volatility-score ceiling.
func NewFinder(minProfitPct float64, maxHoldDays int, maxRiskScore float64) (*Finder, error) {
	if minProfitPct < 0 {
		return nil, fmt.Errorf("minimum profit percentage must not be negative, got %f", minProfitPct)
	}
	if maxHoldDays < 1 {
		return nil, fmt.Errorf("maximum hold days must be at least 1, got %d", maxHoldDays)
	}
	if maxRiskScore < 0 || maxRiskScore > 100 {
		return nil, fmt.Errorf("maximum risk score must be between 0 and 100, got %f", maxRiskScore)
	}
	return &Finder{minProfitPct: minProfitPct, maxHoldDays: maxHoldDays, maxRiskScore: maxRiskScore}, nil
}

// Find returns up to maxResults affordable listings with profit potential,
// best first. Players without trend data are skipped: momentum is the whole
// basis of a flip. Expected appreciation comes from a continuing rising
// trend, or from partial mean reversion when a player sits more than 15%
// below peak without actively falling; both are capped at 20%.
func (f *Finder) Find(listings []models.Player, budget int, trends map[string]Trend, risks map[string]risk.Profile, maxResults int) []Opportunity {
	var opportunities []Opportunity

	for _, player := range listings {
		if player.Price > budget {
			continue
		}

		trend, ok := trends[player.ID]
		if !ok || trend.Direction == "unknown" {
			continue
		}

		appreciation := 0.0
		reason := ""
		switch {
		case trend.Direction == "rising" && trend.TrendPct > 5:
			appreciation = min(trend.TrendPct, 20)
			reason = fmt.Sprintf("Rising trend %+.1f%%", trend.TrendPct)
		case trend.PeakValue > 0 && trend.Direction != "falling":
			vsPeakPct := float64(trend.CurrentValue-trend.PeakValue) / float64(trend.PeakValue) * 100
			if vsPeakPct < -15 {
				appreciation = min(-vsPeakPct*0.5, 20)
				reason = fmt.Sprintf("%.1f%% below peak, recovery expected", -vsPeakPct)
			}
		}

		if appreciation < f.minProfitPct {
			continue
		}

		riskScore := 50.0 // unknown risk counts as moderate
		if profile, ok := risks[player.ID]; ok {
			riskScore = profile.VolatilityScore
		}
		if riskScore > f.maxRiskScore {
			continue
		}

		opportunities = append(opportunities, Opportunity{
			Player:                  player,
			BuyPrice:                player.Price,
			ExpectedAppreciationPct: appreciation,
			RiskScore:               riskScore,
			HoldDays:                f.maxHoldDays,
			Reason:                  reason,
		})
	}

	// Rank by risk-discounted appreciation; ties broken by player ID for
	// deterministic output.
	sort.SliceStable(opportunities, func(i, j int) bool {
		a := opportunities[i].ExpectedAppreciationPct * (1 - opportunities[i].RiskScore/200)
		b := opportunities[j].ExpectedAppreciationPct * (1 - opportunities[j].RiskScore/200)
		if a != b {
			return a > b
		}
		return opportunities[i].Player.ID < opportunities[j].Player.ID
	})

	if maxResults > 0 && len(opportunities) > maxResults {
		opportunities = opportunities[:maxResults]
	}
	return opportunities
}

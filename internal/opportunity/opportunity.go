// Package opportunity resolves a target purchase against the current budget
// and holdings into a concrete, fully funded trade plan.
//
// When the budget falls short, the resolver picks a sell set with a greedy
// heuristic: only the squad's worst players (by value score) beyond the
// minimum squad size are eligible, and within that pool players are sold in
// descending price/(valueScore+1) order — expensive low-value holdings go
// first — until the shortfall is covered. The heuristic is deliberate; it is
// not a minimum-cardinality or minimum-loss optimizer, and the worthwhileness
// verdict depends on its outcomes (for example the "must sell too many"
// penalty).
package opportunity

import (
	"fmt"
	"sort"
)

// SellCandidate is one current holding considered for liquidation.
type SellCandidate struct {
	PlayerID         string  `json:"player_id"`
	Name             string  `json:"name"`
	Price            int     `json:"price"`
	ValueScore       float64 `json:"value_score"`
	PointsPerMillion float64 `json:"points_per_million"`
}

// Target is the purchase under consideration.
type Target struct {
	PlayerID         string  `json:"player_id"`
	Name             string  `json:"name"`
	Cost             int     `json:"cost"`
	ValueScore       float64 `json:"value_score"`
	PointsPerMillion float64 `json:"points_per_million"`
}

// Plan is a computed, fully funded trade plan. It is never partially applied
// to holdings by this package; execution is an external concern. Plans are a
// pure function of their inputs and carry no identity of their own; callers
// that persist a plan assign an ID at that point.
type Plan struct {
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name"`
	TargetCost int    `json:"target_cost"`

	ToSell   []SellCandidate `json:"to_sell"`
	Proceeds int             `json:"proceeds"`

	NetBudget           int     `json:"net_budget"`
	NetValueChange      float64 `json:"net_value_change"`
	NetEfficiencyChange float64 `json:"net_efficiency_change"`

	Worthwhile bool    `json:"worthwhile"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence"`
}

// Resolver turns purchase targets into trade plans under a squad floor.
type Resolver struct {
	minSquadSize int
}

// NewResolver creates a resolver. minSquadSize is the number of players the
// squad may never drop below.
func NewResolver(minSquadSize int) (*Resolver, error) {
	if minSquadSize < 1 {
		return nil, fmt.Errorf("minimum squad size must be at least 1, got %d", minSquadSize)
	}
	return &Resolver{minSquadSize: minSquadSize}, nil
}

// Resolve produces a trade plan for buying target with the given budget and
// holdings. feasible=false means the shortfall cannot be covered within the
// squad floor — an explicit "no plan" outcome, not an error. A non-nil error
// indicates malformed input (a caller bug).
func (r *Resolver) Resolve(target Target, holdings []SellCandidate, budget int) (Plan, bool, error) {
	if target.Cost < 0 {
		return Plan{}, false, fmt.Errorf("target cost must not be negative, got %d", target.Cost)
	}
	for _, h := range holdings {
		if h.Price < 0 {
			return Plan{}, false, fmt.Errorf("holding %s has negative price %d", h.PlayerID, h.Price)
		}
	}

	// Trivially feasible: nothing to sell.
	if budget >= target.Cost {
		return Plan{
			TargetID:            target.PlayerID,
			TargetName:          target.Name,
			TargetCost:          target.Cost,
			ToSell:              []SellCandidate{},
			Proceeds:            0,
			NetBudget:           budget - target.Cost,
			NetValueChange:      target.ValueScore,
			NetEfficiencyChange: target.PointsPerMillion,
			Worthwhile:          true,
			Reason:              "Sufficient budget available",
			Confidence:          0.9,
		}, true, nil
	}

	shortfall := target.Cost - budget

	sellable := r.sellablePool(holdings)
	if len(sellable) == 0 {
		return Plan{}, false, nil
	}

	toSell, proceeds := sellSet(sellable, shortfall)
	if len(toSell) == 0 {
		return Plan{}, false, nil
	}

	var soldValue, soldEfficiency float64
	for _, s := range toSell {
		soldValue += s.ValueScore
		soldEfficiency += s.PointsPerMillion
	}
	netValue := target.ValueScore - soldValue
	netEfficiency := target.PointsPerMillion - soldEfficiency

	worthwhile, reason, confidence := assessWorthwhile(netValue, netEfficiency, len(toSell))

	return Plan{
		TargetID:            target.PlayerID,
		TargetName:          target.Name,
		TargetCost:          target.Cost,
		ToSell:              toSell,
		Proceeds:            proceeds,
		NetBudget:           budget + proceeds - target.Cost,
		NetValueChange:      netValue,
		NetEfficiencyChange: netEfficiency,
		Worthwhile:          worthwhile,
		Reason:              reason,
		Confidence:          confidence,
	}, true, nil
}

// sellablePool returns the worst holdings by value score, limited to the
// count that keeps the squad at or above the floor.
func (r *Resolver) sellablePool(holdings []SellCandidate) []SellCandidate {
	maxToSell := len(holdings) - r.minSquadSize
	if maxToSell <= 0 {
		return nil
	}

	pool := make([]SellCandidate, len(holdings))
	copy(pool, holdings)
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].ValueScore < pool[j].ValueScore
	})

	if maxToSell > len(pool) {
		maxToSell = len(pool)
	}
	return pool[:maxToSell]
}

// sellSet greedily accumulates sales in descending price/(valueScore+1)
// order until proceeds cover the shortfall. Returns an empty set when the
// pool cannot cover it.
func sellSet(pool []SellCandidate, shortfall int) ([]SellCandidate, int) {
	ranked := make([]SellCandidate, len(pool))
	copy(ranked, pool)
	sort.SliceStable(ranked, func(i, j int) bool {
		return sellPriority(ranked[i]) > sellPriority(ranked[j])
	})

	var toSell []SellCandidate
	proceeds := 0
	for _, c := range ranked {
		if proceeds >= shortfall {
			break
		}
		toSell = append(toSell, c)
		proceeds += c.Price
	}

	if proceeds < shortfall {
		return nil, 0
	}
	return toSell, proceeds
}

// sellPriority favors selling expensive, low-value holdings first.
func sellPriority(c SellCandidate) float64 {
	return float64(c.Price) / (c.ValueScore + 1)
}

// assessWorthwhile applies the ordered verdict rule to the plan's net value
// and efficiency changes. The order matters: the upgrade tiers are checked
// before the sell-count and downgrade penalties.
func assessWorthwhile(netValue, netEfficiency float64, soldCount int) (bool, string, float64) {
	switch {
	case netValue > 15 && netEfficiency >= 0:
		return true, "Strong upgrade", 0.9
	case netValue > 10 && netEfficiency >= -1:
		return true, "Good upgrade", 0.8
	case netValue > 5 && netEfficiency >= 0:
		return true, "Moderate upgrade", 0.7
	case netEfficiency > 5 && netValue >= 0:
		return true, "Efficiency gain", 0.75
	case netValue >= 0 && netEfficiency >= 0:
		return true, "Slight upgrade", 0.6
	case soldCount > 2:
		return false, "Must sell too many players", 0.4
	case netValue < 0:
		return false, fmt.Sprintf("Downgrade (%+.1f value score)", netValue), 0.3
	case netEfficiency < -2:
		return false, fmt.Sprintf("Efficiency loss (%+.1f pts/M)", netEfficiency), 0.3
	default:
		return false, "Marginal benefit", 0.5
	}
}

// Package analyzer chains the risk, schedule, valuation, and scenario engines
// into a per-player pipeline and runs it across a squad in parallel.
//
// The analyzer is deliberately ignorant of where its inputs come from: callers
// assemble a PlayerInput per player (price series, trend, fixtures, status)
// and the pipeline stays pure. Squad batches share one opponent-strength
// cache, warmed before the parallel phase so the workers only read it.
package analyzer

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kickwise/kickwise/internal/logger"
	"github.com/kickwise/kickwise/internal/models"
	"github.com/kickwise/kickwise/internal/opportunity"
	"github.com/kickwise/kickwise/internal/risk"
	"github.com/kickwise/kickwise/internal/schedule"
	"github.com/kickwise/kickwise/internal/scenario"
	"github.com/kickwise/kickwise/internal/valuation"
)

// PlayerInput bundles everything the pipeline needs for one player.
type PlayerInput struct {
	Player models.Player

	Prices                []int                    // daily market values, most recent first
	PerformanceVolatility float64                  // CV of match output, 0 when unknown
	TrendPct              models.Optional[float64] // 14-day market value trend %
	PeakDeviationPct      models.Optional[float64] // % below 52-period peak
	GamesPlayed           models.Optional[int]     // season sample size
	ExpectedReturn30D     models.Optional[float64] // predicted 30-day return %

	StatusCode        int
	LineupProbability int
	Fixtures          []models.Fixture
}

// PlayerAnalysis is the pipeline output for one player.
type PlayerAnalysis struct {
	Player models.Player `json:"player"`

	Risk     risk.Profile                         `json:"risk"`
	Status   schedule.PlayerStatus                `json:"status"`
	Schedule models.Optional[schedule.Assessment] `json:"-"`
	Bonus    schedule.Bonus                       `json:"bonus"`
	Value    valuation.Value                      `json:"value"`
	Hold     scenario.Outcome                     `json:"hold"`
}

// SquadSummary aggregates a batch of analyses.
type SquadSummary struct {
	PlayerCount   int     `json:"player_count"`
	TotalValue    int     `json:"total_value"`     // sum of market values in euros
	AvgValueScore float64 `json:"avg_value_score"`

	// RiskMix is the market-value-weighted share of each risk category.
	RiskMix map[risk.Category]float64 `json:"risk_mix"`

	// SellCandidates lists the squad worst-first by value score, ready for
	// the opportunity resolver.
	SellCandidates []opportunity.SellCandidate `json:"sell_candidates"`
}

// Analyzer runs the per-player pipeline.
type Analyzer struct {
	assessor  *schedule.Assessor
	cache     *schedule.StrengthCache
	projector *scenario.Projector
	resolve   schedule.Resolver
}

// New creates an analyzer. resolve maps team IDs to standings and is consulted
// once per team per batch; riskTolerance is passed through to the scenario
// projector.
func New(resolve schedule.Resolver, riskTolerance float64) (*Analyzer, error) {
	projector, err := scenario.NewProjector(riskTolerance)
	if err != nil {
		return nil, fmt.Errorf("failed to create projector: %w", err)
	}

	cache := schedule.NewStrengthCache()
	return &Analyzer{
		assessor:  schedule.NewAssessor(resolve, cache),
		cache:     cache,
		projector: projector,
		resolve:   resolve,
	}, nil
}

// Analyze runs the full pipeline for one player: risk profile, availability
// and schedule assessment, value score, and a hold projection.
func (a *Analyzer) Analyze(in PlayerInput) (PlayerAnalysis, error) {
	profile, err := risk.Estimate(in.Prices, in.PerformanceVolatility, in.ExpectedReturn30D)
	if err != nil {
		return PlayerAnalysis{}, fmt.Errorf("risk estimate for %s: %w", in.Player.ID, err)
	}

	status := schedule.ClassifyStatus(in.StatusCode, in.LineupProbability)

	assessment := models.None[schedule.Assessment]()
	scheduleBonus := 0
	if sos, ok := a.assessor.Assess(in.Fixtures, in.Player.TeamID); ok {
		assessment = models.Some(sos)
		scheduleBonus = sos.SOSBonus
	}

	own := a.ownStrength(in.Player.TeamID)
	matchup := a.assessor.MatchupBonus(status, own, nextFixture(in.Fixtures))

	value, err := valuation.Compute(in.Player, in.TrendPct, in.PeakDeviationPct, in.GamesPlayed, scheduleBonus+matchup.Points)
	if err != nil {
		return PlayerAnalysis{}, fmt.Errorf("valuation for %s: %w", in.Player.ID, err)
	}

	hold := a.projector.Project(scenario.Input{
		CurrentValue:     in.Player.MarketValue,
		TrendPct:         in.TrendPct,
		Points:           in.Player.Points,
		PeakDeviationPct: in.PeakDeviationPct,
	}, scenario.ActionHold)

	return PlayerAnalysis{
		Player:   in.Player,
		Risk:     profile,
		Status:   status,
		Schedule: assessment,
		Bonus:    matchup,
		Value:    value,
		Hold:     hold,
	}, nil
}

// AnalyzeSquad runs the pipeline for every input in parallel. The strength
// cache is warmed with every team in the batch up front, so the workers only
// read it. Players that fail analysis are logged and dropped; output order
// matches input order.
func (a *Analyzer) AnalyzeSquad(inputs []PlayerInput) []PlayerAnalysis {
	a.warmCache(inputs)

	results := make([]*PlayerAnalysis, len(inputs))
	var wg sync.WaitGroup
	for i, in := range inputs {
		wg.Add(1)
		go func(i int, in PlayerInput) {
			defer wg.Done()
			analysis, err := a.Analyze(in)
			if err != nil {
				logger.Warn("skipping player %s: %v", in.Player.ID, err)
				return
			}
			results[i] = &analysis
		}(i, in)
	}
	wg.Wait()

	analyses := make([]PlayerAnalysis, 0, len(inputs))
	for _, r := range results {
		if r != nil {
			analyses = append(analyses, *r)
		}
	}
	return analyses
}

// Summarize aggregates a batch into squad-level totals and the resolver-ready
// sell candidate list, worst value first.
func Summarize(analyses []PlayerAnalysis) SquadSummary {
	summary := SquadSummary{
		PlayerCount: len(analyses),
		RiskMix:     make(map[risk.Category]float64),
	}
	if len(analyses) == 0 {
		return summary
	}

	var scoreSum float64
	for _, a := range analyses {
		summary.TotalValue += a.Player.MarketValue
		scoreSum += a.Value.ValueScore
		summary.RiskMix[a.Risk.Category] += float64(a.Player.MarketValue)

		summary.SellCandidates = append(summary.SellCandidates, opportunity.SellCandidate{
			PlayerID:         a.Player.ID,
			Name:             a.Player.FullName(),
			Price:            a.Value.Price,
			ValueScore:       a.Value.ValueScore,
			PointsPerMillion: a.Value.PointsPerMillion,
		})
	}

	summary.AvgValueScore = scoreSum / float64(len(analyses))
	if summary.TotalValue > 0 {
		for category := range summary.RiskMix {
			summary.RiskMix[category] /= float64(summary.TotalValue)
		}
	}

	sort.SliceStable(summary.SellCandidates, func(i, j int) bool {
		return summary.SellCandidates[i].ValueScore < summary.SellCandidates[j].ValueScore
	})
	return summary
}

// warmCache resolves every distinct team in the batch once, before the
// parallel phase. Unresolvable teams are left to the assessor's neutral
// default.
func (a *Analyzer) warmCache(inputs []PlayerInput) {
	a.cache.Clear()

	seen := make(map[string]bool)
	for _, in := range inputs {
		for _, teamID := range batchTeams(in) {
			if teamID == "" || seen[teamID] {
				continue
			}
			seen[teamID] = true

			standing, err := a.resolve(teamID)
			if err != nil {
				logger.Debug("cache warm: team %s unresolved: %v", teamID, err)
				continue
			}
			a.cache.Put(schedule.StrengthFromStanding(standing))
		}
	}
}

// batchTeams lists every team ID one input touches.
func batchTeams(in PlayerInput) []string {
	teams := []string{in.Player.TeamID}
	for _, f := range in.Fixtures {
		teams = append(teams, f.HomeTeamID, f.AwayTeamID)
	}
	return teams
}

// ownStrength resolves the player's own team through the warmed cache,
// falling back to the neutral default.
func (a *Analyzer) ownStrength(teamID string) schedule.TeamStrength {
	if ts, ok := a.cache.Get(teamID); ok {
		return ts
	}
	standing, err := a.resolve(teamID)
	if err != nil {
		return schedule.TeamStrength{TeamID: teamID, TeamName: "Team " + teamID, StrengthScore: 50}
	}
	return schedule.StrengthFromStanding(standing)
}

// nextFixture picks the first unplayed fixture, if any.
func nextFixture(fixtures []models.Fixture) models.Optional[models.Fixture] {
	for _, f := range fixtures {
		if !f.Played {
			return models.Some(f)
		}
	}
	return models.None[models.Fixture]()
}

// TrendFromSeries computes the 14-day market value change percentage from a
// daily series (most recent first). Absent when the series is too short.
func TrendFromSeries(prices []int) models.Optional[float64] {
	if len(prices) < 15 || prices[14] <= 0 {
		return models.None[float64]()
	}
	return models.Some(float64(prices[0]-prices[14]) / float64(prices[14]) * 100)
}

// PeakDeviationFromSeries computes the percentage deviation of the current
// value from the peak over the last 52 observations. Usually negative; zero
// when the current value is the peak.
func PeakDeviationFromSeries(prices []int) models.Optional[float64] {
	if len(prices) < 2 {
		return models.None[float64]()
	}

	window := prices
	if len(window) > 52 {
		window = window[:52]
	}
	peak := 0
	for _, p := range window {
		if p > peak {
			peak = p
		}
	}
	if peak <= 0 {
		return models.None[float64]()
	}
	return models.Some(float64(prices[0]-peak) / float64(peak) * 100)
}

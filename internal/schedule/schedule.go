package schedule

import (
	"math"

	"github.com/kickwise/kickwise/internal/logger"
	"github.com/kickwise/kickwise/internal/models"
)

// Resolver maps an opponent team ID to its standings record. It may fail per
// call; the assessor substitutes a neutral default on failure.
type Resolver func(teamID string) (models.TeamStanding, error)

// Assessment is the strength-of-schedule result for one player's team.
type Assessment struct {
	UpcomingOpponents   []string `json:"upcoming_opponents"` // short-window opponent names
	AvgOpponentStrength float64  `json:"avg_opponent_strength"`
	AvgOpponentRank     float64  `json:"avg_opponent_rank"` // short-window average league position
	GamesAnalyzed       int      `json:"games_analyzed"`
	DifficultyRating    string   `json:"difficulty_rating"`
	SOSScore            float64  `json:"sos_score"` // 0-100, higher = harder schedule
	SOSBonus            int      `json:"sos_bonus"` // -10 to +10 value score adjustment
	ShortTermRating     string   `json:"short_term_rating"`  // next 3 games
	MediumTermRating    string   `json:"medium_term_rating"` // next 5 games
	SeasonRating        string   `json:"season_rating"`      // all remaining games
}

// Bonus is the availability- and matchup-derived value score adjustment.
type Bonus struct {
	Points     int                      `json:"points"`
	Reason     string                   `json:"reason"`
	Difficulty models.Optional[float64] `json:"-"` // absent when schedule was not consulted
}

// Assessor derives schedule assessments, memoizing opponent strengths in a
// caller-owned cache for the lifetime of one analysis batch.
type Assessor struct {
	resolve Resolver
	cache   *StrengthCache
}

// NewAssessor creates an assessor. A nil cache gets a private one, but
// callers running batches should pass a shared cache and clear it per batch.
func NewAssessor(resolve Resolver, cache *StrengthCache) *Assessor {
	if cache == nil {
		cache = NewStrengthCache()
	}
	return &Assessor{resolve: resolve, cache: cache}
}

// windowStats aggregates opponent strength over one fixture window.
type windowStats struct {
	avgStrength float64
	avgRank     float64
	names       []string
}

// Assess computes the weighted strength of schedule over the player's
// unplayed fixtures. Returns ok=false when there is nothing to assess (no
// unplayed fixtures) — a legitimate empty result, not an error.
func (a *Assessor) Assess(fixtures []models.Fixture, ownTeamID string) (Assessment, bool) {
	var upcoming []models.Fixture
	for _, f := range fixtures {
		if !f.Played {
			upcoming = append(upcoming, f)
		}
	}
	if len(upcoming) == 0 {
		return Assessment{}, false
	}

	short := a.analyzeWindow(upcoming[:min(3, len(upcoming))], ownTeamID)
	medium := a.analyzeWindow(upcoming[:min(5, len(upcoming))], ownTeamID)
	season := a.analyzeWindow(upcoming, ownTeamID)

	// Weighted SOS: 70% short, 20% medium, 10% season. Fall back to the short
	// window alone if the longer windows produced nothing.
	var weighted float64
	switch {
	case short != nil && medium != nil && season != nil:
		weighted = short.avgStrength*0.7 + medium.avgStrength*0.2 + season.avgStrength*0.1
	case short != nil:
		weighted = short.avgStrength
	default:
		return Assessment{}, false
	}

	assessment := Assessment{
		UpcomingOpponents:   short.names,
		AvgOpponentStrength: math.Round(weighted*10) / 10,
		AvgOpponentRank:     math.Round(short.avgRank*10) / 10,
		GamesAnalyzed:       len(upcoming),
		DifficultyRating:    DifficultyRating(weighted),
		SOSScore:            math.Round(weighted*10) / 10,
		SOSBonus:            SOSBonus(short.avgRank),
		ShortTermRating:     DifficultyRating(short.avgStrength),
	}
	if medium != nil {
		assessment.MediumTermRating = DifficultyRating(medium.avgStrength)
	}
	if season != nil {
		assessment.SeasonRating = DifficultyRating(season.avgStrength)
	}
	return assessment, true
}

// analyzeWindow averages opponent strength and rank over a fixture window.
func (a *Assessor) analyzeWindow(window []models.Fixture, ownTeamID string) *windowStats {
	if len(window) == 0 {
		return nil
	}

	var sumStrength, sumRank float64
	names := make([]string, 0, len(window))

	for _, f := range window {
		opponentID, _ := f.OpponentOf(ownTeamID)
		opp := a.opponentStrength(opponentID)
		sumStrength += opp.StrengthScore
		if opp.LeaguePosition > 0 {
			sumRank += float64(opp.LeaguePosition)
		} else {
			sumRank += neutralRank
		}
		names = append(names, opp.TeamName)
	}

	n := float64(len(window))
	return &windowStats{
		avgStrength: sumStrength / n,
		avgRank:     sumRank / n,
		names:       names,
	}
}

// opponentStrength resolves a team's strength through the cache. Resolver
// failures substitute the neutral default (strength 50, rank 9.5) without
// caching it, so a transient failure does not stick for the whole batch.
func (a *Assessor) opponentStrength(teamID string) TeamStrength {
	if ts, ok := a.cache.Get(teamID); ok {
		return ts
	}

	standing, err := a.resolve(teamID)
	if err != nil {
		logger.Debug("opponent %s unresolved, using neutral strength: %v", teamID, err)
		return TeamStrength{
			TeamID:        teamID,
			TeamName:      "Team " + teamID,
			StrengthScore: neutralStrengthScore,
		}
	}

	ts := StrengthFromStanding(standing)
	a.cache.Put(ts)
	return ts
}

// SOSBonus buckets the short-window average opponent rank (1 = strongest
// opponent, 18 = weakest) into a value score bonus between -10 and +10.
func SOSBonus(avgOpponentRank float64) int {
	switch {
	case avgOpponentRank >= 14:
		return 10
	case avgOpponentRank >= 11:
		return 5
	case avgOpponentRank >= 8:
		return 0
	case avgOpponentRank >= 4:
		return -5
	default:
		return -10
	}
}

// DifficultyRating labels an average opponent strength score.
func DifficultyRating(avgOpponentStrength float64) string {
	switch {
	case avgOpponentStrength < 30:
		return "Very Easy"
	case avgOpponentStrength < 45:
		return "Easy"
	case avgOpponentStrength < 60:
		return "Medium"
	case avgOpponentStrength < 75:
		return "Difficult"
	default:
		return "Very Difficult"
	}
}

// MatchupBonus computes the value score adjustment for the next matchup,
// gated on availability: unavailable players and unlikely starters are
// penalized without consulting the schedule at all.
func (a *Assessor) MatchupBonus(status PlayerStatus, own TeamStrength, nextFixture models.Optional[models.Fixture]) Bonus {
	if !status.IsHealthy {
		return Bonus{Points: -25, Reason: "Injured/unavailable (" + status.Reason + ")"}
	}
	if !status.IsLikelyStarter {
		penalty := -15
		if status.LineupProbability == ProbBench {
			penalty = -10
		}
		return Bonus{Points: penalty, Reason: "Unlikely to play (" + status.Reason + ")"}
	}

	fixture, ok := nextFixture.Get()
	if !ok {
		// No matchup data: small bonus for a strong team, nothing otherwise.
		if own.StrengthScore >= 70 {
			return Bonus{Points: 5, Reason: "Strong team"}
		}
		return Bonus{Points: 0, Reason: "Likely starter"}
	}

	opponentID, _ := fixture.OpponentOf(own.TeamID)
	opponent := a.opponentStrength(opponentID)
	difficulty := MatchupDifficulty(own, opponent)

	var points int
	var reason string
	starter := status.LineupProbability == ProbStarter
	switch {
	case difficulty < 30:
		points, reason = 5, "Easy matchup"
		if starter {
			points = 10
		}
	case difficulty < 50:
		points, reason = 2, "Favorable matchup"
		if starter {
			points = 5
		}
	case difficulty < 70:
		points, reason = 0, "Medium matchup"
	default:
		points, reason = -8, "Difficult matchup"
		if starter {
			points = -5
		}
	}

	if starter && own.StrengthScore >= 75 {
		points += 3
		reason += " (key player on top team)"
	}

	return Bonus{Points: points, Reason: reason, Difficulty: models.Some(difficulty)}
}

// Package schedule assesses fixture difficulty for a player's upcoming games.
//
// Team strength blends league position (60%) with points per game (40%) into
// a 0-100 score. The strength-of-schedule score is a weighted combination of
// three fixture windows (next 3 games 70%, next 5 games 20%, full season 10%)
// and is translated into a value-score bonus bucketed by the short window's
// average opponent rank. Availability is checked before any schedule math:
// unavailable players and unlikely starters short-circuit to fixed penalties.
package schedule

import (
	"math"
	"sync"

	"github.com/kickwise/kickwise/internal/models"
)

// TeamStrength is the computed strength assessment for one team.
type TeamStrength struct {
	TeamID         string  `json:"team_id"`
	TeamName       string  `json:"team_name"`
	LeaguePosition int     `json:"league_position"`
	Wins           int     `json:"wins"`
	Draws          int     `json:"draws"`
	Losses         int     `json:"losses"`
	TotalPoints    int     `json:"total_points"`
	StrengthScore  float64 `json:"strength_score"` // 0-100, higher = stronger
}

// neutralStrength is substituted when an opponent cannot be resolved:
// league-average strength and mid-table rank.
const (
	neutralStrengthScore = 50.0
	neutralRank          = 9.5
)

// StrengthFromStanding computes a team's strength score from its standings
// record. Position contributes 60% (1st place = 100, 18th = 0) and points
// per game 40% (3 ppg = 100); teams with no games played get a neutral 50
// for the ppg component.
func StrengthFromStanding(standing models.TeamStanding) TeamStrength {
	totalPoints := standing.Wins*3 + standing.Draws

	positionScore := float64(18-standing.LeaguePosition) / 17 * 100

	ppgScore := 50.0
	gamesPlayed := standing.Wins + standing.Draws + standing.Losses
	if gamesPlayed > 0 {
		pointsPerGame := float64(totalPoints) / float64(gamesPlayed)
		ppgScore = pointsPerGame / 3 * 100
	}

	score := positionScore*0.6 + ppgScore*0.4

	return TeamStrength{
		TeamID:         standing.TeamID,
		TeamName:       standing.TeamName,
		LeaguePosition: standing.LeaguePosition,
		Wins:           standing.Wins,
		Draws:          standing.Draws,
		Losses:         standing.Losses,
		TotalPoints:    totalPoints,
		StrengthScore:  math.Round(score*10) / 10,
	}
}

// MatchupDifficulty scores how hard a single matchup is for the player's
// team: 50 is an even matchup, and every 2 points of opponent strength
// advantage adds 1, clamped to [0, 100].
func MatchupDifficulty(own, opponent TeamStrength) float64 {
	difficulty := 50 + (opponent.StrengthScore-own.StrengthScore)/2
	return math.Round(math.Max(0, math.Min(100, difficulty))*10) / 10
}

// StrengthCache memoizes resolved team strengths for the lifetime of one
// analysis batch. It is an optimization only: a miss simply triggers
// recomputation. The caller owns the cache and clears it between batches;
// when a batch fans out across goroutines, populate the cache up front and
// treat it as read-only afterwards.
type StrengthCache struct {
	mu sync.RWMutex
	m  map[string]TeamStrength
}

// NewStrengthCache creates an empty cache.
func NewStrengthCache() *StrengthCache {
	return &StrengthCache{m: make(map[string]TeamStrength)}
}

// Get returns the cached strength for a team, if present.
func (c *StrengthCache) Get(teamID string) (TeamStrength, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ts, ok := c.m[teamID]
	return ts, ok
}

// Put stores a team's strength.
func (c *StrengthCache) Put(ts TeamStrength) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[ts.TeamID] = ts
}

// Clear empties the cache. Call between analysis batches.
func (c *StrengthCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m = make(map[string]TeamStrength)
}

// Len returns the number of cached teams.
func (c *StrengthCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}

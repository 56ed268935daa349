package models

import (
	"errors"
	"fmt"
	"time"
)

// TeamStanding is a raw league-table record for one team, as returned by the
// standings provider.
type TeamStanding struct {
	TeamID         string `json:"team_id"`
	TeamName       string `json:"team_name"`
	LeaguePosition int    `json:"league_position"` // 1 = top of the table, 18 = bottom
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
}

// Validate checks that all standing fields are valid.
func (t *TeamStanding) Validate() error {
	if t.TeamID == "" {
		return errors.New("team ID must not be empty")
	}
	if t.LeaguePosition < 1 || t.LeaguePosition > 18 {
		return fmt.Errorf("league position must be between 1 and 18, got %d", t.LeaguePosition)
	}
	if t.Wins < 0 || t.Draws < 0 || t.Losses < 0 {
		return errors.New("win/draw/loss counts must not be negative")
	}
	return nil
}

// Fixture is one match from a team's season summary. Only unplayed fixtures
// are relevant to schedule assessment; the assessor filters them itself.
type Fixture struct {
	HomeTeamID string    `json:"home_team_id"`
	AwayTeamID string    `json:"away_team_id"`
	Matchday   int       `json:"matchday"`
	Date       time.Time `json:"date"`
	Played     bool      `json:"played"`
}

// OpponentOf returns the opposing team ID and whether teamID plays at home.
func (f *Fixture) OpponentOf(teamID string) (opponentID string, isHome bool) {
	if f.HomeTeamID == teamID {
		return f.AwayTeamID, true
	}
	return f.HomeTeamID, false
}

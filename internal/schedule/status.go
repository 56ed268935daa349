package schedule

// Player status codes as reported by the status provider.
const (
	StatusHealthy      = 0
	StatusUncertain    = 2
	StatusInjuredShort = 4
	StatusInjuredLong  = 256
)

// Lineup probability codes, 1 = nailed-on starter through 5 = unlikely to play.
const (
	ProbStarter     = 1
	ProbRotation    = 2
	ProbBench       = 3
	ProbRarelyPlays = 4
	ProbUnlikely    = 5
)

// PlayerStatus is the classified health and lineup outlook for a player.
// It is a pure function of the raw status and lineup codes.
type PlayerStatus struct {
	IsHealthy         bool   `json:"is_healthy"`
	IsLikelyStarter   bool   `json:"is_likely_starter"`
	LineupProbability int    `json:"lineup_probability"` // 1-5
	StatusCode        int    `json:"status_code"`
	Reason            string `json:"reason"`
}

// ClassifyStatus interprets raw status and lineup codes. Status 0 is healthy;
// any other code marks the player unavailable or uncertain. Lineup codes 1-2
// count as likely starters.
func ClassifyStatus(statusCode, lineupProbability int) PlayerStatus {
	var reason string
	switch {
	case statusCode == StatusInjuredLong:
		reason = "Long-term injury"
	case statusCode == StatusInjuredShort:
		reason = "Injured"
	case statusCode == StatusUncertain:
		reason = "Status uncertain"
	case lineupProbability == ProbStarter:
		reason = "Regular starter"
	case lineupProbability == ProbRotation:
		reason = "Rotation player"
	case lineupProbability == ProbBench:
		reason = "Bench player"
	case lineupProbability == ProbRarelyPlays:
		reason = "Rarely plays"
	case lineupProbability == ProbUnlikely:
		reason = "Unlikely to play"
	default:
		reason = "Healthy, rotation player"
	}

	return PlayerStatus{
		IsHealthy:         statusCode == StatusHealthy,
		IsLikelyStarter:   lineupProbability <= ProbRotation,
		LineupProbability: lineupProbability,
		StatusCode:        statusCode,
		Reason:            reason,
	}
}

package main

import (
	"context"
	"time"

	"github.com/kickwise/kickwise/internal/analyzer"
	"github.com/kickwise/kickwise/internal/kickbase"
	"github.com/kickwise/kickwise/internal/logger"
	"github.com/kickwise/kickwise/internal/models"
	"github.com/kickwise/kickwise/internal/risk"
	"github.com/kickwise/kickwise/internal/schedule"
	"github.com/kickwise/kickwise/internal/storage"
	"github.com/kickwise/kickwise/internal/trader"
)

// buildInputs assembles a pipeline input per player: market value history
// (persisted as today's snapshot along the way), status and fixtures, and the
// derived trend and peak-deviation figures. Players whose history or details
// cannot be fetched still get an input; the pipeline degrades per field.
func buildInputs(ctx context.Context, client *kickbase.Client, store *storage.Store, players []models.Player, source string) []analyzer.PlayerInput {
	inputs := make([]analyzer.PlayerInput, 0, len(players))

	for _, player := range players {
		in := analyzer.PlayerInput{Player: player}

		prices, err := client.MarketValueHistory(ctx, player.ID, cfg.Trading.HistoryTimeframe)
		if err != nil {
			logger.Warn("no market value history for %s: %v", player.ID, err)
		} else {
			in.Prices = prices
			in.TrendPct = analyzer.TrendFromSeries(prices)
			in.PeakDeviationPct = analyzer.PeakDeviationFromSeries(prices)
		}

		details, err := client.PlayerDetails(ctx, cfg.Kickbase.LeagueID, player.ID)
		if err != nil {
			logger.Warn("no player details for %s: %v", player.ID, err)
			in.LineupProbability = schedule.ProbUnlikely
		} else {
			in.StatusCode = details.StatusCode
			in.LineupProbability = details.LineupProbability
			in.Fixtures = details.Fixtures
			games := 0
			for _, f := range details.Fixtures {
				if f.Played {
					games++
				}
			}
			in.GamesPlayed = models.Some(games)
		}

		if drop, err := store.AverageDailyDropPct(player.ID, 14*24*time.Hour); err == nil {
			if d, ok := drop.Get(); ok {
				// Extrapolate the average daily move to the 30-day horizon.
				in.ExpectedReturn30D = models.Some(d * 30)
			}
		}

		if err := store.AddSnapshot(models.ValueSnapshot{
			PlayerID:    player.ID,
			MarketValue: player.MarketValue,
			Price:       player.Price,
			Timestamp:   time.Now(),
			Source:      source,
		}); err != nil {
			logger.Warn("failed to store snapshot for %s: %v", player.ID, err)
		}

		inputs = append(inputs, in)
	}

	return inputs
}

// standingResolver adapts the API client to the schedule resolver contract.
func standingResolver(ctx context.Context, client *kickbase.Client) schedule.Resolver {
	return func(teamID string) (models.TeamStanding, error) {
		return client.TeamProfile(ctx, cfg.Kickbase.LeagueID, teamID)
	}
}

// trendsAndRisks derives the flip finder's trend and risk maps from the
// assembled inputs.
func trendsAndRisks(inputs []analyzer.PlayerInput, analyses []analyzer.PlayerAnalysis) (map[string]trader.Trend, map[string]risk.Profile) {
	trends := make(map[string]trader.Trend, len(inputs))
	for _, in := range inputs {
		if len(in.Prices) == 0 {
			continue
		}
		peak := 0
		for _, p := range in.Prices {
			if p > peak {
				peak = p
			}
		}
		trend := trader.Trend{
			Direction:    "unknown",
			CurrentValue: in.Prices[0],
			PeakValue:    peak,
		}
		if t, ok := in.TrendPct.Get(); ok {
			trend.TrendPct = t
			switch {
			case t > 2:
				trend.Direction = "rising"
			case t < -2:
				trend.Direction = "falling"
			default:
				trend.Direction = "stable"
			}
		}
		trends[in.Player.ID] = trend
	}

	risks := make(map[string]risk.Profile, len(analyses))
	for _, a := range analyses {
		risks[a.Player.ID] = a.Risk
	}
	return trends, risks
}

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kickwise/kickwise/internal/analyzer"
	"github.com/kickwise/kickwise/internal/logger"
	"github.com/kickwise/kickwise/internal/models"
	"github.com/kickwise/kickwise/internal/opportunity"
	"github.com/kickwise/kickwise/internal/storage"
	"github.com/kickwise/kickwise/internal/telegram"
)

var planCmd = &cobra.Command{
	Use:   "plan <player-id>",
	Short: "Build a funded trade plan for a market listing",
	Long:  "Resolves buying the given market listing against the current budget and squad: which holdings to sell, whether the trade is worthwhile, and the budget after.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPlan,
}

func runPlan(cmd *cobra.Command, args []string) error {
	targetID := args[0]

	ctx, stop := commandContext()
	defer stop()

	store, err := storage.New(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	client, err := loginClient(ctx)
	if err != nil {
		return err
	}

	listings, err := client.Market(ctx, cfg.Kickbase.LeagueID)
	if err != nil {
		return err
	}
	var targetPlayer *models.Player
	for i := range listings {
		if listings[i].ID == targetID {
			targetPlayer = &listings[i]
			break
		}
	}
	if targetPlayer == nil {
		return fmt.Errorf("player %s is not on the market", targetID)
	}

	squad, err := client.Squad(ctx, cfg.Kickbase.LeagueID)
	if err != nil {
		return err
	}
	budget, err := client.Budget(ctx, cfg.Kickbase.LeagueID)
	if err != nil {
		return err
	}

	a, err := analyzer.New(standingResolver(ctx, client), cfg.Trading.RiskTolerance)
	if err != nil {
		return err
	}

	squadInputs := buildInputs(ctx, client, store, squad, "squad")
	analyses := a.AnalyzeSquad(squadInputs)
	summary := analyzer.Summarize(analyses)

	targetInputs := buildInputs(ctx, client, store, []models.Player{*targetPlayer}, "market")
	targetAnalysis, err := a.Analyze(targetInputs[0])
	if err != nil {
		return fmt.Errorf("failed to analyze target: %w", err)
	}
	if targetAnalysis.Value.ValueScore < cfg.Trading.MinValueScoreBuy {
		logger.Warn("target value score %.1f is below the buy threshold %.1f",
			targetAnalysis.Value.ValueScore, cfg.Trading.MinValueScoreBuy)
	}

	target := opportunity.Target{
		PlayerID:         targetPlayer.ID,
		Name:             targetPlayer.FullName(),
		Cost:             targetAnalysis.Value.Price,
		ValueScore:       targetAnalysis.Value.ValueScore,
		PointsPerMillion: targetAnalysis.Value.PointsPerMillion,
	}

	resolver, err := opportunity.NewResolver(cfg.Trading.MinSquadSize)
	if err != nil {
		return err
	}
	spendable := budget - cfg.Trading.ReserveBudget
	plan, feasible, err := resolver.Resolve(target, summary.SellCandidates, spendable)
	if err != nil {
		return err
	}
	if !feasible {
		fmt.Fprintf(os.Stdout, "No feasible plan: cannot fund %s within the squad floor of %d players.\n",
			target.Name, cfg.Trading.MinSquadSize)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(plan); err != nil {
		return err
	}

	if cfg.Telegram.Enabled {
		tg, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Error("telegram client: %v", err)
			return nil
		}
		if err := tg.SendPlan(plan); err != nil {
			logger.Error("telegram notify: %v", err)
		}
	}
	return nil
}

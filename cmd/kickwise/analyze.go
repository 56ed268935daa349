package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kickwise/kickwise/internal/analyzer"
	"github.com/kickwise/kickwise/internal/logger"
	"github.com/kickwise/kickwise/internal/storage"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze the current squad",
	Long:  "Fetches the squad, runs the full per-player pipeline (risk, schedule, valuation, scenarios), and prints the analyses with a squad summary as JSON.",
	RunE:  runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
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

	squad, err := client.Squad(ctx, cfg.Kickbase.LeagueID)
	if err != nil {
		return err
	}
	logger.Info("analyzing squad of %d players", len(squad))

	inputs := buildInputs(ctx, client, store, squad, "squad")

	a, err := analyzer.New(standingResolver(ctx, client), cfg.Trading.RiskTolerance)
	if err != nil {
		return err
	}
	analyses := a.AnalyzeSquad(inputs)
	summary := analyzer.Summarize(analyses)

	out := struct {
		Players []analyzer.PlayerAnalysis `json:"players"`
		Summary analyzer.SquadSummary     `json:"summary"`
	}{analyses, summary}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

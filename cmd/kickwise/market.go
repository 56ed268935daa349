package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/kickwise/kickwise/internal/analyzer"
	"github.com/kickwise/kickwise/internal/logger"
	"github.com/kickwise/kickwise/internal/storage"
	"github.com/kickwise/kickwise/internal/telegram"
	"github.com/kickwise/kickwise/internal/trader"
)

var marketMaxResults int

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Scan the transfer market for flip opportunities",
	Long:  "Fetches the market listings, analyzes each player, and filters for short-term flip opportunities within the configured budget, profit, and risk thresholds.",
	RunE:  runMarket,
}

func init() {
	marketCmd.Flags().IntVar(&marketMaxResults, "max-results", 5, "maximum opportunities to report")
}

func runMarket(cmd *cobra.Command, args []string) error {
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
	budget, err := client.Budget(ctx, cfg.Kickbase.LeagueID)
	if err != nil {
		return err
	}
	logger.Info("scanning %d market listings, budget %d", len(listings), budget)

	inputs := buildInputs(ctx, client, store, listings, "market")

	a, err := analyzer.New(standingResolver(ctx, client), cfg.Trading.RiskTolerance)
	if err != nil {
		return err
	}
	analyses := a.AnalyzeSquad(inputs)
	trends, risks := trendsAndRisks(inputs, analyses)

	finder, err := trader.NewFinder(cfg.Trading.MinFlipProfitPct, cfg.Trading.MaxFlipHoldDays, cfg.Trading.MaxFlipRiskScore)
	if err != nil {
		return err
	}
	spendable := budget - cfg.Trading.ReserveBudget
	opportunities := finder.Find(listings, spendable, trends, risks, marketMaxResults)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(opportunities); err != nil {
		return err
	}

	if cfg.Telegram.Enabled && len(opportunities) > 0 {
		tg, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Telegram.MaxRetries, cfg.Telegram.RetryDelayBase)
		if err != nil {
			logger.Error("telegram client: %v", err)
			return nil
		}
		if err := tg.SendOpportunities(opportunities); err != nil {
			logger.Error("telegram notify: %v", err)
		}
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kickwise/kickwise/internal/config"
	"github.com/kickwise/kickwise/internal/kickbase"
	"github.com/kickwise/kickwise/internal/logger"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "kickwise",
	Short:         "Kickbase valuation and decision engine",
	Long:          "kickwise analyzes squad and market data from Kickbase: risk profiles, strength of schedule, value scores, scenario projections, and funded trade plans.",
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = c
		logger.Init(c.Logging.Level, c.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "configs/config.yaml", "path to config file")
	rootCmd.AddCommand(analyzeCmd, marketCmd, planCmd, recordCmd)
}

// commandContext returns a context canceled on SIGINT/SIGTERM so in-flight
// API calls unwind cleanly.
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loginClient builds an authenticated Kickbase client from the configuration.
func loginClient(ctx context.Context) (*kickbase.Client, error) {
	client := kickbase.NewClient(cfg.Kickbase.APIBaseURL, cfg.Kickbase.Timeout, kickbase.ClientConfig{
		MaxRetries:     cfg.Kickbase.MaxRetries,
		RetryDelayBase: cfg.Kickbase.RetryDelayBase,
	})
	if err := client.Login(ctx, cfg.Kickbase.Email, cfg.Kickbase.Password); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}
	return client, nil
}

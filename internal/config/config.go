package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Kickbase KickbaseConfig `mapstructure:"kickbase"`
	Trading  TradingConfig  `mapstructure:"trading"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// KickbaseConfig holds Kickbase API configuration.
type KickbaseConfig struct {
	APIBaseURL     string        `mapstructure:"api_base_url"`
	Email          string        `mapstructure:"email"`
	Password       string        `mapstructure:"password"`
	LeagueID       string        `mapstructure:"league_id"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// TradingConfig holds decision-engine behavior. RiskTolerance ranges from 0
// (risk-averse) to 1 (risk-seeking); ReserveBudget is always kept unspent;
// the flip thresholds bound the short-hold trade filter; HistoryTimeframe is
// the market value history window in days.
type TradingConfig struct {
	RiskTolerance    float64 `mapstructure:"risk_tolerance"`
	MinSquadSize     int     `mapstructure:"min_squad_size"`
	ReserveBudget    int     `mapstructure:"reserve_budget"`
	MinFlipProfitPct float64 `mapstructure:"min_flip_profit_pct"`
	MaxFlipHoldDays  int     `mapstructure:"max_flip_hold_days"`
	MaxFlipRiskScore float64 `mapstructure:"max_flip_risk_score"`
	MinValueScoreBuy float64 `mapstructure:"min_value_score_buy"`
	HistoryTimeframe string  `mapstructure:"history_timeframe"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	DBPath string `mapstructure:"db_path"`
}

// TelegramConfig holds Telegram notification configuration.
type TelegramConfig struct {
	BotToken       string        `mapstructure:"bot_token"`
	ChatID         string        `mapstructure:"chat_id"`
	Enabled        bool          `mapstructure:"enabled"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryDelayBase time.Duration `mapstructure:"retry_delay_base"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from file and environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	v.SetEnvPrefix("KICKWISE")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// setDefaults configures default values for all configuration options.
func setDefaults(v *viper.Viper) {
	v.SetDefault("kickbase.api_base_url", "https://api.kickbase.com")
	v.SetDefault("kickbase.timeout", "30s")
	v.SetDefault("kickbase.max_retries", 3)
	v.SetDefault("kickbase.retry_delay_base", "1s")

	v.SetDefault("trading.risk_tolerance", 0.5)
	v.SetDefault("trading.min_squad_size", 10)
	v.SetDefault("trading.reserve_budget", 1_000_000)
	v.SetDefault("trading.min_flip_profit_pct", 10.0)
	v.SetDefault("trading.max_flip_hold_days", 7)
	v.SetDefault("trading.max_flip_risk_score", 50.0)
	v.SetDefault("trading.min_value_score_buy", 50.0)
	v.SetDefault("trading.history_timeframe", "92")

	v.SetDefault("storage.db_path", "./data/kickwise.db")

	v.SetDefault("telegram.enabled", false)
	v.SetDefault("telegram.max_retries", 3)
	v.SetDefault("telegram.retry_delay_base", "1s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate checks that all configuration values are valid.
func (c *Config) Validate() error {
	if c.Kickbase.APIBaseURL == "" {
		return fmt.Errorf("kickbase.api_base_url is required")
	}
	if c.Kickbase.LeagueID == "" {
		return fmt.Errorf("kickbase.league_id is required")
	}
	if c.Kickbase.Timeout < time.Second {
		return fmt.Errorf("kickbase.timeout must be at least 1 second")
	}

	if c.Trading.RiskTolerance < 0 || c.Trading.RiskTolerance > 1 {
		return fmt.Errorf("trading.risk_tolerance must be between 0.0 and 1.0")
	}
	if c.Trading.MinSquadSize < 1 {
		return fmt.Errorf("trading.min_squad_size must be at least 1")
	}
	if c.Trading.ReserveBudget < 0 {
		return fmt.Errorf("trading.reserve_budget must not be negative")
	}
	if c.Trading.MinFlipProfitPct < 0 {
		return fmt.Errorf("trading.min_flip_profit_pct must not be negative")
	}
	if c.Trading.MaxFlipHoldDays < 1 {
		return fmt.Errorf("trading.max_flip_hold_days must be at least 1")
	}
	if c.Trading.MaxFlipRiskScore < 0 || c.Trading.MaxFlipRiskScore > 100 {
		return fmt.Errorf("trading.max_flip_risk_score must be between 0 and 100")
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path is required")
	}

	if c.Telegram.Enabled {
		if c.Telegram.BotToken == "" {
			return fmt.Errorf("telegram.bot_token is required when telegram is enabled")
		}
		if c.Telegram.ChatID == "" {
			return fmt.Errorf("telegram.chat_id is required when telegram is enabled")
		}
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, console")
	}

	return nil
}

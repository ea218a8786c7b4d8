package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"PairSentinel/internal/model"
)

// Config holds all application configuration.
type Config struct {
	Screener struct {
		Symbols       []string `yaml:"symbols"`
		Pairs         []string `yaml:"pairs"`
		AutoDiscover  bool     `yaml:"auto_discover"`
		TopPairs      int      `yaml:"top_pairs"`
		AnalysisCron  string   `yaml:"analysis_cron"`
		DiscoveryCron string   `yaml:"discovery_cron"`
		SummaryCron   string   `yaml:"summary_cron"`
		RunOnStart    bool     `yaml:"run_on_start"`
	} `yaml:"screener"`
	Analysis struct {
		LookbackPeriod    int    `yaml:"lookback_period"`
		ZScoreWindow      int    `yaml:"zscore_window"`
		CorrelationWindow int    `yaml:"correlation_window"`
		HedgeRatioMethod  string `yaml:"hedge_ratio_method"`
	} `yaml:"analysis"`
	Signals struct {
		EntryThreshold       float64 `yaml:"entry_threshold"`
		ExitThreshold        float64 `yaml:"exit_threshold"`
		StopLossThreshold    float64 `yaml:"stop_loss_threshold"`
		MinCorrelation       float64 `yaml:"min_correlation"`
		RequireCointegration bool    `yaml:"require_cointegration"`
	} `yaml:"signals"`
	Tradeable struct {
		MinCorrelation         float64 `yaml:"min_correlation"`
		MaxCointegrationPValue float64 `yaml:"max_cointegration_pvalue"`
		MaxHalfLife            float64 `yaml:"max_half_life"`
		MaxHurst               float64 `yaml:"max_hurst"`
	} `yaml:"tradeable"`
	Feed struct {
		Source        string `yaml:"source"`
		CSVDir        string `yaml:"csv_dir"`
		Seed          int64  `yaml:"seed"`
		HistoryPoints int    `yaml:"history_points"`
	} `yaml:"feed"`
	Storage struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Telemetry struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"telemetry"`
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// yaml only overwrites keys present in the file, so the one default
	// that is true must be seeded before parsing
	cfg.Signals.RequireCointegration = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("PAIRSENTINEL_PAIRS"); v != "" {
		cfg.Screener.Pairs = splitList(v)
	}
	if v := os.Getenv("PAIRSENTINEL_SYMBOLS"); v != "" {
		cfg.Screener.Symbols = splitList(v)
	}
	if v := os.Getenv("PAIRSENTINEL_ANALYSIS_CRON"); v != "" {
		cfg.Screener.AnalysisCron = v
	}
	if v := os.Getenv("PAIRSENTINEL_RUN_ON_START"); v != "" {
		cfg.Screener.RunOnStart = v == "true" || v == "1"
	}
	if v := os.Getenv("PAIRSENTINEL_DB_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}
	if v := os.Getenv("PAIRSENTINEL_FEED"); v != "" {
		cfg.Feed.Source = v
	}
	if v := os.Getenv("PAIRSENTINEL_CSV_DIR"); v != "" {
		cfg.Feed.CSVDir = v
	}
	if v := os.Getenv("PAIRSENTINEL_TELEMETRY_ADDR"); v != "" {
		cfg.Telemetry.ListenAddr = v
	}
	if v := os.Getenv("PAIRSENTINEL_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}

	// Defaults
	if cfg.Screener.TopPairs == 0 {
		cfg.Screener.TopPairs = 10
	}
	if cfg.Screener.AnalysisCron == "" {
		cfg.Screener.AnalysisCron = "0 */5 10-18 * * 1-5"
	}
	if cfg.Screener.DiscoveryCron == "" {
		cfg.Screener.DiscoveryCron = "0 30 9 * * 1-5"
	}
	if cfg.Screener.SummaryCron == "" {
		cfg.Screener.SummaryCron = "0 0 18 * * 1-5"
	}
	if cfg.Analysis.LookbackPeriod == 0 {
		cfg.Analysis.LookbackPeriod = 60
	}
	if cfg.Analysis.ZScoreWindow == 0 {
		cfg.Analysis.ZScoreWindow = 20
	}
	if cfg.Analysis.CorrelationWindow == 0 {
		cfg.Analysis.CorrelationWindow = 30
	}
	if cfg.Analysis.HedgeRatioMethod == "" {
		cfg.Analysis.HedgeRatioMethod = "ols"
	}
	if cfg.Signals.EntryThreshold == 0 {
		cfg.Signals.EntryThreshold = 2.0
	}
	if cfg.Signals.StopLossThreshold == 0 {
		cfg.Signals.StopLossThreshold = 3.0
	}
	if cfg.Signals.MinCorrelation == 0 {
		cfg.Signals.MinCorrelation = 0.7
	}
	if cfg.Tradeable.MinCorrelation == 0 {
		cfg.Tradeable.MinCorrelation = 0.7
	}
	if cfg.Tradeable.MaxCointegrationPValue == 0 {
		cfg.Tradeable.MaxCointegrationPValue = 0.05
	}
	if cfg.Tradeable.MaxHalfLife == 0 {
		cfg.Tradeable.MaxHalfLife = 30
	}
	if cfg.Tradeable.MaxHurst == 0 {
		cfg.Tradeable.MaxHurst = 0.5
	}
	if cfg.Feed.Source == "" {
		cfg.Feed.Source = "synthetic"
	}
	if cfg.Feed.CSVDir == "" {
		cfg.Feed.CSVDir = "data/prices"
	}
	if cfg.Feed.Seed == 0 {
		cfg.Feed.Seed = 42
	}
	if cfg.Feed.HistoryPoints == 0 {
		cfg.Feed.HistoryPoints = 120
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if len(c.Screener.Pairs) == 0 && !(c.Screener.AutoDiscover && len(c.Screener.Symbols) >= 2) {
		return fmt.Errorf("screener: configure pairs, or auto_discover with at least two symbols")
	}
	if _, err := c.Pairs(); err != nil {
		return err
	}
	if c.Analysis.LookbackPeriod < 2 {
		return fmt.Errorf("analysis.lookback_period must be at least 2")
	}
	if c.Analysis.ZScoreWindow < 2 {
		return fmt.Errorf("analysis.zscore_window must be at least 2")
	}
	if c.Analysis.CorrelationWindow < 2 {
		return fmt.Errorf("analysis.correlation_window must be at least 2")
	}
	if m := c.Analysis.HedgeRatioMethod; m != "ols" && m != "tls" {
		return fmt.Errorf("analysis.hedge_ratio_method must be ols or tls, got %q", m)
	}
	if c.Signals.ExitThreshold < 0 {
		return fmt.Errorf("signals.exit_threshold must not be negative")
	}
	if c.Signals.EntryThreshold < c.Signals.ExitThreshold {
		return fmt.Errorf("signals.entry_threshold must be at least exit_threshold")
	}
	if c.Signals.StopLossThreshold <= c.Signals.EntryThreshold {
		return fmt.Errorf("signals.stop_loss_threshold must exceed entry_threshold")
	}
	switch c.Feed.Source {
	case "csv":
		if c.Feed.CSVDir == "" {
			return fmt.Errorf("feed.csv_dir is required for the csv source")
		}
	case "synthetic":
	default:
		return fmt.Errorf("feed.source must be csv or synthetic, got %q", c.Feed.Source)
	}
	return nil
}

// Pairs parses the configured pair list.
func (c *Config) Pairs() ([]model.Pair, error) {
	out := make([]model.Pair, 0, len(c.Screener.Pairs))
	for _, raw := range c.Screener.Pairs {
		p, err := model.ParsePair(raw)
		if err != nil {
			return nil, fmt.Errorf("screener.pairs: %w", err)
		}
		out = append(out, p)
	}
	return out, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

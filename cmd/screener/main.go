package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"PairSentinel/internal/analyzer"
	"PairSentinel/internal/config"
	"PairSentinel/internal/feed"
	"PairSentinel/internal/logging"
	"PairSentinel/internal/notifier"
	"PairSentinel/internal/recorder"
	"PairSentinel/internal/scheduler"
	"PairSentinel/internal/screener"
	sig "PairSentinel/internal/signal"
	"PairSentinel/internal/stats"
	"PairSentinel/internal/telemetry"
)

func main() {
	_ = godotenv.Load()

	cfgPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	flag.Parse()
	if v := os.Getenv("PAIRSENTINEL_CONFIG"); v != "" {
		*cfgPath = v
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fallback := logging.New("info", false)
		fallback.Fatal().Err(err).Msg("load config")
	}
	log := logging.New(cfg.Logging.Level, cfg.Logging.Pretty)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Str("config", *cfgPath).Msg("PairSentinel starting")

	tel := telemetry.New(log.With().Str("component", "telemetry").Logger())
	tel.Serve(cfg.Telemetry.ListenAddr)

	var rec recorder.Recorder = recorder.NewNoopRecorder()
	if cfg.Storage.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Storage.SQLitePath, log.With().Str("component", "recorder").Logger())
		if err != nil {
			log.Warn().Err(err).Msg("sqlite recorder unavailable, continuing without persistence")
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		log.Warn().Msg("no storage.sqlite_path configured, metrics and signals will not persist")
	}

	var src feed.Source
	switch cfg.Feed.Source {
	case "csv":
		src = feed.NewCSVSource(cfg.Feed.CSVDir, log.With().Str("component", "feed").Logger())
	default:
		src = feed.NewSyntheticSource(cfg.Feed.Seed, log.With().Str("component", "feed").Logger())
	}
	log.Info().Str("source", src.Name()).Msg("price feed ready")

	an := analyzer.New(analyzer.Config{
		LookbackWindow:    cfg.Analysis.LookbackPeriod,
		ZScoreWindow:      cfg.Analysis.ZScoreWindow,
		CorrelationWindow: cfg.Analysis.CorrelationWindow,
		HedgeMethod:       stats.RegressionMethod(cfg.Analysis.HedgeRatioMethod),
		MinCorrelation:    cfg.Tradeable.MinCorrelation,
		MaxCointPValue:    cfg.Tradeable.MaxCointegrationPValue,
		MaxHalfLife:       cfg.Tradeable.MaxHalfLife,
		MaxHurst:          cfg.Tradeable.MaxHurst,
	}, log.With().Str("component", "analyzer").Logger())

	gen := sig.New(sig.Config{
		EntryThreshold:       cfg.Signals.EntryThreshold,
		ExitThreshold:        cfg.Signals.ExitThreshold,
		StopLossThreshold:    cfg.Signals.StopLossThreshold,
		MinCorrelation:       cfg.Signals.MinCorrelation,
		RequireCointegration: cfg.Signals.RequireCointegration,
	}, log.With().Str("component", "signals").Logger())

	pairs, err := cfg.Pairs()
	if err != nil {
		log.Fatal().Err(err).Msg("parse pairs")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sc := screener.New(screener.Config{
		Pairs:         pairs,
		Symbols:       cfg.Screener.Symbols,
		HistoryPoints: cfg.Feed.HistoryPoints,
		TopPairs:      cfg.Screener.TopPairs,
	}, an, gen, src, rec, notifier.NewLogNotifier(log.With().Str("component", "notifier").Logger()),
		tel, log.With().Str("component", "screener").Logger())

	sched := scheduler.New(ctx, sc, log.With().Str("component", "scheduler").Logger())
	discoveryCron := ""
	if cfg.Screener.AutoDiscover {
		discoveryCron = cfg.Screener.DiscoveryCron
	}
	if err := sched.Register(cfg.Screener.AnalysisCron, discoveryCron, cfg.Screener.SummaryCron); err != nil {
		log.Fatal().Err(err).Msg("register cron jobs")
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Screener.RunOnStart {
		log.Info().Msg("run_on_start enabled, executing a cycle now")
		go sched.RunCycleNow()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("telemetry shutdown")
	}
	log.Info().Msg("PairSentinel stopped")
}

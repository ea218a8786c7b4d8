// Package screener runs the per-cycle pipeline: fetch histories,
// analyze pairs, generate signals, apply position transitions, persist
// and notify. Scheduling is external; every entry point takes a context
// and returns when the cycle is done.
package screener

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"PairSentinel/internal/analyzer"
	"PairSentinel/internal/feed"
	"PairSentinel/internal/model"
	"PairSentinel/internal/notifier"
	"PairSentinel/internal/recorder"
	"PairSentinel/internal/signal"
	"PairSentinel/internal/telemetry"
)

// Config selects what the screener monitors and how much history it
// requests per symbol.
type Config struct {
	Pairs         []model.Pair
	Symbols       []string
	HistoryPoints int
	TopPairs      int
}

// Screener wires the analysis pipeline to its collaborators.
type Screener struct {
	cfg       Config
	analyzer  *analyzer.Analyzer
	generator *signal.Generator
	source    feed.Source
	rec       recorder.Recorder
	notify    notifier.Notifier
	tel       *telemetry.Telemetry
	log       zerolog.Logger

	// firstRun relaxes signal validation for one cycle so positions
	// opened before a restart are re-synced against the current zone.
	firstRun bool
}

// New builds a Screener. tel may be nil.
func New(cfg Config, an *analyzer.Analyzer, gen *signal.Generator, src feed.Source,
	rec recorder.Recorder, n notifier.Notifier, tel *telemetry.Telemetry, log zerolog.Logger) *Screener {
	if cfg.HistoryPoints <= 0 {
		cfg.HistoryPoints = 120
	}
	if cfg.TopPairs <= 0 {
		cfg.TopPairs = 10
	}
	return &Screener{
		cfg:       cfg,
		analyzer:  an,
		generator: gen,
		source:    src,
		rec:       rec,
		notify:    n,
		tel:       tel,
		log:       log,
		firstRun:  true,
	}
}

// RunCycle analyzes every active pair once. Per-pair failures are
// logged and skipped; only an empty pair universe or a canceled context
// ends the cycle early.
func (s *Screener) RunCycle(ctx context.Context) error {
	started := time.Now()
	resync := s.firstRun

	pairs, err := s.activePairs()
	if err != nil {
		return fmt.Errorf("load active pairs: %w", err)
	}
	if len(pairs) == 0 {
		return fmt.Errorf("no pairs to analyze")
	}

	positions, err := s.openPositions()
	if err != nil {
		s.log.Warn().Err(err).Msg("position lookup failed, assuming flat")
		positions = map[string]*model.Position{}
	}

	var signals []*model.TradingSignal
	analyzed := 0
	for _, pair := range pairs {
		if ctx.Err() != nil {
			s.log.Warn().Msg("cycle canceled")
			break
		}
		sig, err := s.evaluatePair(ctx, pair, positions[pair.Key()], resync)
		if err != nil {
			s.tel.AnalysisFailed()
			s.log.Warn().Err(err).Str("pair", pair.Key()).Msg("pair skipped")
			continue
		}
		analyzed++
		if sig != nil && sig.Actionable() {
			signals = append(signals, sig)
		}
	}

	for _, sig := range signals {
		s.applyTransition(sig, positions[sig.Key()])
		s.persistAndNotify(ctx, sig)
	}

	s.firstRun = false
	elapsed := time.Since(started)
	s.tel.CycleCompleted(elapsed)
	s.log.Info().
		Int("pairs", len(pairs)).
		Int("analyzed", analyzed).
		Int("signals", len(signals)).
		Dur("elapsed", elapsed).
		Bool("resync", resync).
		Msg("cycle completed")
	return nil
}

// evaluatePair runs one pair through analysis and signal generation and
// persists the metrics snapshot. It returns nil without error when the
// analysis succeeded but produced nothing actionable.
func (s *Screener) evaluatePair(ctx context.Context, pair model.Pair, pos *model.Position, resync bool) (*model.TradingSignal, error) {
	s1, err := s.source.History(ctx, pair.Symbol1, s.cfg.HistoryPoints)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", pair.Symbol1, err)
	}
	s2, err := s.source.History(ctx, pair.Symbol2, s.cfg.HistoryPoints)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", pair.Symbol2, err)
	}

	m, err := s.analyzer.AnalyzePair(pair, s1, s2)
	if err != nil {
		return nil, err
	}
	s.tel.PairAnalyzed()
	if err := s.rec.SaveMetrics(m); err != nil {
		s.log.Warn().Err(err).Str("pair", pair.Key()).Msg("metrics not persisted")
	}

	held := model.SignalNone
	if pos != nil {
		held = pos.Direction
	}
	p1 := lastPrice(s1)
	p2 := lastPrice(s2)
	sig := s.generator.Generate(m, held, p1, p2, resync)

	if resync && sig.Actionable() {
		sig.Metadata["startup_detection"] = true
	}
	if pos != nil && !sig.Type.IsExit() {
		s.markPosition(pos, m, p1, p2)
	}
	return sig, nil
}

// applyTransition moves the recorder's position ledger per the signal:
// entries open a position, exits and stops close the held one.
func (s *Screener) applyTransition(sig *model.TradingSignal, pos *model.Position) {
	switch {
	case sig.Type.IsEntry():
		if pos != nil {
			// entry signals are only produced flat, so a held position
			// here means the ledger and the generator disagree
			s.log.Warn().Str("pair", sig.Key()).Msg("entry signal while a position is open, ignoring")
			return
		}
		newPos := &model.Position{
			Symbol1:     sig.Symbol1,
			Symbol2:     sig.Symbol2,
			Direction:   sig.Type,
			EntryZScore: sig.ZScore,
			HedgeRatio:  sig.HedgeRatio,
			OpenedAt:    sig.GeneratedAt,
		}
		if sig.Price1 != nil {
			newPos.EntryPrice1 = *sig.Price1
		}
		if sig.Price2 != nil {
			newPos.EntryPrice2 = *sig.Price2
		}
		if err := s.rec.OpenPosition(newPos); err != nil {
			s.log.Warn().Err(err).Str("pair", sig.Key()).Msg("position not opened")
		}
	case sig.Type.IsExit():
		closed, err := s.rec.ClosePosition(model.Pair{Symbol1: sig.Symbol1, Symbol2: sig.Symbol2})
		if err != nil {
			s.log.Warn().Err(err).Str("pair", sig.Key()).Msg("position not closed")
		} else if !closed {
			s.log.Warn().Str("pair", sig.Key()).Msg("exit signal with no open position")
		}
	}
}

func (s *Screener) persistAndNotify(ctx context.Context, sig *model.TradingSignal) {
	s.tel.SignalGenerated(string(sig.Type))

	id, err := s.rec.SaveSignal(sig)
	if err != nil {
		s.log.Warn().Err(err).Str("pair", sig.Key()).Msg("signal not persisted")
	}
	if err := s.notify.Notify(ctx, string(sig.Type)+" "+sig.Display(), notifier.FormatSignal(sig)); err != nil {
		s.log.Warn().Err(err).Str("pair", sig.Key()).Msg("notification failed")
		return
	}
	s.tel.NotificationSent()
	if id > 0 {
		if err := s.rec.MarkNotified(id); err != nil {
			s.log.Warn().Err(err).Int64("id", id).Msg("notified flag not set")
		}
	}
}

// markPosition refreshes the stored mark on a held position.
func (s *Screener) markPosition(pos *model.Position, m *model.PairMetrics, p1, p2 *float64) {
	var pnl *float64
	if p1 != nil && p2 != nil && pos.EntryPrice1 > 0 && pos.EntryPrice2 > 0 {
		v := spreadReturn(pos, *p1, *p2)
		pnl = &v
	}
	if err := s.rec.UpdatePosition(pos.ID, m.CurrentZScore, p1, p2, pnl); err != nil {
		s.log.Warn().Err(err).Str("pair", pos.Key()).Msg("position mark not persisted")
	}
}

// spreadReturn is the percent return of the two-legged position: the
// dependent leg's return minus the independent leg's, sign-flipped for
// a short spread.
func spreadReturn(pos *model.Position, p1, p2 float64) float64 {
	r := (p1/pos.EntryPrice1 - 1) - (p2/pos.EntryPrice2 - 1)
	if pos.Direction == model.SignalShortSpread {
		r = -r
	}
	return r * 100
}

// DiscoverPairs scans every configured symbol combination and registers
// the strongest tradeable pairs with the recorder.
func (s *Screener) DiscoverPairs(ctx context.Context) error {
	if len(s.cfg.Symbols) < 2 {
		return fmt.Errorf("discovery needs at least two symbols")
	}
	prices := make(map[string]model.Series, len(s.cfg.Symbols))
	for _, sym := range s.cfg.Symbols {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		series, err := s.source.History(ctx, sym, s.cfg.HistoryPoints)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", sym).Msg("symbol skipped in discovery")
			continue
		}
		prices[sym] = series
	}

	found := s.analyzer.FindTradeablePairs(ctx, prices)
	if len(found) > s.cfg.TopPairs {
		found = found[:s.cfg.TopPairs]
	}
	for _, m := range found {
		if err := s.rec.AddPair(m.Pair()); err != nil {
			s.log.Warn().Err(err).Str("pair", m.Pair().Key()).Msg("discovered pair not registered")
		}
	}
	s.log.Info().Int("symbols", len(prices)).Int("registered", len(found)).Msg("discovery completed")
	return nil
}

// DailySummary assembles the dashboard report and sends it.
func (s *Screener) DailySummary(ctx context.Context) error {
	stats, err := s.rec.Stats()
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}
	metrics, err := s.rec.LatestMetrics()
	if err != nil {
		s.log.Warn().Err(err).Msg("latest metrics unavailable for the report")
	}
	body := notifier.FormatDailyReport(stats, metrics, s.analyzer.IsTradeable)
	if err := s.notify.Notify(ctx, "daily report", body); err != nil {
		return fmt.Errorf("send daily report: %w", err)
	}
	s.tel.NotificationSent()
	return nil
}

// activePairs returns the recorder's active set, seeding it from config
// on first use.
func (s *Screener) activePairs() ([]model.Pair, error) {
	pairs, err := s.rec.ActivePairs()
	if err != nil {
		return nil, err
	}
	if len(pairs) > 0 {
		return pairs, nil
	}
	for _, p := range s.cfg.Pairs {
		if err := s.rec.AddPair(p); err != nil {
			return nil, err
		}
	}
	return s.cfg.Pairs, nil
}

func (s *Screener) openPositions() (map[string]*model.Position, error) {
	open, err := s.rec.OpenPositions()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*model.Position, len(open))
	for _, pos := range open {
		out[pos.Key()] = pos
	}
	return out, nil
}

func lastPrice(s model.Series) *float64 {
	v := s.Last()
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

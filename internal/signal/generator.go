// Package signal turns pair statistics into trade decisions. The
// generator holds thresholds but no position state: the ledger of open
// positions lives with the caller and is threaded through every call.
package signal

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"PairSentinel/internal/model"
)

// Config sets the decision thresholds. StopLossThreshold must exceed
// EntryThreshold, which must be at least ExitThreshold.
type Config struct {
	EntryThreshold       float64
	ExitThreshold        float64
	StopLossThreshold    float64
	MinCorrelation       float64
	RequireCointegration bool
}

// DefaultConfig returns the stock thresholds: enter at |Z| 2.0, exit at
// the mean, stop out at |Z| 3.0.
func DefaultConfig() Config {
	return Config{
		EntryThreshold:       2.0,
		ExitThreshold:        0.0,
		StopLossThreshold:    3.0,
		MinCorrelation:       0.7,
		RequireCointegration: true,
	}
}

// Generator evaluates pair metrics against the configured thresholds.
type Generator struct {
	cfg Config
	log zerolog.Logger
}

// New builds a Generator. Non-positive entry, stop and correlation
// settings fall back to the defaults. A zero exit threshold is kept as
// given (exit at the mean), as is RequireCointegration false.
func New(cfg Config, log zerolog.Logger) *Generator {
	def := DefaultConfig()
	if cfg.EntryThreshold <= 0 {
		cfg.EntryThreshold = def.EntryThreshold
	}
	if cfg.StopLossThreshold <= 0 {
		cfg.StopLossThreshold = def.StopLossThreshold
	}
	if cfg.MinCorrelation <= 0 {
		cfg.MinCorrelation = def.MinCorrelation
	}
	log.Info().
		Float64("entry", cfg.EntryThreshold).
		Float64("exit", cfg.ExitThreshold).
		Float64("stop", cfg.StopLossThreshold).
		Float64("min_correlation", cfg.MinCorrelation).
		Bool("require_cointegration", cfg.RequireCointegration).
		Msg("signal generator ready")
	return &Generator{cfg: cfg, log: log}
}

// Generate evaluates one pair. currentPosition is the direction held for
// the pair, or empty / SignalNone when flat. resync relaxes the gate to
// the numeric checks only, so a restarted screener can re-detect the zone
// an already-open position sits in.
func (g *Generator) Generate(m *model.PairMetrics, currentPosition model.SignalType, price1, price2 *float64, resync bool) *model.TradingSignal {
	z := m.CurrentZScore

	if !resync && !g.validate(m) {
		return g.reject(m, "Failed validation")
	}
	if resync && (math.IsNaN(z) || math.IsNaN(m.HedgeRatio)) {
		return g.reject(m, "Invalid z-score or hedge ratio")
	}

	typ := g.transition(z, currentPosition)

	sig := &model.TradingSignal{
		Type:       typ,
		Symbol1:    m.Symbol1,
		Symbol2:    m.Symbol2,
		ZScore:     z,
		HedgeRatio: m.HedgeRatio,
		Confidence: Confidence(m),
		Strength:   StrengthFromZ(z),
		TargetZ:    g.cfg.ExitThreshold,
		StopZ:      g.cfg.StopLossThreshold,
		Price1:     price1,
		Price2:     price2,
		Metadata: map[string]any{
			"correlation":     floatOrNil(m.Correlation),
			"is_cointegrated": m.IsCointegrated,
			"half_life":       m.HalfLife,
			"hurst":           m.HurstExponent,
		},
		GeneratedAt: time.Now().UTC(),
	}
	if typ.IsExit() {
		sig.Metadata["closed_position"] = string(currentPosition)
	}

	if sig.Actionable() {
		g.log.Info().
			Str("signal", string(typ)).
			Str("pair", sig.Display()).
			Float64("zscore", z).
			Str("strength", string(sig.Strength)).
			Float64("confidence", sig.Confidence).
			Msg("signal generated")
	}
	return sig
}

// Scan evaluates every profile and returns the actionable signals,
// highest confidence first. positions maps pair keys to held directions;
// prices supplies current quotes by symbol where available.
func (g *Generator) Scan(metrics []*model.PairMetrics, prices map[string]float64, positions map[string]model.SignalType) []*model.TradingSignal {
	out := make([]*model.TradingSignal, 0, len(metrics))
	for _, m := range metrics {
		sig := g.Generate(m, positions[m.Pair().Key()], priceOf(prices, m.Symbol1), priceOf(prices, m.Symbol2), false)
		if sig.Actionable() {
			out = append(out, sig)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Confidence > out[j].Confidence
	})
	g.log.Info().
		Int("pairs", len(metrics)).
		Int("signals", len(out)).
		Msg("signal scan completed")
	return out
}

func (g *Generator) validate(m *model.PairMetrics) bool {
	pair := m.Pair().Key()
	if math.Abs(m.Correlation) < g.cfg.MinCorrelation {
		g.log.Debug().
			Str("pair", pair).
			Float64("correlation", m.Correlation).
			Float64("threshold", g.cfg.MinCorrelation).
			Msg("signal rejected: weak correlation")
		return false
	}
	if g.cfg.RequireCointegration && !m.IsCointegrated {
		g.log.Debug().
			Str("pair", pair).
			Float64("pvalue", m.CointegrationPValue).
			Msg("signal rejected: not cointegrated")
		return false
	}
	if math.IsNaN(m.CurrentZScore) || math.IsNaN(m.HedgeRatio) {
		g.log.Debug().Str("pair", pair).Msg("signal rejected: undefined z-score or hedge ratio")
		return false
	}
	return true
}

func (g *Generator) reject(m *model.PairMetrics, reason string) *model.TradingSignal {
	return &model.TradingSignal{
		Type:        model.SignalNone,
		Symbol1:     m.Symbol1,
		Symbol2:     m.Symbol2,
		ZScore:      m.CurrentZScore,
		HedgeRatio:  m.HedgeRatio,
		Metadata:    map[string]any{"reason": reason},
		GeneratedAt: time.Now().UTC(),
	}
}

// transition applies the zone rules in priority order: stops first, then
// exits for the held direction, then entries when flat.
func (g *Generator) transition(z float64, pos model.SignalType) model.SignalType {
	open := pos == model.SignalLongSpread || pos == model.SignalShortSpread
	if open && math.Abs(z) >= g.cfg.StopLossThreshold {
		return model.SignalStopLoss
	}
	switch pos {
	case model.SignalLongSpread:
		if z >= g.cfg.ExitThreshold {
			return model.SignalExitLong
		}
	case model.SignalShortSpread:
		if z <= -g.cfg.ExitThreshold {
			return model.SignalExitShort
		}
	}
	if pos == "" || pos == model.SignalNone {
		if z <= -g.cfg.EntryThreshold {
			return model.SignalLongSpread
		}
		if z >= g.cfg.EntryThreshold {
			return model.SignalShortSpread
		}
	}
	return model.SignalNone
}

// StrengthFromZ buckets a z-score by magnitude.
func StrengthFromZ(z float64) model.Strength {
	az := math.Abs(z)
	switch {
	case az >= 3.0:
		return model.StrengthStrong
	case az >= 2.5:
		return model.StrengthModerate
	default:
		return model.StrengthWeak
	}
}

// Confidence scores the supporting evidence behind a pair's statistics:
// four components worth up to 0.25 each, capped at 1.0 overall. An
// undefined statistic contributes nothing rather than poisoning the sum.
func Confidence(m *model.PairMetrics) float64 {
	score := 0.0

	if !math.IsNaN(m.Correlation) {
		score += math.Min(math.Abs(m.Correlation)/0.9, 1.0) * 0.25
	}

	if m.IsCointegrated && !math.IsNaN(m.CointegrationPValue) {
		score += math.Max(0, 1-m.CointegrationPValue/0.05) * 0.25
	}

	// the sweet spot is a reversion half-life between 5 and 20 bars
	hl := m.HalfLife.Float()
	switch {
	case hl >= 5 && hl <= 20:
		score += 0.25
	case hl >= 3 && hl <= 30:
		score += 0.15
	case m.HalfLife.HasValue():
		score += 0.05
	}

	hurst := m.HurstExponent.Float()
	switch {
	case hurst < 0.4:
		score += 0.25
	case hurst < 0.5:
		score += 0.15
	case m.HurstExponent.HasValue():
		score += 0.05
	}

	return math.Min(score, 1.0)
}

func floatOrNil(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func priceOf(prices map[string]float64, sym string) *float64 {
	if v, ok := prices[sym]; ok {
		return &v
	}
	return nil
}

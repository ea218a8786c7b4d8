// Package analyzer turns raw price history into per-pair statistical
// profiles and screens candidates for tradeability.
package analyzer

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"PairSentinel/internal/model"
	"PairSentinel/internal/stats"
)

// Config tunes the analysis pipeline and the tradeability gate.
type Config struct {
	LookbackWindow    int
	ZScoreWindow      int
	CorrelationWindow int
	HedgeMethod       stats.RegressionMethod
	MinCorrelation    float64
	MaxCointPValue    float64
	MaxHalfLife       float64
	MaxHurst          float64
}

// DefaultConfig mirrors the screener's stock tuning.
func DefaultConfig() Config {
	return Config{
		LookbackWindow:    60,
		ZScoreWindow:      20,
		CorrelationWindow: 30,
		HedgeMethod:       stats.OLS,
		MinCorrelation:    0.7,
		MaxCointPValue:    0.05,
		MaxHalfLife:       30,
		MaxHurst:          0.5,
	}
}

// Analyzer computes the statistical profile of candidate pairs.
type Analyzer struct {
	cfg Config
	log zerolog.Logger
}

// New builds an Analyzer, filling unset config fields from the defaults.
func New(cfg Config, log zerolog.Logger) *Analyzer {
	def := DefaultConfig()
	if cfg.LookbackWindow <= 0 {
		cfg.LookbackWindow = def.LookbackWindow
	}
	if cfg.ZScoreWindow <= 0 {
		cfg.ZScoreWindow = def.ZScoreWindow
	}
	if cfg.CorrelationWindow <= 0 {
		cfg.CorrelationWindow = def.CorrelationWindow
	}
	if cfg.HedgeMethod == "" {
		cfg.HedgeMethod = def.HedgeMethod
	}
	if cfg.MinCorrelation <= 0 {
		cfg.MinCorrelation = def.MinCorrelation
	}
	if cfg.MaxCointPValue <= 0 {
		cfg.MaxCointPValue = def.MaxCointPValue
	}
	if cfg.MaxHalfLife <= 0 {
		cfg.MaxHalfLife = def.MaxHalfLife
	}
	if cfg.MaxHurst <= 0 {
		cfg.MaxHurst = def.MaxHurst
	}
	return &Analyzer{cfg: cfg, log: log}
}

// AnalyzePair computes the full statistical profile for one pair from its
// two price histories. It fails only when fewer than two clean aligned
// rows remain; every statistical shortfall past that point is reported
// through the NaN and sentinel fields of the returned metrics.
func (a *Analyzer) AnalyzePair(pair model.Pair, s1, s2 model.Series) (*model.PairMetrics, error) {
	j1, j2 := model.AlignSeries(s1, s2)
	j1, j2 = model.DropNaNPairs(j1, j2)
	if j1.Len() < 2 {
		return nil, fmt.Errorf("pair %s: %w after alignment (%d rows)", pair.Key(), stats.ErrTooFewPoints, j1.Len())
	}
	if j1.Len() < a.cfg.LookbackWindow {
		a.log.Warn().
			Str("pair", pair.Key()).
			Int("rows", j1.Len()).
			Int("lookback", a.cfg.LookbackWindow).
			Msg("history shorter than the lookback window, analyzing what is available")
	}
	j1 = j1.Tail(a.cfg.LookbackWindow)
	j2 = j2.Tail(a.cfg.LookbackWindow)

	corr, err := stats.Correlation(j1.Values, j2.Values, stats.Pearson)
	if err != nil {
		return nil, fmt.Errorf("pair %s: correlation: %w", pair.Key(), err)
	}
	rollCorr, err := stats.RollingCorrelation(j1.Values, j2.Values, a.cfg.CorrelationWindow)
	if err != nil {
		return nil, fmt.Errorf("pair %s: rolling correlation: %w", pair.Key(), err)
	}
	coint, err := stats.EngleGranger(j1.Values, j2.Values, a.cfg.MaxCointPValue)
	if err != nil {
		return nil, fmt.Errorf("pair %s: cointegration: %w", pair.Key(), err)
	}
	fit, err := stats.CalculateHedgeRatio(j1.Values, j2.Values, a.cfg.HedgeMethod)
	if err != nil {
		return nil, fmt.Errorf("pair %s: hedge ratio: %w", pair.Key(), err)
	}
	if math.IsNaN(fit.HedgeRatio) {
		a.log.Warn().Str("pair", pair.Key()).Msg("hedge regression degenerate, spread uses unit ratio")
	}
	spread := CalculateSpread(j1, j2, fit.HedgeRatio, false)
	zscores, err := stats.CalculateZScore(spread.Values, a.cfg.ZScoreWindow)
	if err != nil {
		return nil, fmt.Errorf("pair %s: zscore: %w", pair.Key(), err)
	}

	finite := make([]float64, 0, spread.Len())
	for _, v := range spread.Values {
		if !math.IsNaN(v) {
			finite = append(finite, v)
		}
	}

	currentZ := 0.0
	if len(zscores) > 0 {
		currentZ = zscores[len(zscores)-1]
	}

	m := &model.PairMetrics{
		Symbol1:             pair.Symbol1,
		Symbol2:             pair.Symbol2,
		Correlation:         corr,
		RollingCorrelation:  rollCorr,
		CointegrationPValue: coint.PValue,
		IsCointegrated:      coint.IsCointegrated,
		HedgeRatio:          fit.HedgeRatio,
		HedgeIntercept:      fit.Intercept,
		HedgeStdErr:         fit.StdErr,
		HedgeTStat:          fit.TStat,
		HedgePValue:         fit.PValue,
		HedgeRSquared:       fit.RSquared,
		HalfLife:            stats.CalculateHalfLife(spread.Values),
		HurstExponent:       stats.CalculateHurst(spread.Values, 0),
		SpreadMean:          stats.Mean(finite),
		SpreadStd:           stats.SampleStd(finite),
		CurrentZScore:       currentZ,
		Spread:              spread,
		ZScores:             zscores,
		LastUpdated:         time.Now().UTC(),
	}
	a.log.Debug().
		Str("pair", pair.Key()).
		Float64("correlation", corr).
		Float64("zscore", currentZ).
		Bool("cointegrated", coint.IsCointegrated).
		Msg("pair analyzed")
	return m, nil
}

// IsTradeable applies the configured screening gate to a profile.
func (a *Analyzer) IsTradeable(m *model.PairMetrics) bool {
	return m.IsTradeable(a.cfg.MinCorrelation, a.cfg.MaxCointPValue, a.cfg.MaxHalfLife, a.cfg.MaxHurst)
}

// CalculateSpread builds the hedge-adjusted spread of two aligned series:
// s1 minus ratio times s2, truncated to the shorter input. A NaN ratio
// falls back to 1.0 so a degenerate regression still yields a plottable
// curve. With normalize set, the spread is centered and scaled by its own
// standard deviation when that is positive.
func CalculateSpread(s1, s2 model.Series, hedgeRatio float64, normalize bool) model.Series {
	if math.IsNaN(hedgeRatio) {
		hedgeRatio = 1.0
	}
	n := s1.Len()
	if s2.Len() < n {
		n = s2.Len()
	}
	out := model.Series{
		Times:  append([]time.Time(nil), s1.Times[:n]...),
		Values: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		out.Values[i] = s1.Values[i] - hedgeRatio*s2.Values[i]
	}
	if normalize {
		finite := make([]float64, 0, n)
		for _, v := range out.Values {
			if !math.IsNaN(v) {
				finite = append(finite, v)
			}
		}
		mean := stats.Mean(finite)
		std := stats.SampleStd(finite)
		if std > 0 {
			for i := range out.Values {
				out.Values[i] = (out.Values[i] - mean) / std
			}
		}
	}
	return out
}

// FindTradeablePairs analyzes every unordered symbol combination in the
// universe concurrently and returns the profiles that pass the screening
// gate, strongest correlation first. Per-pair failures are logged and
// skipped without aborting the scan; a canceled context stops dispatching
// new work.
func (a *Analyzer) FindTradeablePairs(ctx context.Context, data map[string]model.Series) []*model.PairMetrics {
	symbols := make([]string, 0, len(data))
	for sym := range data {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	pairs := make([]model.Pair, 0, len(symbols)*(len(symbols)-1)/2)
	for i := 0; i < len(symbols); i++ {
		for j := i + 1; j < len(symbols); j++ {
			pairs = append(pairs, model.Pair{Symbol1: symbols[i], Symbol2: symbols[j]})
		}
	}
	a.log.Info().
		Int("symbols", len(symbols)).
		Int("combinations", len(pairs)).
		Msg("scanning universe for tradeable pairs")

	workers := runtime.NumCPU()
	if workers > len(pairs) {
		workers = len(pairs)
	}
	if workers < 1 {
		workers = 1
	}
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var out []*model.PairMetrics

	for _, pair := range pairs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(p model.Pair, s1, s2 model.Series) {
			defer wg.Done()
			defer func() { <-sem }()
			m, err := a.AnalyzePair(p, s1, s2)
			if err != nil {
				a.log.Warn().Err(err).Str("pair", p.Key()).Msg("analysis failed")
				return
			}
			if !a.IsTradeable(m) {
				return
			}
			mu.Lock()
			out = append(out, m)
			mu.Unlock()
		}(pair, data[pair.Symbol1], data[pair.Symbol2])
	}
	wg.Wait()

	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Correlation) > math.Abs(out[j].Correlation)
	})
	return out
}

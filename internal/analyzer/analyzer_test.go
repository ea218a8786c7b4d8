package analyzer

import (
	"bytes"
	"context"
	"errors"
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"PairSentinel/internal/model"
	"PairSentinel/internal/stats"
)

// cointegratedFixture builds two price series sharing a common factor, a
// slow cycle plus a drifting component: y = ratio*x + white noise, so the
// spread is stationary around zero.
func cointegratedFixture(seed int64, n int, ratio, noiseSigma float64) (model.Series, model.Series) {
	r := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	y := make([]float64, n)
	walk := 0.0
	for i := 0; i < n; i++ {
		walk += 0.3 * r.NormFloat64()
		factor := 8*math.Sin(2*math.Pi*float64(i)/60) + walk
		x[i] = factor
		y[i] = ratio*factor + noiseSigma*r.NormFloat64()
	}
	return model.SeriesOf(y...), model.SeriesOf(x...)
}

func newTestAnalyzer(cfg Config) *Analyzer {
	return New(cfg, zerolog.Nop())
}

func TestAnalyzePairCointegrated(t *testing.T) {
	s1, s2 := cointegratedFixture(21, 120, 1.5, 0.5)
	a := newTestAnalyzer(Config{})
	m, err := a.AnalyzePair(model.Pair{Symbol1: "AAA", Symbol2: "BBB"}, s1, s2)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if m.Correlation < 0.9 {
		t.Errorf("shared trend should correlate strongly, got %v", m.Correlation)
	}
	if !m.IsCointegrated {
		t.Errorf("expected cointegration, p=%v", m.CointegrationPValue)
	}
	if math.Abs(m.HedgeRatio-1.5) > 0.1 {
		t.Errorf("hedge ratio should recover 1.5, got %v", m.HedgeRatio)
	}
	if !(m.HedgeStdErr > 0) || math.Abs(m.HedgeTStat) < 10 {
		t.Errorf("regression diagnostics should be populated: se=%v t=%v", m.HedgeStdErr, m.HedgeTStat)
	}
	if math.IsNaN(m.HedgeIntercept) || math.Abs(m.HedgeIntercept) > 1 {
		t.Errorf("intercept should sit near zero, got %v", m.HedgeIntercept)
	}
	if !m.HalfLife.HasValue() || m.HalfLife.Value() <= 0 || m.HalfLife.Value() > 30 {
		t.Errorf("stationary spread should have a short half-life, got %s", m.HalfLife)
	}
	if !m.HurstExponent.HasValue() || m.HurstExponent.Value() >= 0.5 {
		t.Errorf("stationary spread should score below 0.5, got %s", m.HurstExponent)
	}
	if m.Spread.Len() != 60 || len(m.ZScores) != 60 {
		t.Errorf("default lookback should trim to 60 rows, got %d / %d", m.Spread.Len(), len(m.ZScores))
	}
	if math.IsNaN(m.CurrentZScore) {
		t.Error("current z-score should be defined")
	}
	if math.IsNaN(m.SpreadStd) || m.SpreadStd <= 0 {
		t.Errorf("spread std should be positive, got %v", m.SpreadStd)
	}
	if !a.IsTradeable(m) {
		t.Error("fixture should pass the full gate")
	}
	if m.LastUpdated.IsZero() {
		t.Error("metrics should be timestamped")
	}
}

func TestAnalyzePairZScoreWarmup(t *testing.T) {
	s1, s2 := cointegratedFixture(22, 120, 1.2, 0.4)
	a := newTestAnalyzer(Config{})
	m, err := a.AnalyzePair(model.Pair{Symbol1: "AAA", Symbol2: "BBB"}, s1, s2)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	for i := 0; i < 19; i++ {
		if !math.IsNaN(m.ZScores[i]) {
			t.Fatalf("zscore[%d] should be NaN during warmup", i)
		}
	}
	for i := 19; i < len(m.ZScores); i++ {
		if math.IsNaN(m.ZScores[i]) {
			t.Errorf("zscore[%d] should be defined after warmup", i)
		}
	}
}

func TestAnalyzePairTooFewRows(t *testing.T) {
	a := newTestAnalyzer(Config{})
	pair := model.Pair{Symbol1: "AAA", Symbol2: "BBB"}

	_, err := a.AnalyzePair(pair, model.SeriesOf(1), model.SeriesOf(2))
	if !errors.Is(err, stats.ErrTooFewPoints) {
		t.Errorf("one aligned row should fail, got %v", err)
	}

	// disjoint calendars align to nothing
	s1 := model.SeriesOf(1, 2, 3)
	s2 := model.Series{}
	if _, err := a.AnalyzePair(pair, s1, s2); !errors.Is(err, stats.ErrTooFewPoints) {
		t.Errorf("empty join should fail, got %v", err)
	}

	// NaN rows drop below the minimum
	nan := math.NaN()
	if _, err := a.AnalyzePair(pair, model.SeriesOf(1, nan, nan), model.SeriesOf(nan, 2, 3)); !errors.Is(err, stats.ErrTooFewPoints) {
		t.Errorf("all-NaN rows should fail, got %v", err)
	}
}

func TestAnalyzePairShortHistoryWarns(t *testing.T) {
	var buf bytes.Buffer
	a := New(Config{}, zerolog.New(&buf))
	s1, s2 := cointegratedFixture(24, 40, 1.0, 0.5)
	if _, err := a.AnalyzePair(model.Pair{Symbol1: "AAA", Symbol2: "BBB"}, s1, s2); err != nil {
		t.Fatalf("short history should still analyze: %v", err)
	}
	if !strings.Contains(buf.String(), "shorter than the lookback window") {
		t.Errorf("expected a lookback shortfall warning, log was: %s", buf.String())
	}

	buf.Reset()
	s1, s2 = cointegratedFixture(25, 120, 1.0, 0.5)
	if _, err := a.AnalyzePair(model.Pair{Symbol1: "AAA", Symbol2: "BBB"}, s1, s2); err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if strings.Contains(buf.String(), "shorter than the lookback window") {
		t.Error("full history must not warn")
	}
}

func TestAnalyzePairDegenerateHedge(t *testing.T) {
	n := 60
	varying := make([]float64, n)
	flat := make([]float64, n)
	r := rand.New(rand.NewSource(23))
	for i := 0; i < n; i++ {
		varying[i] = 50 + r.NormFloat64()
		flat[i] = 10
	}
	a := newTestAnalyzer(Config{})
	m, err := a.AnalyzePair(model.Pair{Symbol1: "VAR", Symbol2: "FLAT"}, model.SeriesOf(varying...), model.SeriesOf(flat...))
	if err != nil {
		t.Fatalf("degenerate inputs still produce metrics: %v", err)
	}
	if !math.IsNaN(m.HedgeRatio) {
		t.Errorf("flat regressor should give NaN hedge, got %v", m.HedgeRatio)
	}
	// spread falls back to a unit ratio, so the curve itself stays usable
	if math.IsNaN(m.CurrentZScore) {
		t.Error("unit-ratio fallback should keep the z-score defined")
	}
	if math.Abs(m.SpreadMean-40) > 1 {
		t.Errorf("fallback spread should hover near 40, got %v", m.SpreadMean)
	}
	if !math.IsNaN(m.Correlation) {
		t.Errorf("flat side correlation should be NaN, got %v", m.Correlation)
	}
	if m.IsCointegrated {
		t.Error("degenerate pair must not be cointegrated")
	}
	if a.IsTradeable(m) {
		t.Error("degenerate pair must not be tradeable")
	}
}

// stationaryPairFixture builds two series around a shared fast cycle, on
// a different harmonic than cointegratedFixture so cross pairings stay
// uncorrelated.
func stationaryPairFixture(seed int64, n int) (model.Series, model.Series) {
	r := rand.New(rand.NewSource(seed))
	x := make([]float64, n)
	y := make([]float64, n)
	ar := 0.0
	for i := 0; i < n; i++ {
		ar = 0.5*ar + 0.2*r.NormFloat64()
		base := 3*math.Sin(2*math.Pi*float64(i)/20+0.7) + ar
		x[i] = base
		y[i] = base + 0.3*r.NormFloat64()
	}
	return model.SeriesOf(y...), model.SeriesOf(x...)
}

func TestFindTradeablePairs(t *testing.T) {
	// two genuine pairs among ten symbol combinations, plus one symbol
	// whose single observation makes every pairing with it fail
	trendY, trendX := cointegratedFixture(31, 120, 1.0, 0.2)
	flatY, flatX := stationaryPairFixture(32, 120)
	data := map[string]model.Series{
		"AAA": trendY,
		"AAB": trendX,
		"CCC": flatY,
		"CCD": flatX,
		"ZZZ": model.SeriesOf(42),
	}
	a := newTestAnalyzer(Config{})
	out := a.FindTradeablePairs(context.Background(), data)
	if len(out) != 2 {
		keys := make([]string, 0, len(out))
		for _, m := range out {
			keys = append(keys, m.Pair().Key())
		}
		t.Fatalf("expected 2 tradeable pairs, got %d: %v", len(out), keys)
	}
	if out[0].Pair().Key() != "AAA-AAB" || out[1].Pair().Key() != "CCC-CCD" {
		t.Errorf("results should be ordered by correlation strength: %s then %s",
			out[0].Pair().Key(), out[1].Pair().Key())
	}
	if math.Abs(out[0].Correlation) < math.Abs(out[1].Correlation) {
		t.Error("ordering broken")
	}
}

func TestCalculateSpread(t *testing.T) {
	s1 := model.SeriesOf(3, 5, 7, 9)
	s2 := model.SeriesOf(1, 2, 3, 4)

	sp := CalculateSpread(s1, s2, 2.0, false)
	for i, v := range sp.Values {
		if v != 1 {
			t.Fatalf("spread[%d] = %v, want 1", i, v)
		}
	}

	unit := CalculateSpread(s1, s2, math.NaN(), false)
	want := []float64{2, 3, 4, 5}
	for i, v := range unit.Values {
		if v != want[i] {
			t.Fatalf("NaN ratio should fall back to unit: got %v at %d", v, i)
		}
	}

	norm := CalculateSpread(s1, s2, 1.0, true)
	if math.Abs(norm.Values[0]+1.161895) > 1e-5 {
		t.Errorf("normalized spread start = %v", norm.Values[0])
	}
	sum := 0.0
	for _, v := range norm.Values {
		sum += v
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("normalized spread should center on zero, sum %v", sum)
	}

	flat := CalculateSpread(model.SeriesOf(2, 2, 2), model.SeriesOf(1, 1, 1), 1.0, true)
	for _, v := range flat.Values {
		if v != 1 {
			t.Errorf("zero-variance spread must not be rescaled, got %v", v)
		}
	}
}

func TestFindTradeablePairsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s1, s2 := cointegratedFixture(34, 120, 1.0, 0.3)
	data := map[string]model.Series{"A": s1, "B": s2}
	a := newTestAnalyzer(Config{})
	out := a.FindTradeablePairs(ctx, data)
	if len(out) != 0 {
		t.Errorf("canceled context should dispatch nothing, got %d results", len(out))
	}
}

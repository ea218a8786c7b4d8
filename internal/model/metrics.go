package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Pair names the two legs of a candidate pair. Symbol1 is the dependent
// leg: the spread is Symbol1 minus the hedge ratio times Symbol2.
type Pair struct {
	Symbol1 string
	Symbol2 string
}

// ParsePair parses the "SYM1-SYM2" form used in config files.
func ParsePair(s string) (Pair, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Pair{}, fmt.Errorf("malformed pair %q, want SYM1-SYM2", s)
	}
	return Pair{Symbol1: parts[0], Symbol2: parts[1]}, nil
}

// Key returns the canonical pair identifier, "SYM1-SYM2".
func (p Pair) Key() string { return p.Symbol1 + "-" + p.Symbol2 }

// Display returns the human-facing pair name, "SYM1/SYM2".
func (p Pair) Display() string { return p.Symbol1 + "/" + p.Symbol2 }

// PairMetrics is the full statistical profile of one analyzed pair.
// Correlation, CointegrationPValue, the hedge regression fields,
// SpreadMean, SpreadStd and CurrentZScore carry NaN when the underlying
// statistic was undefined.
type PairMetrics struct {
	Symbol1             string
	Symbol2             string
	Correlation         float64
	RollingCorrelation  []float64
	CointegrationPValue float64
	IsCointegrated      bool
	HedgeRatio          float64
	HedgeIntercept      float64
	HedgeStdErr         float64
	HedgeTStat          float64
	HedgePValue         float64
	HedgeRSquared       float64
	HalfLife            Estimate
	HurstExponent       Estimate
	SpreadMean          float64
	SpreadStd           float64
	CurrentZScore       float64
	Spread              Series
	ZScores             []float64
	LastUpdated         time.Time
}

// Pair returns the pair the metrics describe.
func (m PairMetrics) Pair() Pair {
	return Pair{Symbol1: m.Symbol1, Symbol2: m.Symbol2}
}

// IsTradeable reports whether the pair passes every screening gate: strong
// correlation, cointegration at or under the p-value cap, a half-life
// within the cap, and a Hurst exponent below the cap. Any undefined
// statistic fails the gate.
func (m PairMetrics) IsTradeable(minCorrelation, maxCointPValue, maxHalfLife, maxHurst float64) bool {
	return math.Abs(m.Correlation) >= minCorrelation &&
		m.IsCointegrated &&
		m.CointegrationPValue <= maxCointPValue &&
		m.HalfLife.Float() <= maxHalfLife &&
		m.HurstExponent.Float() < maxHurst
}

// MarshalJSON emits the scalar profile with NaN fields encoded as null.
// The spread and z-score series are deliberately left out; they are bulky
// and persisted separately.
func (m PairMetrics) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Symbol1             string   `json:"symbol1"`
		Symbol2             string   `json:"symbol2"`
		Correlation         *float64 `json:"correlation"`
		CointegrationPValue *float64 `json:"cointegration_pvalue"`
		IsCointegrated      bool     `json:"is_cointegrated"`
		HedgeRatio          *float64 `json:"hedge_ratio"`
		HedgeIntercept      *float64 `json:"hedge_intercept"`
		HedgeStdErr         *float64 `json:"hedge_std_err"`
		HedgeTStat          *float64 `json:"hedge_t_stat"`
		HalfLife            Estimate `json:"half_life"`
		HurstExponent       Estimate `json:"hurst_exponent"`
		SpreadMean          *float64 `json:"spread_mean"`
		SpreadStd           *float64 `json:"spread_std"`
		CurrentZScore       *float64 `json:"current_zscore"`
		LastUpdated         string   `json:"last_updated"`
	}{
		Symbol1:             m.Symbol1,
		Symbol2:             m.Symbol2,
		Correlation:         nanToNull(m.Correlation),
		CointegrationPValue: nanToNull(m.CointegrationPValue),
		IsCointegrated:      m.IsCointegrated,
		HedgeRatio:          nanToNull(m.HedgeRatio),
		HedgeIntercept:      nanToNull(m.HedgeIntercept),
		HedgeStdErr:         nanToNull(m.HedgeStdErr),
		HedgeTStat:          nanToNull(m.HedgeTStat),
		HalfLife:            m.HalfLife,
		HurstExponent:       m.HurstExponent,
		SpreadMean:          nanToNull(m.SpreadMean),
		SpreadStd:           nanToNull(m.SpreadStd),
		CurrentZScore:       nanToNull(m.CurrentZScore),
		LastUpdated:         m.LastUpdated.UTC().Format(time.RFC3339),
	})
}

func nanToNull(v float64) *float64 {
	if math.IsNaN(v) {
		return nil
	}
	return &v
}

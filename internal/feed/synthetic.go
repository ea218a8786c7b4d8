package feed

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"PairSentinel/internal/model"
)

// syntheticLength is the full history generated per symbol; History
// serves trailing slices of it.
const syntheticLength = 512

// SyntheticSource generates correlated random walks for demos and
// tests: one shared driver walk plus per-symbol idiosyncratic noise, so
// any two symbols form a plausibly cointegrated pair. Output is
// deterministic for a fixed seed.
type SyntheticSource struct {
	seed int64
	log  zerolog.Logger

	mu     sync.Mutex
	driver []float64
	cache  map[string]model.Series
}

// NewSyntheticSource builds a source with the given seed.
func NewSyntheticSource(seed int64, log zerolog.Logger) *SyntheticSource {
	return &SyntheticSource{seed: seed, log: log, cache: make(map[string]model.Series)}
}

func (s *SyntheticSource) Name() string { return "synthetic" }

func (s *SyntheticSource) History(ctx context.Context, symbol string, points int) (model.Series, error) {
	if err := ctx.Err(); err != nil {
		return model.Series{}, err
	}
	return s.series(symbol).Tail(points), nil
}

func (s *SyntheticSource) LatestPrice(ctx context.Context, symbol string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return s.series(symbol).Last(), nil
}

func (s *SyntheticSource) series(symbol string) model.Series {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cached, ok := s.cache[symbol]; ok {
		return cached
	}
	if s.driver == nil {
		rng := rand.New(rand.NewSource(s.seed))
		s.driver = make([]float64, syntheticLength)
		level := 0.0
		for i := range s.driver {
			level += rng.NormFloat64()
			s.driver[i] = level
		}
	}

	h := fnv.New64a()
	h.Write([]byte(symbol))
	rng := rand.New(rand.NewSource(s.seed ^ int64(h.Sum64())))

	// Each symbol is an exponential of the shared driver plus a small
	// AR(1) idiosyncratic component, scaled to a symbol-specific base
	// price. The shared driver makes the log prices cointegrated.
	base := 50 + rng.Float64()*150
	sensitivity := 0.8 + rng.Float64()*0.4
	idio := 0.0
	bars := make([]model.OHLCV, syntheticLength)
	start := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -syntheticLength)
	for i := range bars {
		idio = 0.9*idio + 0.1*rng.NormFloat64()
		price := base * math.Exp(0.01*(sensitivity*s.driver[i]+idio))
		bars[i] = model.OHLCV{
			Time:   start.AddDate(0, 0, i),
			Open:   price * 0.999,
			High:   price * 1.004,
			Low:    price * 0.996,
			Close:  price,
			Volume: 1_000_000,
		}
	}
	series := model.CloseSeries(bars)
	s.cache[symbol] = series
	s.log.Debug().Str("symbol", symbol).Float64("base", base).Msg("synthetic history generated")
	return series
}

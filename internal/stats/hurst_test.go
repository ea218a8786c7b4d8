package stats

import (
	"math"
	"math/rand"
	"testing"
)

func TestHurstRegimes(t *testing.T) {
	n := 300

	// bounded oscillation: dispersion saturates, exponent near zero
	reverting := make([]float64, n)
	for i := range reverting {
		ti := float64(i)
		reverting[i] = math.Sin(2.11*ti) + 0.8*math.Sin(0.97*ti)
	}

	// random walk: dispersion grows like sqrt(lag)
	r := rand.New(rand.NewSource(9))
	walk := randomWalk(r, n, 0, 1.0)

	// smooth acceleration: dispersion grows nearly linearly in lag
	trending := make([]float64, n)
	for i := range trending {
		ti := float64(i)
		trending[i] = ti * ti
	}

	// a short lag grid keeps the noisy long-lag dispersion estimates out
	// of the regression
	hRev := CalculateHurst(reverting, 20)
	hWalk := CalculateHurst(walk, 20)
	hTrend := CalculateHurst(trending, 20)
	if !hRev.HasValue() || !hWalk.HasValue() || !hTrend.HasValue() {
		t.Fatalf("all three series should produce an exponent: %s / %s / %s", hRev, hWalk, hTrend)
	}

	if hRev.Value() >= 0.4 {
		t.Errorf("oscillating series should score below 0.4, got %v", hRev.Value())
	}
	if hWalk.Value() < 0.3 || hWalk.Value() > 0.7 {
		t.Errorf("random walk should score near 0.5, got %v", hWalk.Value())
	}
	if hTrend.Value() <= 0.6 {
		t.Errorf("accelerating series should score above 0.6, got %v", hTrend.Value())
	}
	if !(hRev.Value() < hWalk.Value() && hWalk.Value() < hTrend.Value()) {
		t.Errorf("regimes should order reverting < walk < trending: %v, %v, %v",
			hRev.Value(), hWalk.Value(), hTrend.Value())
	}
}

func TestHurstSkipsZeroVarianceLags(t *testing.T) {
	// alternating signs: even lags have identical differences everywhere,
	// so only the odd lags carry dispersion. The estimate comes from
	// those, and a one-bar oscillation scores as hard mean reversion.
	x := make([]float64, 120)
	for i := range x {
		x[i] = 1
		if i%2 == 1 {
			x[i] = -1
		}
	}
	h := CalculateHurst(x, 0)
	if !h.HasValue() {
		t.Fatalf("odd lags still carry dispersion, got %s", h)
	}
	if math.Abs(h.Value()) > 1e-9 {
		t.Errorf("constant odd-lag dispersion should give exponent 0, got %v", h.Value())
	}
}

func TestHurstInsufficientData(t *testing.T) {
	short := make([]float64, 19)
	for i := range short {
		short[i] = float64(i * i)
	}
	if h := CalculateHurst(short, 0); !h.IsInsufficient() {
		t.Errorf("19 points cap the lag grid below the minimum, got %s", h)
	}

	flat := make([]float64, 120)
	for i := range flat {
		flat[i] = 7
	}
	if h := CalculateHurst(flat, 0); !h.IsInsufficient() {
		t.Errorf("a flat series has no dispersion to scale, got %s", h)
	}
}

func TestHurstMinimumViableSample(t *testing.T) {
	// 20 points give maxLag exactly 10, the smallest grid that fits
	x := make([]float64, 20)
	for i := range x {
		x[i] = float64(i * i)
	}
	if h := CalculateHurst(x, 0); !h.HasValue() {
		t.Errorf("20 points should just clear the bar, got %s", h)
	}
}

func TestHurstIgnoresNaN(t *testing.T) {
	x := make([]float64, 120)
	for i := range x {
		x[i] = float64(i) + 3*math.Sin(0.6*float64(i))
	}
	padded := append([]float64{math.NaN()}, x...)
	padded = append(padded, math.NaN())

	a := CalculateHurst(x, 0)
	b := CalculateHurst(padded, 0)
	if !a.HasValue() || !b.HasValue() {
		t.Fatalf("both runs should fit: %s / %s", a, b)
	}
	if !almostEqual(a.Value(), b.Value(), 1e-12) {
		t.Errorf("NaN padding should not change the exponent: %v vs %v", a.Value(), b.Value())
	}
}

package stats

import (
	"math"
	"math/rand"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// randomWalk builds a drifting unit-root series.
func randomWalk(r *rand.Rand, n int, drift, sigma float64) []float64 {
	out := make([]float64, n)
	level := 0.0
	for i := 0; i < n; i++ {
		level += drift + sigma*r.NormFloat64()
		out[i] = level
	}
	return out
}

// ar1 builds a stationary autoregressive series pulled toward zero.
func ar1(r *rand.Rand, n int, phi, sigma float64) []float64 {
	out := make([]float64, n)
	x := 0.0
	for i := 0; i < n; i++ {
		x = phi*x + sigma*r.NormFloat64()
		out[i] = x
	}
	return out
}

func TestMean(t *testing.T) {
	if v := Mean([]float64{1, 2, 3, 4}); v != 2.5 {
		t.Errorf("expected 2.5, got %v", v)
	}
	if !math.IsNaN(Mean(nil)) {
		t.Error("empty mean should be NaN")
	}
}

func TestSampleStd(t *testing.T) {
	// consecutive integers have unit sample variance at n=3
	if v := SampleStd([]float64{1, 2, 3}); !almostEqual(v, 1, 1e-12) {
		t.Errorf("expected 1, got %v", v)
	}
	if !math.IsNaN(SampleStd([]float64{5})) {
		t.Error("single point sample std should be NaN")
	}
	if v := SampleStd([]float64{4, 4, 4, 4}); v != 0 {
		t.Errorf("constant series std should be 0, got %v", v)
	}
}

func TestPopulationStd(t *testing.T) {
	// population variance of {1,2,3} is 2/3
	want := math.Sqrt(2.0 / 3.0)
	if v := PopulationStd([]float64{1, 2, 3}); !almostEqual(v, want, 1e-12) {
		t.Errorf("expected %v, got %v", want, v)
	}
	if !math.IsNaN(PopulationStd(nil)) {
		t.Error("empty population std should be NaN")
	}
}

func TestCalculateZScore(t *testing.T) {
	z, err := CalculateZScore([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatalf("zscore: %v", err)
	}
	if !math.IsNaN(z[0]) || !math.IsNaN(z[1]) {
		t.Error("first window-1 entries should be NaN")
	}
	// each window of three consecutive integers has mean center, std 1
	for i := 2; i < len(z); i++ {
		if !almostEqual(z[i], 1, 1e-12) {
			t.Errorf("z[%d]: expected 1, got %v", i, z[i])
		}
	}
}

func TestCalculateZScoreWarmup(t *testing.T) {
	n := 60
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Sin(0.9 * float64(i))
	}
	z, err := CalculateZScore(values, 20)
	if err != nil {
		t.Fatalf("zscore: %v", err)
	}
	for i := 0; i < 19; i++ {
		if !math.IsNaN(z[i]) {
			t.Fatalf("z[%d] should be NaN during warmup", i)
		}
	}
	for i := 19; i < n; i++ {
		if math.IsNaN(z[i]) {
			t.Errorf("z[%d] should be defined after warmup", i)
		}
		if math.Abs(z[i]) > 5 {
			t.Errorf("z[%d] implausibly large: %v", i, z[i])
		}
	}
}

func TestCalculateZScoreNaNPoisoning(t *testing.T) {
	n := 60
	values := make([]float64, n)
	for i := range values {
		values[i] = math.Sin(0.9 * float64(i))
	}
	values[25] = math.NaN()
	z, err := CalculateZScore(values, 20)
	if err != nil {
		t.Fatalf("zscore: %v", err)
	}
	for i := 25; i <= 44; i++ {
		if !math.IsNaN(z[i]) {
			t.Errorf("z[%d] should be poisoned by the NaN at 25", i)
		}
	}
	if math.IsNaN(z[45]) {
		t.Error("z[45] should recover once the NaN leaves the window")
	}
}

func TestCalculateZScoreNoVariance(t *testing.T) {
	z, err := CalculateZScore([]float64{2, 2, 2, 2, 2}, 3)
	if err != nil {
		t.Fatalf("zscore: %v", err)
	}
	for i, v := range z {
		if !math.IsNaN(v) {
			t.Errorf("z[%d] on a flat series should be NaN, got %v", i, v)
		}
	}
}

func TestCalculateZScoreInvalidWindow(t *testing.T) {
	if _, err := CalculateZScore([]float64{1, 2, 3}, 1); err != ErrInvalidWindow {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}
}

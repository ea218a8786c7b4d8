package stats

import (
	"errors"
	"math"
	"testing"
)

func TestSimpleReturns(t *testing.T) {
	r, err := Returns([]float64{100, 110, 99}, SimpleReturns)
	if err != nil {
		t.Fatalf("returns: %v", err)
	}
	if len(r) != 2 {
		t.Fatalf("expected 2 returns, got %d", len(r))
	}
	if !almostEqual(r[0], 0.1, 1e-12) || !almostEqual(r[1], -0.1, 1e-12) {
		t.Errorf("expected [0.1, -0.1], got %v", r)
	}
}

func TestLogReturns(t *testing.T) {
	r, err := Returns([]float64{1, math.E, math.E * math.E}, LogReturns)
	if err != nil {
		t.Fatalf("returns: %v", err)
	}
	if !almostEqual(r[0], 1, 1e-12) || !almostEqual(r[1], 1, 1e-12) {
		t.Errorf("expected unit log returns, got %v", r)
	}
}

func TestReturnsUndefinedEntries(t *testing.T) {
	r, err := Returns([]float64{0, 5, 10}, SimpleReturns)
	if err != nil {
		t.Fatalf("returns: %v", err)
	}
	if !math.IsNaN(r[0]) || !almostEqual(r[1], 1, 1e-12) {
		t.Errorf("division by a zero price should be NaN, got %v", r)
	}

	lr, err := Returns([]float64{-1, 5, 10}, LogReturns)
	if err != nil {
		t.Fatalf("returns: %v", err)
	}
	if !math.IsNaN(lr[0]) {
		t.Errorf("log of a non-positive ratio should be NaN, got %v", lr)
	}
}

func TestReturnsErrors(t *testing.T) {
	if _, err := Returns([]float64{1}, SimpleReturns); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("expected ErrTooFewPoints, got %v", err)
	}
	if _, err := Returns([]float64{1, 2}, "geometric"); !errors.Is(err, ErrUnknownMethod) {
		t.Errorf("expected ErrUnknownMethod, got %v", err)
	}
}

func TestRollingVolatility(t *testing.T) {
	returns := []float64{0.1, -0.1, 0.1, -0.1, 0.1}
	vol, err := RollingVolatility(returns, 2, true)
	if err != nil {
		t.Fatalf("volatility: %v", err)
	}
	if !math.IsNaN(vol[0]) {
		t.Error("first window-1 entries should be NaN")
	}
	// std of {0.1,-0.1} is 0.2/sqrt(2); annualized by sqrt(252)
	want := 0.2 * math.Sqrt(126)
	for i := 1; i < len(vol); i++ {
		if !almostEqual(vol[i], want, 1e-9) {
			t.Errorf("vol[%d]: expected %v, got %v", i, want, vol[i])
		}
	}

	raw, err := RollingVolatility(returns, 2, false)
	if err != nil {
		t.Fatalf("volatility: %v", err)
	}
	if !almostEqual(raw[1], 0.2/math.Sqrt2, 1e-12) {
		t.Errorf("unannualized vol: expected %v, got %v", 0.2/math.Sqrt2, raw[1])
	}
}

func TestRollingVolatilityFlat(t *testing.T) {
	returns := make([]float64, 30)
	for i := range returns {
		returns[i] = 0.01
	}
	vol, err := RollingVolatility(returns, 20, true)
	if err != nil {
		t.Fatalf("volatility: %v", err)
	}
	if !almostEqual(vol[25], 0, 1e-12) {
		t.Errorf("constant returns have zero volatility, got %v", vol[25])
	}
}

func TestRollingVolatilityInvalidWindow(t *testing.T) {
	if _, err := RollingVolatility([]float64{1, 2}, 0, false); !errors.Is(err, ErrInvalidWindow) {
		t.Errorf("expected ErrInvalidWindow, got %v", err)
	}
}

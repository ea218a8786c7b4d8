package model

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"
)

func tradeableMetrics() PairMetrics {
	return PairMetrics{
		Symbol1:             "SBER",
		Symbol2:             "SBERP",
		Correlation:         0.92,
		CointegrationPValue: 0.01,
		IsCointegrated:      true,
		HedgeRatio:          1.05,
		HalfLife:            EstimateOf(12),
		HurstExponent:       EstimateOf(0.35),
		SpreadMean:          0.5,
		SpreadStd:           1.2,
		CurrentZScore:       -2.1,
		LastUpdated:         time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestIsTradeable(t *testing.T) {
	m := tradeableMetrics()
	if !m.IsTradeable(0.7, 0.05, 30, 0.5) {
		t.Fatal("baseline metrics should be tradeable")
	}

	weak := m
	weak.Correlation = 0.5
	if weak.IsTradeable(0.7, 0.05, 30, 0.5) {
		t.Error("low correlation should fail the gate")
	}

	noCoint := m
	noCoint.IsCointegrated = false
	if noCoint.IsTradeable(0.7, 0.05, 30, 0.5) {
		t.Error("non-cointegrated pair should fail the gate")
	}

	marginal := m
	marginal.CointegrationPValue = 0.08
	if marginal.IsTradeable(0.7, 0.05, 30, 0.5) {
		t.Error("p-value above the cap should fail the gate")
	}

	slow := m
	slow.HalfLife = EstimateOf(45)
	if slow.IsTradeable(0.7, 0.05, 30, 0.5) {
		t.Error("half-life above the cap should fail the gate")
	}

	nmr := m
	nmr.HalfLife = NotMeanReverting()
	if nmr.IsTradeable(0.7, 0.05, 30, 0.5) {
		t.Error("non-mean-reverting half-life should fail the gate")
	}

	noFit := m
	noFit.HalfLife = InsufficientData()
	if noFit.IsTradeable(0.7, 0.05, 30, 0.5) {
		t.Error("unfitted half-life should fail the gate")
	}

	trending := m
	trending.HurstExponent = EstimateOf(0.6)
	if trending.IsTradeable(0.7, 0.05, 30, 0.5) {
		t.Error("Hurst at or above the cap should fail the gate")
	}

	undefCorr := m
	undefCorr.Correlation = math.NaN()
	if undefCorr.IsTradeable(0.7, 0.05, 30, 0.5) {
		t.Error("NaN correlation should fail the gate")
	}

	negCorr := m
	negCorr.Correlation = -0.85
	if !negCorr.IsTradeable(0.7, 0.05, 30, 0.5) {
		t.Error("strong negative correlation should pass the gate")
	}
}

func TestPairMetricsJSON(t *testing.T) {
	m := tradeableMetrics()
	m.Correlation = math.NaN()
	m.HalfLife = InsufficientData()

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"correlation":null`) {
		t.Errorf("NaN correlation should encode as null: %s", s)
	}
	if !strings.Contains(s, `"half_life":null`) {
		t.Errorf("insufficient half-life should encode as null: %s", s)
	}
	if !strings.Contains(s, `"hedge_ratio":1.05`) {
		t.Errorf("finite hedge ratio should encode as a number: %s", s)
	}
	if !strings.Contains(s, `"hurst_exponent":0.35`) {
		t.Errorf("fitted hurst should encode as a number: %s", s)
	}
	if !strings.Contains(s, `"last_updated":"2024-06-01T12:00:00Z"`) {
		t.Errorf("expected RFC3339 last_updated: %s", s)
	}
}

func TestParsePair(t *testing.T) {
	p, err := ParsePair(" SBER-GAZP ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if p.Symbol1 != "SBER" || p.Symbol2 != "GAZP" {
		t.Errorf("unexpected pair: %+v", p)
	}
	if p.Key() != "SBER-GAZP" || p.Display() != "SBER/GAZP" {
		t.Errorf("key=%s display=%s", p.Key(), p.Display())
	}

	for _, bad := range []string{"", "SBER", "SBER-", "-GAZP", "A-B-C"} {
		if _, err := ParsePair(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

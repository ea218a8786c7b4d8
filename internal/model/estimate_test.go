package model

import (
	"encoding/json"
	"math"
	"testing"
)

func TestEstimateStates(t *testing.T) {
	v := EstimateOf(12.5)
	if !v.HasValue() || v.Value() != 12.5 {
		t.Fatalf("expected value state holding 12.5, got %s", v)
	}
	if v.Float() != 12.5 || v.FloatOr(0) != 12.5 {
		t.Errorf("value state should expose its value, got %v / %v", v.Float(), v.FloatOr(0))
	}

	ins := InsufficientData()
	if !ins.IsInsufficient() || ins.HasValue() {
		t.Error("expected insufficient-data state")
	}
	if !math.IsNaN(ins.Float()) {
		t.Errorf("insufficient data should map to NaN, got %v", ins.Float())
	}
	if ins.FloatOr(42) != 42 {
		t.Errorf("FloatOr fallback not applied: %v", ins.FloatOr(42))
	}

	nmr := NotMeanReverting()
	if !nmr.IsNotMeanReverting() || nmr.HasValue() {
		t.Error("expected non-mean-reverting state")
	}
	if !math.IsInf(nmr.Float(), 1) {
		t.Errorf("non-mean-reverting should map to +Inf, got %v", nmr.Float())
	}
}

func TestEstimateZeroValue(t *testing.T) {
	var e Estimate
	if !e.IsInsufficient() {
		t.Error("zero value must be the insufficient-data state")
	}
}

func TestEstimateJSON(t *testing.T) {
	tests := []struct {
		est  Estimate
		want string
	}{
		{EstimateOf(7.25), "7.25"},
		{NotMeanReverting(), "999999"},
		{InsufficientData(), "null"},
	}
	for _, tt := range tests {
		b, err := json.Marshal(tt.est)
		if err != nil {
			t.Fatalf("marshal %s: %v", tt.est, err)
		}
		if string(b) != tt.want {
			t.Errorf("estimate %s: expected %s, got %s", tt.est, tt.want, b)
		}
	}
}

func TestEstimateFromStored(t *testing.T) {
	if e := EstimateFromStored(15); !e.HasValue() || e.Value() != 15 {
		t.Errorf("15 should come back as a value, got %s", e)
	}
	if e := EstimateFromStored(NotMeanRevertingPlaceholder); !e.IsNotMeanReverting() {
		t.Errorf("placeholder should come back non-mean-reverting, got %s", e)
	}
	if e := EstimateFromStored(math.NaN()); !e.IsInsufficient() {
		t.Errorf("NaN should come back insufficient, got %s", e)
	}
}

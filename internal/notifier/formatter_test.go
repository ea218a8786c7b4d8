package notifier

import (
	"strings"
	"testing"
	"time"

	"PairSentinel/internal/model"
	"PairSentinel/internal/recorder"
)

func entrySignal() *model.TradingSignal {
	p1, p2 := 105.2, 52.1
	return &model.TradingSignal{
		Type:        model.SignalLongSpread,
		Symbol1:     "SBER",
		Symbol2:     "SBERP",
		ZScore:      -2.5,
		HedgeRatio:  1.98,
		Strength:    model.StrengthModerate,
		Confidence:  0.82,
		TargetZ:     0.0,
		StopZ:       3.0,
		Price1:      &p1,
		Price2:      &p2,
		Metadata:    map[string]any{},
		GeneratedAt: time.Now(),
	}
}

func TestFormatSignalLongEntry(t *testing.T) {
	text := FormatSignal(entrySignal())
	for _, want := range []string{
		"LONG SPREAD", "SBER/SBERP",
		"Buy SBER / Sell SBERP", "hedge 1.9800",
		"Z-score: -2.50", "MODERATE", "82%",
		"Target z: 0.0", "Stop z: ±3.0",
		"105.20", "52.10",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	if strings.Contains(text, "startup") {
		t.Error("regular signal should carry no re-sync note")
	}
}

func TestFormatSignalStartupNote(t *testing.T) {
	sig := entrySignal()
	sig.Metadata["startup_detection"] = true
	if !strings.Contains(FormatSignal(sig), "startup re-sync") {
		t.Error("expected the startup re-sync warning")
	}
}

func TestFormatSignalStopLoss(t *testing.T) {
	sig := entrySignal()
	sig.Type = model.SignalStopLoss
	sig.ZScore = -3.6
	text := FormatSignal(sig)
	if !strings.Contains(text, "STOP LOSS") || !strings.Contains(text, "close the position") {
		t.Errorf("stop formatting:\n%s", text)
	}
	if strings.Contains(text, "Target z") {
		t.Error("exit signals should not restate entry targets")
	}
}

func TestFormatSummaryGroupsByType(t *testing.T) {
	long := entrySignal()
	stop := entrySignal()
	stop.Type = model.SignalStopLoss
	stop.Symbol1, stop.Symbol2 = "GAZP", "LKOH"

	text := FormatSummary([]*model.TradingSignal{long, stop})
	if !strings.Contains(text, "2 signal(s)") {
		t.Errorf("summary header:\n%s", text)
	}
	if strings.Index(text, "STOP_LOSS") > strings.Index(text, "LONG_SPREAD") {
		t.Error("stops should be listed before entries")
	}
}

func TestFormatDailyReport(t *testing.T) {
	stats := recorder.Stats{ActivePairs: 4, Cointegrated: 2, OpenPositions: 1, SignalsLastHour: 3, AvgCorrelation: 0.81}
	metrics := []*model.PairMetrics{
		{Symbol1: "SBER", Symbol2: "SBERP", Correlation: 0.92, CurrentZScore: -1.1, HalfLife: model.EstimateOf(12)},
		{Symbol1: "GAZP", Symbol2: "LKOH", Correlation: -0.95, CurrentZScore: 0.4, HalfLife: model.NotMeanReverting()},
	}
	text := FormatDailyReport(stats, metrics, func(m *model.PairMetrics) bool {
		return m.Symbol1 == "SBER"
	})
	for _, want := range []string{
		"Active pairs: 4", "cointegrated: 2", "Open positions: 1",
		"Avg |correlation|: 0.81", "✅ SBER/SBERP", "not-mean-reverting",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in:\n%s", want, text)
		}
	}
	// strongest |correlation| first
	if strings.Index(text, "GAZP/LKOH") > strings.Index(text, "SBER/SBERP") {
		t.Error("top pairs should sort by absolute correlation")
	}
}

package notifier

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"PairSentinel/internal/model"
	"PairSentinel/internal/recorder"
)

// FormatSignal renders one actionable signal as a notification body.
func FormatSignal(sig *model.TradingSignal) string {
	var b strings.Builder

	switch sig.Type {
	case model.SignalLongSpread:
		b.WriteString(fmt.Sprintf("📉 LONG SPREAD | %s\n", sig.Display()))
		b.WriteString(fmt.Sprintf("Buy %s / Sell %s (hedge %.4f)\n", sig.Symbol1, sig.Symbol2, sig.HedgeRatio))
	case model.SignalShortSpread:
		b.WriteString(fmt.Sprintf("📈 SHORT SPREAD | %s\n", sig.Display()))
		b.WriteString(fmt.Sprintf("Sell %s / Buy %s (hedge %.4f)\n", sig.Symbol1, sig.Symbol2, sig.HedgeRatio))
	case model.SignalExitLong, model.SignalExitShort:
		b.WriteString(fmt.Sprintf("✅ EXIT | %s\n", sig.Display()))
		b.WriteString("Spread reverted to the mean, close the position\n")
	case model.SignalStopLoss:
		b.WriteString(fmt.Sprintf("🛑 STOP LOSS | %s\n", sig.Display()))
		b.WriteString("Spread diverged past the stop, close the position\n")
	default:
		b.WriteString(fmt.Sprintf("%s | %s\n", sig.Type, sig.Display()))
	}

	b.WriteString(fmt.Sprintf("\nZ-score: %+.2f\n", sig.ZScore))
	b.WriteString(fmt.Sprintf("Strength: %s | Confidence: %.0f%%\n", sig.Strength, sig.Confidence*100))
	if sig.Type.IsEntry() {
		b.WriteString(fmt.Sprintf("Target z: %.1f | Stop z: ±%.1f\n", sig.TargetZ, sig.StopZ))
	}
	if sig.Price1 != nil && sig.Price2 != nil {
		b.WriteString(fmt.Sprintf("Prices: %s %.2f | %s %.2f\n", sig.Symbol1, *sig.Price1, sig.Symbol2, *sig.Price2))
	}
	if v, ok := sig.Metadata["startup_detection"]; ok && v == true {
		b.WriteString("\n⚠️ detected during startup re-sync, verify before acting\n")
	}
	return b.String()
}

// FormatSummary renders a digest of one cycle's actionable signals,
// grouped by type.
func FormatSummary(signals []*model.TradingSignal) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 PairSentinel | %d signal(s) | %s\n", len(signals), time.Now().Format("2006-01-02 15:04")))

	groups := make(map[model.SignalType][]*model.TradingSignal)
	for _, sig := range signals {
		groups[sig.Type] = append(groups[sig.Type], sig)
	}
	for _, typ := range []model.SignalType{
		model.SignalStopLoss, model.SignalExitLong, model.SignalExitShort,
		model.SignalLongSpread, model.SignalShortSpread,
	} {
		list := groups[typ]
		if len(list) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s:\n", typ))
		for _, sig := range list {
			b.WriteString(fmt.Sprintf("  %s  z=%+.2f  conf=%.0f%%\n", sig.Display(), sig.ZScore, sig.Confidence*100))
		}
	}
	return b.String()
}

// FormatDailyReport renders the dashboard snapshot plus the strongest
// pairs by absolute correlation. tradeable marks the pairs that pass
// the screening gate.
func FormatDailyReport(stats recorder.Stats, metrics []*model.PairMetrics, tradeable func(*model.PairMetrics) bool) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📅 Daily report | %s\n\n", time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("Active pairs: %d (cointegrated: %d)\n", stats.ActivePairs, stats.Cointegrated))
	b.WriteString(fmt.Sprintf("Open positions: %d\n", stats.OpenPositions))
	b.WriteString(fmt.Sprintf("Entry signals last hour: %d\n", stats.SignalsLastHour))
	b.WriteString(fmt.Sprintf("Avg |correlation|: %.2f\n", stats.AvgCorrelation))

	if len(metrics) == 0 {
		return b.String()
	}
	sorted := append([]*model.PairMetrics(nil), metrics...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].Correlation) > math.Abs(sorted[j].Correlation)
	})
	if len(sorted) > 5 {
		sorted = sorted[:5]
	}
	b.WriteString("\nTop pairs:\n")
	for _, m := range sorted {
		mark := " "
		if tradeable != nil && tradeable(m) {
			mark = "✅"
		}
		b.WriteString(fmt.Sprintf("  %s %s  corr=%+.2f  z=%+.2f  hl=%s\n",
			mark, m.Pair().Display(), m.Correlation, m.CurrentZScore, m.HalfLife))
	}
	return b.String()
}

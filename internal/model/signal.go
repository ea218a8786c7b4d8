package model

import "time"

// SignalType classifies the action a signal recommends.
type SignalType string

const (
	SignalLongSpread  SignalType = "LONG_SPREAD"
	SignalShortSpread SignalType = "SHORT_SPREAD"
	SignalExitLong    SignalType = "EXIT_LONG"
	SignalExitShort   SignalType = "EXIT_SHORT"
	SignalStopLoss    SignalType = "STOP_LOSS"
	SignalNone        SignalType = "NO_SIGNAL"
)

// IsEntry reports whether the signal opens a position.
func (t SignalType) IsEntry() bool {
	return t == SignalLongSpread || t == SignalShortSpread
}

// IsExit reports whether the signal closes a position, including stops.
func (t SignalType) IsExit() bool {
	return t == SignalExitLong || t == SignalExitShort || t == SignalStopLoss
}

// Strength buckets a signal by how far the spread has diverged.
type Strength string

const (
	StrengthWeak     Strength = "WEAK"
	StrengthModerate Strength = "MODERATE"
	StrengthStrong   Strength = "STRONG"
)

// TradingSignal is one decision emitted for one pair in one cycle.
// Price1 and Price2 are nil when the caller had no fresh quotes.
type TradingSignal struct {
	Type        SignalType
	Symbol1     string
	Symbol2     string
	ZScore      float64
	HedgeRatio  float64
	Confidence  float64
	Strength    Strength
	TargetZ     float64
	StopZ       float64
	Price1      *float64
	Price2      *float64
	Metadata    map[string]any
	GeneratedAt time.Time
}

// Key returns the canonical pair identifier, "SYM1-SYM2".
func (s *TradingSignal) Key() string { return s.Symbol1 + "-" + s.Symbol2 }

// Display returns the human-facing pair name, "SYM1/SYM2".
func (s *TradingSignal) Display() string { return s.Symbol1 + "/" + s.Symbol2 }

// Actionable reports whether the signal calls for any trade.
func (s *TradingSignal) Actionable() bool { return s.Type != SignalNone }

// Position is an open spread trade tracked across screener cycles.
// CurrentPrice1 and CurrentPrice2 are nil until the first mark.
type Position struct {
	ID            int64
	Symbol1       string
	Symbol2       string
	Direction     SignalType
	EntryZScore   float64
	EntryPrice1   float64
	EntryPrice2   float64
	HedgeRatio    float64
	CurrentZScore float64
	CurrentPrice1 *float64
	CurrentPrice2 *float64
	PnLPercent    float64
	IsOpen        bool
	OpenedAt      time.Time
	ClosedAt      *time.Time
}

// Key returns the canonical pair identifier, "SYM1-SYM2".
func (p *Position) Key() string { return p.Symbol1 + "-" + p.Symbol2 }

package logging

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLevel(t *testing.T) {
	if got := New("debug", false).GetLevel(); got != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %s", got)
	}
	if got := New("WARN", false).GetLevel(); got != zerolog.WarnLevel {
		t.Fatalf("levels should be case-insensitive, got %s", got)
	}
	if got := New("verbose", false).GetLevel(); got != zerolog.InfoLevel {
		t.Fatalf("expected info fallback, got %s", got)
	}
	if got := New("", true).GetLevel(); got != zerolog.InfoLevel {
		t.Fatalf("empty level should fall back to info, got %s", got)
	}
}

package bot

import (
	"strings"
	"testing"
	"time"

	"ict-signal-engine/internal/domain"
)

func TestStartTelegramBotSkipsWithoutToken(t *testing.T) {
	if d := StartTelegramBot("", nil); d != nil {
		t.Fatal("expected nil dispatcher without a token")
	}
}

func TestParseSignalArgsAssetAndOptions(t *testing.T) {
	filter, err := parseSignalArgs([]string{"eur/usd", "--strategy", "TURTLE_SOUP", "--bias=bearish"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filter.Asset != "EURUSD" {
		t.Fatalf("expected asset EURUSD, got %s", filter.Asset)
	}
	if filter.Strategy != domain.StrategyTurtleSoup || filter.Bias != domain.BiasBearish {
		t.Fatalf("unexpected filter: %+v", filter)
	}
	if filter.Limit != 5 {
		t.Fatalf("expected default limit=5, got %d", filter.Limit)
	}
}

func TestParseSignalArgsRejectsBadInput(t *testing.T) {
	for _, args := range [][]string{
		{"--strategy", "rsi"},
		{"--bias", "neutral"},
		{"--limit", "50"},
		{"--bias"},
		{"--colour=red"},
		{"EURUSD", "GBPUSD"},
	} {
		if _, err := parseSignalArgs(args); err == nil {
			t.Fatalf("expected error for %v", args)
		}
	}
}

func TestFormatAnalysis(t *testing.T) {
	msg := formatAnalysis(domain.Analysis{
		Asset:       "XAUUSD",
		Timeframe:   "5min",
		BarCount:    500,
		LastClose:   2034.5,
		Bias:        domain.BiasBullish,
		Phase:       domain.PhaseMarkup,
		CurrentZone: domain.ZoneDiscount,
		Zones:       []domain.Zone{{Kind: domain.ZonePremium, Price: 2040, Strength: 3}},
		Patterns:    []string{"doji"},
		Signals: []domain.Signal{{
			ID: 3, Asset: "XAUUSD", Timeframe: "5min", Strategy: domain.StrategyIPDAEntry,
			Bias: domain.BiasBullish, Confidence: 0.85, Timestamp: time.Unix(0, 0).UTC(),
		}},
	})
	for _, want := range []string{"XAUUSD 5min analysis (500 bars)", "Bias: bullish", "premium 2040.00000", "Patterns: doji", "IPDA_ENTRY BULLISH"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in:\n%s", want, msg)
		}
	}
}

package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestBiasOpposes(t *testing.T) {
	if !BiasBearish.Opposes(BiasBullish) || !BiasBullish.Opposes(BiasBearish) {
		t.Fatal("expected bullish and bearish to oppose each other")
	}
	if BiasNeutral.Opposes(BiasBullish) || BiasNeutral.Opposes(BiasBearish) {
		t.Fatal("neutral bias must not oppose any direction")
	}
	if BiasBullish.Opposes(BiasBullish) {
		t.Fatal("a bias must not oppose itself")
	}
}

func TestStrategyConfidenceIsBounded(t *testing.T) {
	for _, strategy := range Strategies {
		c, ok := StrategyConfidence[strategy]
		if !ok {
			t.Fatalf("missing confidence for %s", strategy)
		}
		if c < 0 || c > 1 {
			t.Fatalf("confidence for %s out of range: %f", strategy, c)
		}
	}
}

func TestSignalPayloadNeverNullZones(t *testing.T) {
	s := Signal{
		Asset:      "EURUSD",
		Timeframe:  DefaultTimeframe,
		Strategy:   StrategyEngulfing,
		Bias:       BiasBullish,
		Confidence: 0.7,
		Timestamp:  time.Unix(0, 0).UTC(),
	}
	raw, err := json.Marshal(s.Payload())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(raw) != `{"strategy":"engulfing","confidence":0.7,"zones":[]}` {
		t.Fatalf("unexpected payload: %s", raw)
	}
}

func TestCatalogLookupNormalizes(t *testing.T) {
	c := NewCatalog(DefaultInstruments)
	in, ok := c.Lookup(" eur/usd ")
	if !ok {
		t.Fatal("expected EURUSD to resolve")
	}
	if in.ProviderSymbol != "EUR/USD" {
		t.Fatalf("unexpected provider symbol: %s", in.ProviderSymbol)
	}
	if _, ok := c.Lookup("BTCUSD"); ok {
		t.Fatal("expected unknown asset to miss")
	}
}

func TestCatalogSkipsDuplicatesAndDefaultsProviderSymbol(t *testing.T) {
	c := NewCatalog([]Instrument{
		{Asset: "xauusd"},
		{Asset: "XAUUSD", ProviderSymbol: "XAU/USD"},
		{Asset: ""},
	})
	assets := c.Assets()
	if len(assets) != 1 || assets[0] != "XAUUSD" {
		t.Fatalf("unexpected assets: %+v", assets)
	}
	in, _ := c.Lookup("XAUUSD")
	if in.ProviderSymbol != "XAUUSD" {
		t.Fatalf("expected provider symbol fallback, got %s", in.ProviderSymbol)
	}
}

func TestBarDirection(t *testing.T) {
	up := Bar{Open: 1, Close: 2}
	down := Bar{Open: 2, Close: 1}
	flat := Bar{Open: 1, Close: 1}
	if !up.IsBullish() || up.IsBearish() {
		t.Fatal("expected bullish bar")
	}
	if !down.IsBearish() || down.IsBullish() {
		t.Fatal("expected bearish bar")
	}
	if flat.IsBullish() || flat.IsBearish() {
		t.Fatal("flat bar has no direction")
	}
}

func TestTimeframeDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"5min":   5 * time.Minute,
		"1h":     time.Hour,
		"1day":   24 * time.Hour,
		" 15MIN": 15 * time.Minute,
	}
	for in, want := range cases {
		got, ok := TimeframeDuration(in)
		if !ok || got != want {
			t.Fatalf("TimeframeDuration(%q) = %s, %v; want %s", in, got, ok, want)
		}
	}
	for _, bad := range []string{"", "min", "0min", "5sec", "xh"} {
		if _, ok := TimeframeDuration(bad); ok {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

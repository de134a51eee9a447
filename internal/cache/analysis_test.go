package cache

import (
	"context"
	"testing"
	"time"

	"ict-signal-engine/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

func newTestCache(t *testing.T) (*AnalysisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewAnalysisCache(client, trace.NewNoopTracerProvider().Tracer("test"), time.Minute), mr
}

func TestAnalysisCacheRoundTrip(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	a := domain.Analysis{
		Asset:       "EURUSD",
		Timeframe:   domain.DefaultTimeframe,
		BarCount:    120,
		Bias:        domain.BiasBullish,
		CurrentZone: domain.ZonePremium,
		Zones:       []domain.Zone{{Kind: domain.ZonePremium, Price: 1.1, Strength: 3}},
	}
	if err := c.Set(ctx, a); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	if !mr.Exists("analysis:EURUSD:5min") {
		t.Fatal("expected analysis key to be written")
	}
	if ttl := mr.TTL("analysis:EURUSD:5min"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %s", ttl)
	}

	got, err := c.Get(ctx, "EURUSD", domain.DefaultTimeframe)
	if err != nil {
		t.Fatalf("unexpected get error: %v", err)
	}
	if got == nil || got.BarCount != 120 || got.Bias != domain.BiasBullish || len(got.Zones) != 1 {
		t.Fatalf("unexpected cached analysis: %+v", got)
	}
}

func TestAnalysisCacheMissAndInvalidate(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	got, err := c.Get(ctx, "GBPUSD", domain.DefaultTimeframe)
	if err != nil || got != nil {
		t.Fatalf("expected clean miss, got %+v err=%v", got, err)
	}

	if err := c.Set(ctx, domain.Analysis{Asset: "GBPUSD", Timeframe: domain.DefaultTimeframe}); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	if err := c.Invalidate(ctx, "GBPUSD", domain.DefaultTimeframe); err != nil {
		t.Fatalf("unexpected invalidate error: %v", err)
	}
	if mr.Exists("analysis:GBPUSD:5min") {
		t.Fatal("expected key to be removed")
	}
}

func TestAnalysisCacheCorruptPayload(t *testing.T) {
	c, mr := newTestCache(t)
	if err := mr.Set("analysis:XAUUSD:5min", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := c.Get(context.Background(), "XAUUSD", domain.DefaultTimeframe); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestNilAnalysisCacheIsNoop(t *testing.T) {
	var c *AnalysisCache
	if got, err := c.Get(context.Background(), "EURUSD", "5min"); got != nil || err != nil {
		t.Fatal("expected nil cache to miss silently")
	}
	if err := c.Set(context.Background(), domain.Analysis{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

package repository

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"ict-signal-engine/internal/domain"
)

func TestSignalRunMigrationsExecutesSchema(t *testing.T) {
	pool := &stubPool{}
	repo := NewSignalRepository(pool, testTracer)

	if err := repo.RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.execSQL) == 0 || !strings.Contains(pool.execSQL[0], "UNIQUE (asset, timeframe, strategy, timestamp, bias)") {
		t.Fatalf("expected signals schema, got %v", pool.execSQL)
	}
}

func TestInsertSignalsReturnsIDs(t *testing.T) {
	pool := &stubPool{batch: &stubBatchResults{nextID: 40}}
	repo := NewSignalRepository(pool, testTracer)

	signals := []domain.Signal{
		{
			Asset:      "EURUSD",
			Timeframe:  "5min",
			Strategy:   domain.StrategyTurtleSoup,
			Bias:       domain.BiasBearish,
			EntryPrice: 100,
			StopLoss:   106,
			TakeProfit: 88,
			Confidence: 0.8,
			Timestamp:  time.Unix(0, 0).UTC(),
		},
		{
			Asset:      "XAUUSD",
			Timeframe:  "5min",
			Strategy:   domain.StrategyEngulfing,
			Bias:       domain.BiasBullish,
			EntryPrice: 2000,
			StopLoss:   1990,
			TakeProfit: 2020,
			Confidence: 0.7,
			Timestamp:  time.Unix(300, 0).UTC(),
		},
	}
	out, err := repo.InsertSignals(context.Background(), signals)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.queuedBatch == nil || pool.queuedBatch.Len() != len(signals) {
		t.Fatalf("expected batch of size %d", len(signals))
	}
	if out[0].ID != 41 || out[1].ID != 42 {
		t.Fatalf("expected ids 41 and 42, got %d and %d", out[0].ID, out[1].ID)
	}
	if signals[0].ID != 0 {
		t.Fatal("input signals must not be mutated")
	}

	args := pool.queuedBatch.QueuedQueries[0].Arguments
	var payload domain.SignalPayload
	if err := json.Unmarshal(args[8].([]byte), &payload); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if payload.Strategy != domain.StrategyTurtleSoup || payload.Confidence != 0.8 || payload.Zones == nil {
		t.Fatalf("unexpected payload: %+v", payload)
	}

	if out, err := repo.InsertSignals(context.Background(), nil); out != nil || err != nil {
		t.Fatalf("expected no-op for empty input, got %v %v", out, err)
	}
}

func TestListSignalsAppliesFiltersAndDecodesPayload(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	payload := []byte(`{"strategy":"zone_rejection","confidence":0.75,"zones":[{"kind":"premium","price":105,"strength":3}]}`)
	pool := &stubPool{rowsData: [][]any{{
		int64(7), "EURUSD", "5min", domain.StrategyZoneRejection, string(domain.BiasBearish),
		104.0, 110.0, 92.0, now, payload,
	}}}
	repo := NewSignalRepository(pool, testTracer)

	signals, err := repo.ListSignals(context.Background(), domain.SignalFilter{
		Asset:    "eur/usd",
		Strategy: "ZONE_REJECTION",
		Bias:     domain.BiasBearish,
		Limit:    500,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	s := signals[0]
	if s.ID != 7 || s.Bias != domain.BiasBearish || s.Confidence != 0.75 || len(s.Zones) != 1 {
		t.Fatalf("unexpected signal: %+v", s)
	}
	want := []any{"EURUSD", domain.StrategyZoneRejection, "bearish", 200}
	if len(pool.queryArgs) != len(want) {
		t.Fatalf("unexpected args: %v", pool.queryArgs)
	}
	for i := range want {
		if pool.queryArgs[i] != want[i] {
			t.Fatalf("arg %d = %v, want %v", i, pool.queryArgs[i], want[i])
		}
	}
	if !strings.Contains(pool.querySQL, "bias = $3") || !strings.Contains(pool.querySQL, "LIMIT $4") {
		t.Fatalf("unexpected sql: %s", pool.querySQL)
	}
}

func TestListSignalsDefaultLimit(t *testing.T) {
	pool := &stubPool{}
	if _, err := NewSignalRepository(pool, testTracer).ListSignals(context.Background(), domain.SignalFilter{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.queryArgs) != 1 || pool.queryArgs[0] != 50 {
		t.Fatalf("expected default limit 50, got %v", pool.queryArgs)
	}
}

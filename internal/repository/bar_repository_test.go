package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ict-signal-engine/internal/domain"

	"go.opentelemetry.io/otel/trace/noop"
)

var testTracer = noop.NewTracerProvider().Tracer("test")

func TestBarRunMigrationsExecutesSchema(t *testing.T) {
	pool := &stubPool{}
	if err := NewBarRepository(pool, testTracer).RunMigrations(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool.execSQL) != 1 || !strings.Contains(pool.execSQL[0], "CREATE TABLE IF NOT EXISTS bars") {
		t.Fatalf("expected bars schema, got %v", pool.execSQL)
	}

	failing := &stubPool{execErr: errors.New("boom")}
	if err := NewBarRepository(failing, testTracer).RunMigrations(context.Background()); err == nil {
		t.Fatal("expected migration error")
	}
}

func TestUpsertBarsBatchesStatements(t *testing.T) {
	pool := &stubPool{}
	repo := NewBarRepository(pool, testTracer)

	bars := []domain.Bar{
		{Asset: "EURUSD", Timeframe: "5min", Timestamp: time.Unix(0, 0).UTC(), Open: 1, High: 2, Low: 0.5, Close: 1.5},
		{Asset: "EURUSD", Timeframe: "5min", Timestamp: time.Unix(300, 0).UTC(), Open: 1.5, High: 2, Low: 1, Close: 1.8},
	}
	if err := repo.UpsertBars(context.Background(), bars); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pool.queuedBatch == nil || pool.queuedBatch.Len() != len(bars) {
		t.Fatalf("expected batch of size %d", len(bars))
	}
	if pool.batch.execCalls != len(bars) {
		t.Fatalf("expected %d Exec calls, got %d", len(bars), pool.batch.execCalls)
	}

	if err := repo.UpsertBars(context.Background(), nil); err != nil {
		t.Fatalf("empty upsert should be a no-op: %v", err)
	}
}

func TestUpsertBarsPropagatesBatchError(t *testing.T) {
	pool := &stubPool{batch: &stubBatchResults{err: errors.New("constraint")}}
	err := NewBarRepository(pool, testTracer).UpsertBars(context.Background(), []domain.Bar{{Asset: "EURUSD"}})
	if err == nil || !strings.Contains(err.Error(), "constraint") {
		t.Fatalf("expected wrapped batch error, got %v", err)
	}
}

func TestGetRecentBarsReturnsAscending(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	pool := &stubPool{rowsData: [][]any{
		{"EURUSD", "5min", t0.Add(10 * time.Minute), 1.3, 1.4, 1.2, 1.35, int64(30)},
		{"EURUSD", "5min", t0.Add(5 * time.Minute), 1.2, 1.3, 1.1, 1.3, int64(20)},
		{"EURUSD", "5min", t0, 1.1, 1.2, 1.0, 1.2, int64(10)},
	}}
	bars, err := NewBarRepository(pool, testTracer).GetRecentBars(context.Background(), "EURUSD", "5min", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if !bars[0].Timestamp.Equal(t0) || !bars[2].Timestamp.Equal(t0.Add(10*time.Minute)) {
		t.Fatalf("expected ascending order, got %v .. %v", bars[0].Timestamp, bars[2].Timestamp)
	}
	if bars[0].Volume != 10 || bars[2].Close != 1.35 {
		t.Fatalf("unexpected bar values: %+v", bars)
	}
	if len(pool.queryArgs) != 3 || pool.queryArgs[2] != 3 {
		t.Fatalf("unexpected query args: %v", pool.queryArgs)
	}
}

func TestLatestBarTime(t *testing.T) {
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	pool := &stubPool{row: &stubRow{values: []any{ts}}}
	got, ok, err := NewBarRepository(pool, testTracer).LatestBarTime(context.Background(), "EURUSD", "5min")
	if err != nil || !ok || !got.Equal(ts) {
		t.Fatalf("expected %v, got %v ok=%v err=%v", ts, got, ok, err)
	}

	empty := &stubPool{row: &stubRow{values: []any{nil}}}
	if _, ok, err := NewBarRepository(empty, testTracer).LatestBarTime(context.Background(), "EURUSD", "5min"); ok || err != nil {
		t.Fatalf("expected no bars, got ok=%v err=%v", ok, err)
	}
}

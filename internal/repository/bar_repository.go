package repository

import (
	"context"
	"fmt"
	"time"

	"ict-signal-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const barsSchema = `
CREATE TABLE IF NOT EXISTS bars (
    asset      TEXT             NOT NULL,
    timeframe  TEXT             NOT NULL,
    ts         TIMESTAMPTZ      NOT NULL,
    open       DOUBLE PRECISION NOT NULL,
    high       DOUBLE PRECISION NOT NULL,
    low        DOUBLE PRECISION NOT NULL,
    close      DOUBLE PRECISION NOT NULL,
    volume     BIGINT           NOT NULL DEFAULT 0,
    PRIMARY KEY (asset, timeframe, ts)
);
CREATE INDEX IF NOT EXISTS idx_bars_asset_timeframe_ts ON bars (asset, timeframe, ts DESC);
`

type BarRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewBarRepository(pool PgxPool, tracer trace.Tracer) *BarRepository {
	return &BarRepository{pool: pool, tracer: tracer}
}

func (r *BarRepository) RunMigrations(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "bar-repo.run-migrations")
	defer span.End()

	if _, err := r.pool.Exec(ctx, barsSchema); err != nil {
		return fmt.Errorf("migrate bars: %w", err)
	}
	return nil
}

func (r *BarRepository) UpsertBars(ctx context.Context, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	_, span := r.tracer.Start(ctx, "bar-repo.upsert-bars")
	defer span.End()

	batch := &pgx.Batch{}
	for _, b := range bars {
		batch.Queue(
			`INSERT INTO bars (asset, timeframe, ts, open, high, low, close, volume)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 ON CONFLICT (asset, timeframe, ts) DO UPDATE SET
			     open = EXCLUDED.open,
			     high = EXCLUDED.high,
			     low = EXCLUDED.low,
			     close = EXCLUDED.close,
			     volume = EXCLUDED.volume`,
			b.Asset, b.Timeframe, b.Timestamp.UTC(), b.Open, b.High, b.Low, b.Close, b.Volume,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range bars {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert bars: %w", err)
		}
	}
	return nil
}

// GetRecentBars returns the newest limit bars for asset, oldest first.
func (r *BarRepository) GetRecentBars(ctx context.Context, asset, timeframe string, limit int) ([]domain.Bar, error) {
	_, span := r.tracer.Start(ctx, "bar-repo.get-recent-bars")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT asset, timeframe, ts, open, high, low, close, volume
		 FROM bars
		 WHERE asset = $1 AND timeframe = $2
		 ORDER BY ts DESC
		 LIMIT $3`,
		asset, timeframe, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bars []domain.Bar
	for rows.Next() {
		var b domain.Bar
		if err := rows.Scan(&b.Asset, &b.Timeframe, &b.Timestamp, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return nil, err
		}
		b.Timestamp = b.Timestamp.UTC()
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}

// LatestBarTime reports the timestamp of the newest stored bar. ok is false when none exist.
func (r *BarRepository) LatestBarTime(ctx context.Context, asset, timeframe string) (time.Time, bool, error) {
	_, span := r.tracer.Start(ctx, "bar-repo.latest-bar-time")
	defer span.End()

	var latest *time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT MAX(ts) FROM bars WHERE asset = $1 AND timeframe = $2`,
		asset, timeframe,
	).Scan(&latest)
	if err != nil {
		return time.Time{}, false, err
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return latest.UTC(), true, nil
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ict-signal-engine/internal/domain"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultSignalLimit = 50
	maxSignalLimit     = 200
)

const signalsSchema = `
CREATE TABLE IF NOT EXISTS signals (
    id          BIGSERIAL PRIMARY KEY,
    asset       TEXT             NOT NULL,
    timeframe   TEXT             NOT NULL,
    strategy    TEXT             NOT NULL,
    bias        TEXT             NOT NULL,
    entry_price DOUBLE PRECISION NOT NULL,
    stop_loss   DOUBLE PRECISION NOT NULL,
    take_profit DOUBLE PRECISION NOT NULL,
    timestamp   TIMESTAMPTZ      NOT NULL,
    payload     JSONB            NOT NULL DEFAULT '{}'::jsonb,
    created_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
    UNIQUE (asset, timeframe, strategy, timestamp, bias)
);
CREATE INDEX IF NOT EXISTS idx_signals_timestamp ON signals (timestamp DESC);
`

type SignalRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewSignalRepository(pool PgxPool, tracer trace.Tracer) *SignalRepository {
	return &SignalRepository{pool: pool, tracer: tracer}
}

func (r *SignalRepository) RunMigrations(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "signal-repo.run-migrations")
	defer span.End()

	if _, err := r.pool.Exec(ctx, signalsSchema); err != nil {
		return fmt.Errorf("migrate signals: %w", err)
	}
	return nil
}

// InsertSignals stores signals and returns copies carrying their row ids. Re-inserting the
// same asset/timeframe/strategy/timestamp/bias refreshes the existing row.
func (r *SignalRepository) InsertSignals(ctx context.Context, signals []domain.Signal) ([]domain.Signal, error) {
	if len(signals) == 0 {
		return nil, nil
	}

	_, span := r.tracer.Start(ctx, "signal-repo.insert-signals")
	defer span.End()

	batch := &pgx.Batch{}
	for _, s := range signals {
		payload, err := json.Marshal(s.Payload())
		if err != nil {
			return nil, fmt.Errorf("encode signal payload: %w", err)
		}
		batch.Queue(
			`INSERT INTO signals (asset, timeframe, strategy, bias, entry_price, stop_loss, take_profit, timestamp, payload)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (asset, timeframe, strategy, timestamp, bias) DO UPDATE SET
			     entry_price = EXCLUDED.entry_price,
			     stop_loss = EXCLUDED.stop_loss,
			     take_profit = EXCLUDED.take_profit,
			     payload = EXCLUDED.payload
			 RETURNING id`,
			s.Asset,
			s.Timeframe,
			s.Strategy,
			string(s.Bias),
			s.EntryPrice,
			s.StopLoss,
			s.TakeProfit,
			s.Timestamp.UTC(),
			payload,
		)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	out := make([]domain.Signal, len(signals))
	copy(out, signals)
	for i := range signals {
		var id int64
		if err := br.QueryRow().Scan(&id); err != nil {
			return nil, fmt.Errorf("insert signal %s/%s: %w", signals[i].Asset, signals[i].Strategy, err)
		}
		out[i].ID = id
	}

	return out, nil
}

func (r *SignalRepository) ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error) {
	_, span := r.tracer.Start(ctx, "signal-repo.list-signals")
	defer span.End()

	args := make([]any, 0, 4)
	var sb strings.Builder
	sb.WriteString(`SELECT id, asset, timeframe, strategy, bias, entry_price, stop_loss, take_profit, timestamp, payload
		FROM signals
		WHERE 1=1`)

	if filter.Asset != "" {
		args = append(args, domain.NormalizeAsset(filter.Asset))
		sb.WriteString(fmt.Sprintf(" AND asset = $%d", len(args)))
	}
	if filter.Strategy != "" {
		args = append(args, strings.ToLower(filter.Strategy))
		sb.WriteString(fmt.Sprintf(" AND strategy = $%d", len(args)))
	}
	if filter.Bias != "" {
		args = append(args, string(filter.Bias))
		sb.WriteString(fmt.Sprintf(" AND bias = $%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultSignalLimit
	}
	if limit > maxSignalLimit {
		limit = maxSignalLimit
	}
	args = append(args, limit)
	sb.WriteString(fmt.Sprintf(" ORDER BY timestamp DESC, id DESC LIMIT $%d", len(args)))

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	signals := make([]domain.Signal, 0, limit)
	for rows.Next() {
		var s domain.Signal
		var bias string
		var ts time.Time
		var payload []byte

		if err := rows.Scan(
			&s.ID,
			&s.Asset,
			&s.Timeframe,
			&s.Strategy,
			&bias,
			&s.EntryPrice,
			&s.StopLoss,
			&s.TakeProfit,
			&ts,
			&payload,
		); err != nil {
			return nil, err
		}
		s.Bias = domain.Bias(bias)
		s.Timestamp = ts.UTC()

		var doc domain.SignalPayload
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &doc); err != nil {
				return nil, fmt.Errorf("decode payload of signal %d: %w", s.ID, err)
			}
		}
		s.Confidence = doc.Confidence
		s.Zones = doc.Zones
		signals = append(signals, s)
	}

	return signals, rows.Err()
}

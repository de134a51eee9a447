package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ict-signal-engine/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const DefaultAnalysisTTL = 10 * time.Minute

// AnalysisCache keeps the most recent engine analysis per asset and timeframe.
type AnalysisCache struct {
	client redis.Cmdable
	tracer trace.Tracer
	ttl    time.Duration
}

func NewAnalysisCache(client redis.Cmdable, tracer trace.Tracer, ttl time.Duration) *AnalysisCache {
	if ttl <= 0 {
		ttl = DefaultAnalysisTTL
	}
	return &AnalysisCache{client: client, tracer: tracer, ttl: ttl}
}

func analysisKey(asset, timeframe string) string {
	return fmt.Sprintf("analysis:%s:%s", asset, timeframe)
}

func (c *AnalysisCache) Get(ctx context.Context, asset, timeframe string) (*domain.Analysis, error) {
	if c == nil || c.client == nil {
		return nil, nil
	}
	ctx, span := c.tracer.Start(ctx, "analysis-cache.get")
	defer span.End()

	raw, err := c.client.Get(ctx, analysisKey(asset, timeframe)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var a domain.Analysis
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("decode cached analysis: %w", err)
	}
	return &a, nil
}

func (c *AnalysisCache) Set(ctx context.Context, a domain.Analysis) error {
	if c == nil || c.client == nil {
		return nil
	}
	ctx, span := c.tracer.Start(ctx, "analysis-cache.set")
	defer span.End()

	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode analysis: %w", err)
	}
	return c.client.Set(ctx, analysisKey(a.Asset, a.Timeframe), raw, c.ttl).Err()
}

func (c *AnalysisCache) Invalidate(ctx context.Context, asset, timeframe string) error {
	if c == nil || c.client == nil {
		return nil
	}
	ctx, span := c.tracer.Start(ctx, "analysis-cache.invalidate")
	defer span.End()

	return c.client.Del(ctx, analysisKey(asset, timeframe)).Err()
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ict-signal-engine/internal/domain"
	"ict-signal-engine/internal/metrics"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultBarLookback = 500
	maxBarLimit        = 5000
)

type BarProvider interface {
	FetchBars(ctx context.Context, instrument domain.Instrument, timeframe string, outputSize int) ([]domain.Bar, error)
}

type BarStore interface {
	UpsertBars(ctx context.Context, bars []domain.Bar) error
	GetRecentBars(ctx context.Context, asset, timeframe string, limit int) ([]domain.Bar, error)
	LatestBarTime(ctx context.Context, asset, timeframe string) (time.Time, bool, error)
}

type AnalysisInvalidator interface {
	Invalidate(ctx context.Context, asset, timeframe string) error
}

// MarketService keeps the bar store in step with the quote provider.
type MarketService struct {
	tracer    trace.Tracer
	catalog   *domain.Catalog
	provider  BarProvider
	bars      BarStore
	cache     AnalysisInvalidator
	timeframe string
	lookback  int
	now       func() time.Time
}

func NewMarketService(
	tracer trace.Tracer,
	catalog *domain.Catalog,
	provider BarProvider,
	bars BarStore,
	cache AnalysisInvalidator,
	timeframe string,
	lookback int,
) *MarketService {
	if timeframe == "" {
		timeframe = domain.DefaultTimeframe
	}
	if lookback <= 0 {
		lookback = defaultBarLookback
	}
	return &MarketService{
		tracer:    tracer,
		catalog:   catalog,
		provider:  provider,
		bars:      bars,
		cache:     cache,
		timeframe: timeframe,
		lookback:  lookback,
		now:       time.Now,
	}
}

func (s *MarketService) Timeframe() string { return s.timeframe }

// IngestAsset pulls the bars missing since the newest stored one and upserts them.
// The newest stored bar is fetched again because it may have been incomplete.
func (s *MarketService) IngestAsset(ctx context.Context, asset string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.ingest-asset")
	defer span.End()

	if s.catalog == nil || s.provider == nil || s.bars == nil {
		return 0, ErrNotInitialized
	}
	instrument, ok := s.catalog.Lookup(asset)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedAsset, asset)
	}
	span.SetAttributes(attribute.String("asset", instrument.Asset))

	outputSize := s.lookback
	latest, found, err := s.bars.LatestBarTime(ctx, instrument.Asset, s.timeframe)
	if err != nil {
		return 0, fmt.Errorf("latest bar for %s: %w", instrument.Asset, err)
	}
	if found {
		outputSize = s.missingBars(latest)
	}

	fetched, err := s.provider.FetchBars(ctx, instrument, s.timeframe, outputSize)
	if err != nil {
		return 0, err
	}

	fresh := fetched[:0:0]
	for _, b := range fetched {
		if found && b.Timestamp.Before(latest) {
			continue
		}
		fresh = append(fresh, b)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	if err := s.bars.UpsertBars(ctx, fresh); err != nil {
		return 0, fmt.Errorf("store %s bars: %w", instrument.Asset, err)
	}
	metrics.BarsIngested.WithLabelValues(instrument.Asset).Add(float64(len(fresh)))

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, instrument.Asset, s.timeframe); err != nil {
			log.Warn().Err(err).Str("asset", instrument.Asset).Msg("failed to invalidate cached analysis")
		}
	}

	log.Debug().Str("asset", instrument.Asset).Int("bars", len(fresh)).Msg("bars ingested")
	return len(fresh), nil
}

func (s *MarketService) missingBars(latest time.Time) int {
	step, ok := domain.TimeframeDuration(s.timeframe)
	if !ok {
		return s.lookback
	}
	n := int(s.now().Sub(latest)/step) + 2
	if n < 2 {
		n = 2
	}
	if n > s.lookback {
		n = s.lookback
	}
	return n
}

// IngestAll ingests every catalog instrument in order. A failing asset does not stop the rest.
func (s *MarketService) IngestAll(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.ingest-all")
	defer span.End()

	if s.catalog == nil {
		return 0, ErrNotInitialized
	}

	total := 0
	var errs []error
	for _, asset := range s.catalog.Assets() {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		n, err := s.IngestAsset(ctx, asset)
		if err != nil {
			log.Error().Err(err).Str("asset", asset).Msg("bar ingestion failed")
			errs = append(errs, err)
			continue
		}
		total += n
	}
	return total, errors.Join(errs...)
}

// GetBars returns up to limit stored bars, oldest first.
func (s *MarketService) GetBars(ctx context.Context, asset string, limit int) ([]domain.Bar, error) {
	ctx, span := s.tracer.Start(ctx, "market-service.get-bars")
	defer span.End()

	if s.catalog == nil || s.bars == nil {
		return nil, ErrNotInitialized
	}
	instrument, ok := s.catalog.Lookup(asset)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAsset, asset)
	}
	if limit <= 0 {
		limit = s.lookback
	}
	if limit > maxBarLimit {
		limit = maxBarLimit
	}

	bars, err := s.bars.GetRecentBars(ctx, instrument.Asset, s.timeframe, limit)
	if err != nil {
		return nil, fmt.Errorf("get %s bars: %w", instrument.Asset, err)
	}
	return bars, nil
}

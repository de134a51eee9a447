package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"ict-signal-engine/internal/domain"
	"ict-signal-engine/internal/metrics"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSignalLimit = 50
	maxSignalLimit     = 200
	generateWorkers    = 4
)

type SignalBarRepository interface {
	GetRecentBars(ctx context.Context, asset, timeframe string, limit int) ([]domain.Bar, error)
}

type SignalRepository interface {
	InsertSignals(ctx context.Context, signals []domain.Signal) ([]domain.Signal, error)
	ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error)
}

type SignalEngine interface {
	Generate(bars []domain.Bar) []domain.Signal
	Analyze(bars []domain.Bar) domain.Analysis
}

type AnalysisStore interface {
	Get(ctx context.Context, asset, timeframe string) (*domain.Analysis, error)
	Set(ctx context.Context, a domain.Analysis) error
}

type SignalService struct {
	tracer     trace.Tracer
	catalog    *domain.Catalog
	barRepo    SignalBarRepository
	signalRepo SignalRepository
	engine     SignalEngine
	analyses   AnalysisStore
	timeframe  string
	lookback   int
}

func NewSignalService(
	tracer trace.Tracer,
	catalog *domain.Catalog,
	barRepo SignalBarRepository,
	signalRepo SignalRepository,
	engine SignalEngine,
) *SignalService {
	return NewSignalServiceWithCache(tracer, catalog, barRepo, signalRepo, engine, nil)
}

func NewSignalServiceWithCache(
	tracer trace.Tracer,
	catalog *domain.Catalog,
	barRepo SignalBarRepository,
	signalRepo SignalRepository,
	engine SignalEngine,
	analyses AnalysisStore,
) *SignalService {
	return &SignalService{
		tracer:     tracer,
		catalog:    catalog,
		barRepo:    barRepo,
		signalRepo: signalRepo,
		engine:     engine,
		analyses:   analyses,
		timeframe:  domain.DefaultTimeframe,
		lookback:   defaultBarLookback,
	}
}

// WithSeries overrides the timeframe and number of bars fed to the engine.
func (s *SignalService) WithSeries(timeframe string, lookback int) *SignalService {
	if timeframe != "" {
		s.timeframe = timeframe
	}
	if lookback > 0 {
		s.lookback = lookback
	}
	return s
}

func (s *SignalService) Assets() []string {
	if s.catalog == nil {
		return nil
	}
	return s.catalog.Assets()
}

func (s *SignalService) Instruments() []domain.Instrument {
	if s.catalog == nil {
		return []domain.Instrument{}
	}
	return s.catalog.Instruments()
}

func (s *SignalService) resolve(asset string) (domain.Instrument, error) {
	if s.catalog == nil {
		return domain.Instrument{}, ErrNotInitialized
	}
	instrument, ok := s.catalog.Lookup(asset)
	if !ok {
		return domain.Instrument{}, fmt.Errorf("%w: %s", ErrUnsupportedAsset, asset)
	}
	return instrument, nil
}

// GenerateForAsset runs the engine over the stored bars of one asset and persists what it emits.
func (s *SignalService) GenerateForAsset(ctx context.Context, asset string) ([]domain.Signal, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.generate-for-asset")
	defer span.End()

	if s.barRepo == nil || s.signalRepo == nil || s.engine == nil {
		return nil, ErrNotInitialized
	}
	instrument, err := s.resolve(asset)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("asset", instrument.Asset))

	bars, err := s.barRepo.GetRecentBars(ctx, instrument.Asset, s.timeframe, s.lookback)
	if err != nil {
		return nil, fmt.Errorf("get bars for %s: %w", instrument.Asset, err)
	}

	start := time.Now()
	generated := s.engine.Generate(bars)
	metrics.EngineRunSeconds.Observe(time.Since(start).Seconds())

	if len(generated) == 0 {
		return []domain.Signal{}, nil
	}
	for i := range generated {
		generated[i].Asset = instrument.Asset
		generated[i].Timeframe = s.timeframe
	}

	persisted, err := s.signalRepo.InsertSignals(ctx, generated)
	if err != nil {
		return nil, fmt.Errorf("insert signals: %w", err)
	}
	for _, sig := range persisted {
		metrics.SignalsEmitted.WithLabelValues(sig.Asset, sig.Strategy).Inc()
	}
	log.Info().Str("asset", instrument.Asset).Int("signals", len(persisted)).Msg("signals generated")
	return persisted, nil
}

// GenerateAll runs GenerateForAsset for every catalog asset concurrently. Results are ordered
// by asset; per-asset failures are joined into the returned error.
func (s *SignalService) GenerateAll(ctx context.Context) ([]domain.Signal, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.generate-all")
	defer span.End()

	assets := s.Assets()
	if assets == nil {
		return nil, ErrNotInitialized
	}
	sort.Strings(assets)

	results := make([][]domain.Signal, len(assets))
	errs := make([]error, len(assets))

	var g errgroup.Group
	g.SetLimit(generateWorkers)
	for i, asset := range assets {
		g.Go(func() error {
			signals, err := s.GenerateForAsset(ctx, asset)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", asset, err)
				return nil
			}
			results[i] = signals
			return nil
		})
	}
	_ = g.Wait()

	var out []domain.Signal
	for _, signals := range results {
		out = append(out, signals...)
	}
	return out, errors.Join(errs...)
}

func (s *SignalService) ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.list-signals")
	defer span.End()

	if s.signalRepo == nil {
		return nil, ErrNotInitialized
	}

	filter.Asset = domain.NormalizeAsset(filter.Asset)
	filter.Strategy = strings.ToLower(strings.TrimSpace(filter.Strategy))
	filter.Bias = domain.Bias(strings.ToLower(strings.TrimSpace(string(filter.Bias))))

	if filter.Asset != "" {
		if _, err := s.resolve(filter.Asset); err != nil {
			return nil, err
		}
	}
	if filter.Strategy != "" && !domain.IsKnownStrategy(filter.Strategy) {
		return nil, fmt.Errorf("%w: unknown strategy %q, want one of %s",
			ErrInvalidFilter, filter.Strategy, strings.Join(domain.Strategies, ", "))
	}
	if filter.Bias != "" && (filter.Bias == domain.BiasNeutral || !filter.Bias.IsValid()) {
		return nil, fmt.Errorf("%w: bias must be bullish or bearish", ErrInvalidFilter)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultSignalLimit
	}
	if filter.Limit > maxSignalLimit {
		filter.Limit = maxSignalLimit
	}

	return s.signalRepo.ListSignals(ctx, filter)
}

// Analyze returns the engine diagnostics for the latest stored bars of asset, served from
// the analysis cache when one is configured.
func (s *SignalService) Analyze(ctx context.Context, asset string) (*domain.Analysis, error) {
	ctx, span := s.tracer.Start(ctx, "signal-service.analyze")
	defer span.End()

	if s.barRepo == nil || s.engine == nil {
		return nil, ErrNotInitialized
	}
	instrument, err := s.resolve(asset)
	if err != nil {
		return nil, err
	}

	if s.analyses != nil {
		cached, err := s.analyses.Get(ctx, instrument.Asset, s.timeframe)
		if err != nil {
			log.Warn().Err(err).Str("asset", instrument.Asset).Msg("analysis cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	bars, err := s.barRepo.GetRecentBars(ctx, instrument.Asset, s.timeframe, s.lookback)
	if err != nil {
		return nil, fmt.Errorf("get bars for %s: %w", instrument.Asset, err)
	}

	start := time.Now()
	analysis := s.engine.Analyze(bars)
	metrics.EngineRunSeconds.Observe(time.Since(start).Seconds())
	analysis.Asset = instrument.Asset
	analysis.Timeframe = s.timeframe

	if s.analyses != nil {
		if err := s.analyses.Set(ctx, analysis); err != nil {
			log.Warn().Err(err).Str("asset", instrument.Asset).Msg("analysis cache write failed")
		}
	}
	return &analysis, nil
}

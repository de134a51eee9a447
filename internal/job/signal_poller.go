package job

import (
	"context"
	"sync"
	"time"

	"ict-signal-engine/internal/domain"
	"ict-signal-engine/internal/logging"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

const maxSeenSignals = 10000

type SignalGenerator interface {
	GenerateAll(ctx context.Context) ([]domain.Signal, error)
}

// AlertSink receives signals the poller has not forwarded before.
type AlertSink interface {
	NotifySignals(ctx context.Context, signals []domain.Signal) error
}

// SignalPoller periodically runs the engine over every instrument and forwards new signals.
type SignalPoller struct {
	tracer    trace.Tracer
	generator SignalGenerator
	sink      AlertSink
	interval  time.Duration
	logger    zerolog.Logger

	mu   sync.Mutex
	seen map[int64]struct{}
}

func NewSignalPoller(tracer trace.Tracer, generator SignalGenerator, sink AlertSink, intervalSecs int) *SignalPoller {
	if intervalSecs <= 0 {
		intervalSecs = 300
	}
	return &SignalPoller{
		tracer:    tracer,
		generator: generator,
		sink:      sink,
		interval:  time.Duration(intervalSecs) * time.Second,
		logger:    logging.Component("signal-poller"),
		seen:      make(map[int64]struct{}),
	}
}

// Start runs a generation pass immediately and then on every tick. Blocks until ctx is cancelled.
func (p *SignalPoller) Start(ctx context.Context) {
	if p.generator == nil {
		p.logger.Warn().Msg("signal poller disabled: no signal service")
		<-ctx.Done()
		return
	}

	p.logger.Info().Dur("interval", p.interval).Msg("signal poller starting")
	p.RunOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("signal poller stopped")
			return
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

// RunOnce generates signals for all instruments and returns how many were new.
func (p *SignalPoller) RunOnce(ctx context.Context) int {
	ctx, span := p.tracer.Start(ctx, "signal-poller.run-once")
	defer span.End()

	signals, err := p.generator.GenerateAll(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("signal generation failed for some assets")
	}

	fresh := p.unseen(signals)
	if len(fresh) == 0 || p.sink == nil {
		return len(fresh)
	}
	if err := p.sink.NotifySignals(ctx, fresh); err != nil {
		p.logger.Error().Err(err).Int("signals", len(fresh)).Msg("signal alert delivery failed")
	}
	return len(fresh)
}

// unseen drops signals already forwarded. Re-running the engine over the same bars upserts
// the same rows, so ids identify repeats.
func (p *SignalPoller) unseen(signals []domain.Signal) []domain.Signal {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.seen) > maxSeenSignals {
		p.seen = make(map[int64]struct{})
	}
	fresh := make([]domain.Signal, 0, len(signals))
	for _, s := range signals {
		if s.ID > 0 {
			if _, ok := p.seen[s.ID]; ok {
				continue
			}
			p.seen[s.ID] = struct{}{}
		}
		fresh = append(fresh, s)
	}
	return fresh
}

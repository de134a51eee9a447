package job

import (
	"context"
	"time"

	"ict-signal-engine/internal/logging"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type BarIngester interface {
	IngestAll(ctx context.Context) (int, error)
}

// IngestPoller keeps stored bars current and hands off to the signal poller after each pass.
type IngestPoller struct {
	tracer   trace.Tracer
	ingester BarIngester
	after    func(ctx context.Context)
	interval time.Duration
	logger   zerolog.Logger
}

func NewIngestPoller(tracer trace.Tracer, ingester BarIngester, intervalSecs int) *IngestPoller {
	if intervalSecs <= 0 {
		intervalSecs = 300
	}
	return &IngestPoller{
		tracer:   tracer,
		ingester: ingester,
		interval: time.Duration(intervalSecs) * time.Second,
		logger:   logging.Component("ingest-poller"),
	}
}

// OnIngested registers fn to run after every pass that stored at least one bar.
func (p *IngestPoller) OnIngested(fn func(ctx context.Context)) {
	p.after = fn
}

func (p *IngestPoller) Start(ctx context.Context) {
	if p.ingester == nil {
		p.logger.Warn().Msg("ingest poller disabled: no market service")
		<-ctx.Done()
		return
	}

	p.logger.Info().Dur("interval", p.interval).Msg("ingest poller starting")
	p.RunOnce(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("ingest poller stopped")
			return
		case <-ticker.C:
			p.RunOnce(ctx)
		}
	}
}

func (p *IngestPoller) RunOnce(ctx context.Context) int {
	ctx, span := p.tracer.Start(ctx, "ingest-poller.run-once")
	defer span.End()

	n, err := p.ingester.IngestAll(ctx)
	if err != nil {
		p.logger.Error().Err(err).Msg("bar ingestion failed for some assets")
	}
	p.logger.Info().Int("bars", n).Msg("ingest pass complete")

	if n > 0 && p.after != nil && ctx.Err() == nil {
		p.after(ctx)
	}
	return n
}

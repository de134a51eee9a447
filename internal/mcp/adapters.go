package mcp

import (
	"context"

	"ict-signal-engine/internal/domain"
)

// MarketReader exposes stored bar data.
type MarketReader interface {
	GetBars(ctx context.Context, asset string, limit int) ([]domain.Bar, error)
}

// SignalReaderWriter exposes the instrument catalog, signal history, generation and diagnostics.
type SignalReaderWriter interface {
	Instruments() []domain.Instrument
	ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error)
	GenerateForAsset(ctx context.Context, asset string) ([]domain.Signal, error)
	Analyze(ctx context.Context, asset string) (*domain.Analysis, error)
}

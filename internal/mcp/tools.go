package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, market MarketReader, signals SignalReaderWriter) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "instruments_list",
		Description: "List the instruments the engine tracks",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, _ struct{}) (*mcp.CallToolResult, instrumentsOutput, error) {
		if signals == nil {
			return nil, instrumentsOutput{}, fmt.Errorf("signal service unavailable")
		}
		return nil, instrumentsOutput{Instruments: signals.Instruments()}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "bars_list",
		Description: "Get the most recent stored OHLCV bars for an instrument, oldest first",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in barsListInput) (*mcp.CallToolResult, barsListOutput, error) {
		if market == nil {
			return nil, barsListOutput{}, fmt.Errorf("market service unavailable")
		}
		asset, err := normalizeAsset(in.Asset)
		if err != nil {
			return nil, barsListOutput{}, err
		}
		bars, err := market.GetBars(ctx, asset, normalizeBarLimit(in.Limit))
		if err != nil {
			return nil, barsListOutput{}, err
		}
		return nil, barsListOutput{Asset: asset, Bars: bars}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "signals_list",
		Description: "Get recent persisted trade signals with optional asset/strategy/bias filters",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in signalsListInput) (*mcp.CallToolResult, signalsListOutput, error) {
		if signals == nil {
			return nil, signalsListOutput{}, fmt.Errorf("signal service unavailable")
		}
		filter, err := normalizeSignalFilter(in)
		if err != nil {
			return nil, signalsListOutput{}, err
		}
		result, err := signals.ListSignals(ctx, filter)
		if err != nil {
			return nil, signalsListOutput{}, err
		}
		return nil, signalsListOutput{Signals: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "signals_generate",
		Description: "Run the signal engine over the latest bars of an instrument and persist what fires",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in signalsGenerateInput) (*mcp.CallToolResult, signalsGenerateOutput, error) {
		if signals == nil {
			return nil, signalsGenerateOutput{}, fmt.Errorf("signal service unavailable")
		}
		asset, err := normalizeAsset(in.Asset)
		if err != nil {
			return nil, signalsGenerateOutput{}, err
		}
		generated, err := signals.GenerateForAsset(ctx, asset)
		if err != nil {
			return nil, signalsGenerateOutput{}, err
		}
		return nil, signalsGenerateOutput{GeneratedCount: len(generated), Signals: generated}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "analysis_get",
		Description: "Get volatility, zones, quarterly bias, IPDA phase, liquidity pools and detected patterns for an instrument",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in analysisGetInput) (*mcp.CallToolResult, analysisGetOutput, error) {
		if signals == nil {
			return nil, analysisGetOutput{}, fmt.Errorf("signal service unavailable")
		}
		asset, err := normalizeAsset(in.Asset)
		if err != nil {
			return nil, analysisGetOutput{}, err
		}
		analysis, err := signals.Analyze(ctx, asset)
		if err != nil {
			return nil, analysisGetOutput{}, err
		}
		return nil, analysisGetOutput{Analysis: analysis}, nil
	})
}

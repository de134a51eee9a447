package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, market MarketReader, signals SignalReaderWriter) {
	server.AddResource(&mcp.Resource{
		URI:         "instruments://catalog",
		Name:        "instruments-catalog",
		Description: "Instruments tracked by the engine with their provider symbols",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if signals == nil {
			return nil, fmt.Errorf("signal service unavailable")
		}
		return jsonResource(req.Params.URI, instrumentsOutput{Instruments: signals.Instruments()})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "bars://{asset}{?limit}",
		Name:        "bars-by-asset",
		Description: "Most recent stored bars for an instrument; optional limit query param",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if market == nil {
			return nil, fmt.Errorf("market service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil || parsed.Scheme != "bars" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		asset, err := normalizeAsset(parsed.Host)
		if err != nil {
			return nil, err
		}

		limit := defaultBarLimit
		if rawLimit := strings.TrimSpace(parsed.Query().Get("limit")); rawLimit != "" {
			n, err := strconv.Atoi(rawLimit)
			if err != nil {
				return nil, fmt.Errorf("invalid limit: %s", rawLimit)
			}
			limit = normalizeBarLimit(n)
		}

		bars, err := market.GetBars(ctx, asset, limit)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, barsListOutput{Asset: asset, Bars: bars})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "analysis://{asset}",
		Name:        "analysis-by-asset",
		Description: "Engine diagnostics for the latest bars of an instrument",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if signals == nil {
			return nil, fmt.Errorf("signal service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil || parsed.Scheme != "analysis" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		asset, err := normalizeAsset(parsed.Host)
		if err != nil {
			return nil, err
		}

		analysis, err := signals.Analyze(ctx, asset)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, analysisGetOutput{Analysis: analysis})
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "signals://latest{?asset,strategy,bias,limit}",
		Name:        "signals-latest",
		Description: "Recent persisted signals with optional asset/strategy/bias/limit query params",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if signals == nil {
			return nil, fmt.Errorf("signal service unavailable")
		}

		parsed, err := url.Parse(req.Params.URI)
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		if parsed.Scheme != "signals" || parsed.Host != "latest" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}

		query := parsed.Query()
		input := signalsListInput{
			Asset:    query.Get("asset"),
			Strategy: query.Get("strategy"),
			Bias:     query.Get("bias"),
			Limit:    defaultSignalLimit,
		}
		if rawLimit := strings.TrimSpace(query.Get("limit")); rawLimit != "" {
			n, err := strconv.Atoi(rawLimit)
			if err != nil {
				return nil, fmt.Errorf("invalid limit: %s", rawLimit)
			}
			input.Limit = n
		}

		filter, err := normalizeSignalFilter(input)
		if err != nil {
			return nil, err
		}
		list, err := signals.ListSignals(ctx, filter)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, signalsListOutput{Signals: list})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}

package mcp

import (
	"context"
	"testing"
	"time"

	"ict-signal-engine/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestToolsListAndInvoke(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, market, signals := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	tools, err := session.ListTools(ctx, &sdkmcp.ListToolsParams{})
	if err != nil {
		t.Fatalf("list tools failed: %v", err)
	}
	if len(tools.Tools) != 5 {
		t.Fatalf("expected 5 tools, got %d", len(tools.Tools))
	}

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "bars_list", Arguments: map[string]any{"asset": "eur/usd", "limit": 2}})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
	if market.limit() != 2 {
		t.Fatalf("expected bar limit 2, got %d", market.limit())
	}

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "signals_generate", Arguments: map[string]any{"asset": "eurusd"}})
	if err != nil {
		t.Fatalf("generate tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected generate tool error: %+v", res.Content)
	}
	if generated, _, _ := signals.snapshot(); generated != "EURUSD" {
		t.Fatalf("expected generate asset EURUSD, got %s", generated)
	}

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "analysis_get", Arguments: map[string]any{"asset": "EURUSD"}})
	if err != nil {
		t.Fatalf("analysis tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected analysis tool error: %+v", res.Content)
	}
	if _, analyzed, _ := signals.snapshot(); analyzed != "EURUSD" {
		t.Fatalf("expected analyze asset EURUSD, got %s", analyzed)
	}

	res, err = session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "signals_list",
		Arguments: map[string]any{"asset": "eurusd", "strategy": "Turtle_Soup", "bias": "BEARISH"},
	})
	if err != nil {
		t.Fatalf("list signals tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected list tool error: %+v", res.Content)
	}
	_, _, filter := signals.snapshot()
	if filter.Asset != "EURUSD" || filter.Strategy != domain.StrategyTurtleSoup || filter.Bias != domain.BiasBearish {
		t.Fatalf("unexpected filter: %+v", filter)
	}
	if filter.Limit != defaultSignalLimit {
		t.Fatalf("expected default limit, got %d", filter.Limit)
	}
}

func TestToolsValidationFailure(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	srv, _, _ := testServer()
	session, shutdown, err := connectInMemory(ctx, srv)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer shutdown()
	defer session.Close()

	for _, call := range []*sdkmcp.CallToolParams{
		{Name: "bars_list", Arguments: map[string]any{"asset": " "}},
		{Name: "signals_list", Arguments: map[string]any{"bias": "sideways"}},
		{Name: "signals_list", Arguments: map[string]any{"strategy": "rsi"}},
	} {
		res, err := session.CallTool(ctx, call)
		if err != nil {
			t.Fatalf("unexpected protocol error for %s: %v", call.Name, err)
		}
		if !res.IsError {
			t.Fatalf("expected tool-level validation error for %s %+v", call.Name, call.Arguments)
		}
	}
}

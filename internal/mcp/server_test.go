package mcp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestMCPSpanName(t *testing.T) {
	call := &sdkmcp.CallToolRequest{Params: &sdkmcp.CallToolParamsRaw{Name: "signals_list"}}
	if got := mcpSpanName("tools/call", call); got != "mcp.tool.signals_list" {
		t.Fatalf("unexpected tool span name: %s", got)
	}
	if got := mcpSpanName("resources/read", nil); got != "mcp.resource.read" {
		t.Fatalf("unexpected resource span name: %s", got)
	}
	if got := mcpSpanName("tools/list", nil); got != "mcp.tools.list" {
		t.Fatalf("unexpected default span name: %s", got)
	}
}

func TestHTTPTransportServesAuthenticatedClients(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	srv, _, _ := testServer()
	ts := httptest.NewServer(NewHTTPTransportHandler(srv, HTTPHandlerConfig{AuthToken: "secret", RateLimitPerMin: 600}))
	defer ts.Close()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-http-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &sdkmcp.StreamableClientTransport{
		Endpoint:   ts.URL,
		HTTPClient: &http.Client{Transport: &authRoundTripper{token: "secret"}},
	}, nil)
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer session.Close()

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: "instruments_list", Arguments: map[string]any{}})
	if err != nil {
		t.Fatalf("call tool failed: %v", err)
	}
	if res.IsError {
		t.Fatalf("unexpected tool error: %+v", res.Content)
	}
}

package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"ict-signal-engine/internal/domain"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubMarketService struct {
	mu        sync.Mutex
	bars      map[string][]domain.Bar
	lastLimit int
}

func (s *stubMarketService) GetBars(ctx context.Context, asset string, limit int) ([]domain.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastLimit = limit
	bars := s.bars[asset]
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return append([]domain.Bar(nil), bars...), nil
}

func (s *stubMarketService) limit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastLimit
}

type stubSignalService struct {
	mu        sync.Mutex
	listed    []domain.Signal
	generated []domain.Signal
	analysis  *domain.Analysis

	lastGenerateAsset string
	lastAnalyzeAsset  string
	lastFilter        domain.SignalFilter
}

func (s *stubSignalService) Instruments() []domain.Instrument {
	return append([]domain.Instrument(nil), domain.DefaultInstruments...)
}

func (s *stubSignalService) ListSignals(ctx context.Context, filter domain.SignalFilter) ([]domain.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastFilter = filter
	return append([]domain.Signal(nil), s.listed...), nil
}

func (s *stubSignalService) GenerateForAsset(ctx context.Context, asset string) ([]domain.Signal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastGenerateAsset = asset
	return append([]domain.Signal(nil), s.generated...), nil
}

func (s *stubSignalService) Analyze(ctx context.Context, asset string) (*domain.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAnalyzeAsset = asset
	copy := *s.analysis
	return &copy, nil
}

func (s *stubSignalService) snapshot() (string, string, domain.SignalFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastGenerateAsset, s.lastAnalyzeAsset, s.lastFilter
}

func testServer() (*sdkmcp.Server, *stubMarketService, *stubSignalService) {
	t0 := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	market := &stubMarketService{
		bars: map[string][]domain.Bar{
			"EURUSD": {
				{Asset: "EURUSD", Timeframe: "5min", Timestamp: t0, Open: 1.085, High: 1.086, Low: 1.084, Close: 1.0855, Volume: 120},
				{Asset: "EURUSD", Timeframe: "5min", Timestamp: t0.Add(5 * time.Minute), Open: 1.0855, High: 1.087, Low: 1.085, Close: 1.0865, Volume: 140},
				{Asset: "EURUSD", Timeframe: "5min", Timestamp: t0.Add(10 * time.Minute), Open: 1.0865, High: 1.0868, Low: 1.0858, Close: 1.086, Volume: 90},
			},
		},
	}
	signals := &stubSignalService{
		listed: []domain.Signal{{
			ID: 1, Asset: "EURUSD", Timeframe: "5min", Strategy: domain.StrategyEngulfing, Bias: domain.BiasBullish,
			EntryPrice: 1.085, StopLoss: 1.0835, TakeProfit: 1.088, Confidence: 0.7, Timestamp: t0,
		}},
		generated: []domain.Signal{{
			ID: 2, Asset: "EURUSD", Timeframe: "5min", Strategy: domain.StrategyTurtleSoup, Bias: domain.BiasBearish,
			EntryPrice: 1.086, StopLoss: 1.0875, TakeProfit: 1.083, Confidence: 0.75, Timestamp: t0.Add(5 * time.Minute),
		}},
		analysis: &domain.Analysis{
			Asset: "EURUSD", Timeframe: "5min", BarCount: 120, AsOf: t0, LastClose: 1.086, ATR: 0.0012,
			HighVolatility: true, Bias: domain.BiasBullish, Phase: domain.PhaseMarkup, CurrentZone: domain.ZonePremium,
			Patterns: []string{"doji"},
		},
	}

	srv := NewServer(nil, market, signals, ServerConfig{RequestTimeout: time.Second})
	return srv, market, signals
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

type authRoundTripper struct {
	token string
	base  http.RoundTripper
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.token)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}

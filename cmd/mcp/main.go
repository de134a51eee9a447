package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"ict-signal-engine/internal/cache"
	"ict-signal-engine/internal/config"
	"ict-signal-engine/internal/db"
	"ict-signal-engine/internal/domain"
	"ict-signal-engine/internal/logging"
	mcpserver "ict-signal-engine/internal/mcp"
	"ict-signal-engine/internal/provider"
	"ict-signal-engine/internal/repository"
	"ict-signal-engine/internal/service"
	signalengine "ict-signal-engine/internal/signal"
	"ict-signal-engine/pkg/tracing"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

const defaultMCPHTTPMaxBodyBytes int64 = 1 << 20 // 1MiB

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	initPostgresFunc  = db.InitPostgres
	initRedisFunc     = cache.InitRedis
	initTracerFunc    = tracing.InitTracer
	newBarRepoFunc    = repository.NewBarRepository
	newSignalRepoFunc = repository.NewSignalRepository
	newProviderFunc   = func(tracer trace.Tracer, cfg *config.Config) service.BarProvider {
		return provider.NewTwelveDataProvider(tracer, provider.TwelveDataConfig{
			BaseURL:    cfg.TwelveDataBaseURL,
			APIKey:     cfg.TwelveDataAPIKey,
			MaxRetries: cfg.ProviderMaxRetries,
			Scheduler:  provider.NewScheduler(cfg.ProviderReqPerMin),
		})
	}
	newMCPServerFunc     = mcpserver.NewServer
	newMCPHandlerFunc    = mcpserver.NewHTTPTransportHandler
	newMarketServiceFunc = service.NewMarketService
	newSignalServiceFunc = service.NewSignalServiceWithCache
	newSignalEngineFunc  = signalengine.NewEngine
	runStdioFunc         = func(ctx context.Context, server *sdkmcp.Server) error {
		return server.Run(ctx, &sdkmcp.StdioTransport{})
	}
	startHTTPServerFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFn = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify    = ossignal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()
	// stdout carries the stdio transport, so logs go to stderr only
	logging.Setup(cfg.LogLevel, false)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	var analyses *cache.AnalysisCache
	if cache.Client != nil {
		analyses = cache.NewAnalysisCache(cache.Client, tracer, cache.DefaultAnalysisTTL)
	}

	catalog := domain.NewCatalog(cfg.Instruments)
	var (
		barStore    service.BarStore
		barReader   service.SignalBarRepository
		signalStore service.SignalRepository
	)
	if db.Pool != nil {
		barRepo := newBarRepoFunc(db.Pool, tracer)
		barStore, barReader, signalStore = barRepo, barRepo, newSignalRepoFunc(db.Pool, tracer)
	} else {
		log.Warn().Msg("running without Postgres, bar and signal storage disabled")
	}
	marketService := newMarketServiceFunc(tracer, catalog, newProviderFunc(tracer, cfg), barStore, analyses, cfg.Timeframe, cfg.BarLookback)
	signalService := newSignalServiceFunc(tracer, catalog, barReader, signalStore, newSignalEngineFunc(nil), analyses).
		WithSeries(cfg.Timeframe, cfg.BarLookback)

	mcpSrv := newMCPServerFunc(tracer, marketService, signalService, mcpserver.ServerConfig{
		RequestTimeout: time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
	})

	transport := strings.ToLower(strings.TrimSpace(cfg.MCPTransport))
	switch transport {
	case "", "stdio":
		if err := runStdioFunc(ctx, mcpSrv); err != nil {
			log.Fatal().Err(err).Msg("mcp stdio server failed")
		}
	case "http":
		if err := runHTTPMode(ctx, cancel, cfg, mcpSrv); err != nil {
			log.Fatal().Err(err).Msg("mcp http server failed")
		}
	default:
		log.Fatal().Str("transport", cfg.MCPTransport).Msg("unsupported MCP_TRANSPORT")
	}
}

func runHTTPMode(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, mcpSrv *sdkmcp.Server) error {
	if !cfg.MCPHTTPEnabled {
		return fmt.Errorf("MCP_HTTP_ENABLED must be true when MCP_TRANSPORT=http")
	}
	if strings.TrimSpace(cfg.MCPAuthToken) == "" {
		return fmt.Errorf("MCP_AUTH_TOKEN is required when MCP_TRANSPORT=http")
	}

	handler := newMCPHandlerFunc(mcpSrv, mcpserver.HTTPHandlerConfig{
		AuthToken:       cfg.MCPAuthToken,
		RateLimitPerMin: cfg.MCPRateLimitPerMin,
		MaxBodyBytes:    defaultMCPHTTPMaxBodyBytes,
	})

	addr := net.JoinHostPort(cfg.MCPHTTPBind, fmt.Sprintf("%d", cfg.MCPHTTPPort))
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Str("addr", addr).Msg("mcp http server failed")
		}
	}()
	log.Info().Str("addr", addr).Msg("mcp http server started")

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFn(srv, shutdownCtx); err != nil {
		return fmt.Errorf("mcp server forced to shutdown: %w", err)
	}
	return nil
}
